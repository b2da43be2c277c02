// dao/rating_dao.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

type RatingDAO struct {
	pool     *pgxpool.Pool
	auditSvc audit.Service
}

func NewRatingDAO(pool *pgxpool.Pool, auditSvc audit.Service) *RatingDAO {
	return &RatingDAO{pool: pool, auditSvc: auditSvc}
}

// UpsertRating inserts or updates the user's rating for a recipe. One
// rating per user per recipe; a second submission replaces the first.
// Returns true when the rating was newly created.
func (d *RatingDAO) UpsertRating(ctx context.Context, rating *model.Rating) (bool, error) {
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rating.CreatedAt = now
	rating.UpdatedAt = now

	var created bool
	err := d.pool.QueryRow(ctx, `
		INSERT INTO ratings (id, recipe_id, user_id, rating, review, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (recipe_id, user_id) DO UPDATE
			SET rating = excluded.rating, review = excluded.review, updated_at = excluded.updated_at
		RETURNING id, created_at, (created_at = updated_at)`,
		rating.ID, rating.RecipeID, rating.UserID, rating.Value, rating.Review,
		rating.CreatedAt, rating.UpdatedAt).
		Scan(&rating.ID, &rating.CreatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("%w: failed to upsert rating: %v", recipe_errors.ErrDatabaseOperation, err)
	}

	action := "rating.update"
	if created {
		action = "rating.create"
	}
	d.recordRatingWrite(ctx, rating.UserID, action, rating.ID)
	return created, nil
}

func (d *RatingDAO) GetByUserAndRecipe(ctx context.Context, userID, recipeID string) (*model.Rating, error) {
	var r model.Rating
	err := d.pool.QueryRow(ctx, `
		SELECT id, recipe_id, user_id, rating, review, created_at, updated_at
		FROM ratings WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID).
		Scan(&r.ID, &r.RecipeID, &r.UserID, &r.Value, &r.Review, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe_errors.ErrRatingNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to get rating: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return &r, nil
}

func (d *RatingDAO) GetRating(ctx context.Context, ratingID string) (*model.Rating, error) {
	var r model.Rating
	err := d.pool.QueryRow(ctx, `
		SELECT id, recipe_id, user_id, rating, review, created_at, updated_at
		FROM ratings WHERE id = $1`, ratingID).
		Scan(&r.ID, &r.RecipeID, &r.UserID, &r.Value, &r.Review, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe_errors.ErrRatingNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to get rating: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return &r, nil
}

func (d *RatingDAO) DeleteRating(ctx context.Context, ratingID, actorID string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, ratingID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete rating: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	if tag.RowsAffected() == 0 {
		return recipe_errors.ErrRatingNotFound
	}

	d.recordRatingWrite(ctx, actorID, "rating.delete", ratingID)
	return nil
}

func (d *RatingDAO) ListByRecipe(ctx context.Context, recipeID string, limit, offset int) ([]*model.Rating, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.pool.Query(ctx, `
		SELECT id, recipe_id, user_id, rating, review, created_at, updated_at
		FROM ratings WHERE recipe_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, recipeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list ratings: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var ratings []*model.Rating
	for rows.Next() {
		var r model.Rating
		if err := rows.Scan(&r.ID, &r.RecipeID, &r.UserID, &r.Value, &r.Review,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan rating: %v", recipe_errors.ErrDatabaseOperation, err)
		}
		ratings = append(ratings, &r)
	}
	return ratings, rows.Err()
}

func (d *RatingDAO) recordRatingWrite(ctx context.Context, actorID, action, ratingID string) {
	if d.auditSvc == nil {
		return
	}
	entry := audit.Entry{
		UserID:        actorID,
		Action:        action,
		ResourceType:  "rating",
		ResourceID:    ratingID,
		AccessGranted: true,
	}
	if err := d.auditSvc.Record(ctx, entry); err != nil {
		logWarnAudit(action, err)
	}
}
