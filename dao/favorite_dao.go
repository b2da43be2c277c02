// dao/favorite_dao.go
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

type FavoriteDAO struct {
	pool     *pgxpool.Pool
	auditSvc audit.Service
}

func NewFavoriteDAO(pool *pgxpool.Pool, auditSvc audit.Service) *FavoriteDAO {
	return &FavoriteDAO{pool: pool, auditSvc: auditSvc}
}

func (d *FavoriteDAO) GetFavorite(ctx context.Context, userID, recipeID string) (*model.Favorite, error) {
	var f model.Favorite
	err := d.pool.QueryRow(ctx, `
		SELECT id, recipe_id, user_id, created_at
		FROM favorites WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID).
		Scan(&f.ID, &f.RecipeID, &f.UserID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to get favorite: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return &f, nil
}

func (d *FavoriteDAO) CreateFavorite(ctx context.Context, favorite *model.Favorite) error {
	if favorite.ID == "" {
		favorite.ID = uuid.NewString()
	}
	favorite.CreatedAt = time.Now().UTC()

	_, err := d.pool.Exec(ctx, `
		INSERT INTO favorites (id, recipe_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (recipe_id, user_id) DO NOTHING`,
		favorite.ID, favorite.RecipeID, favorite.UserID, favorite.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to create favorite: %v", recipe_errors.ErrDatabaseOperation, err)
	}

	d.recordFavoriteWrite(ctx, favorite.UserID, "favorite.create", favorite.RecipeID)
	return nil
}

func (d *FavoriteDAO) DeleteFavorite(ctx context.Context, userID, recipeID string) error {
	_, err := d.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete favorite: %v", recipe_errors.ErrDatabaseOperation, err)
	}

	d.recordFavoriteWrite(ctx, userID, "favorite.delete", recipeID)
	return nil
}

// ListByUser returns the recipes the user has favorited, newest first.
func (d *FavoriteDAO) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Recipe, error) {
	if limit <= 0 {
		limit = 10
	}
	query := recipeSelect + `
		JOIN favorites f ON f.recipe_id = r.id
		WHERE f.user_id = $1` + recipeGroupBy + `, f.created_at
		ORDER BY f.created_at DESC LIMIT $2 OFFSET $3`

	rows, err := d.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list favorites: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan favorite recipe: %v", recipe_errors.ErrDatabaseOperation, err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (d *FavoriteDAO) recordFavoriteWrite(ctx context.Context, actorID, action, recipeID string) {
	if d.auditSvc == nil {
		return
	}
	entry := audit.Entry{
		UserID:        actorID,
		Action:        action,
		ResourceType:  "favorite",
		ResourceID:    recipeID,
		AccessGranted: true,
	}
	if err := d.auditSvc.Record(ctx, entry); err != nil {
		logWarnAudit(action, err)
	}
}
