// dao/image_dao.go
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

type ImageDAO struct {
	pool     *pgxpool.Pool
	auditSvc audit.Service
}

func NewImageDAO(pool *pgxpool.Pool, auditSvc audit.Service) *ImageDAO {
	return &ImageDAO{pool: pool, auditSvc: auditSvc}
}

func (d *ImageDAO) CreateImage(ctx context.Context, image *model.RecipeImage) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	image.CreatedAt = time.Now().UTC()

	_, err := d.pool.Exec(ctx, `
		INSERT INTO recipe_images (id, recipe_id, path, caption, is_primary, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		image.ID, image.RecipeID, image.Path, image.Caption,
		image.IsPrimary, image.Order, image.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to create recipe image: %v", recipe_errors.ErrDatabaseOperation, err)
	}

	d.recordImageWrite(ctx, "image.create", image.ID)
	return nil
}

// GetImage loads an image together with its recipe and the recipe's
// author, so ownership checks can walk image -> recipe -> author.
func (d *ImageDAO) GetImage(ctx context.Context, imageID string) (*model.RecipeImage, error) {
	var (
		img    model.RecipeImage
		recipe model.Recipe
		author model.User
		role   string
	)
	err := d.pool.QueryRow(ctx, `
		SELECT i.id, i.recipe_id, i.path, i.caption, i.is_primary, i.display_order, i.created_at,
			r.title, r.author_id, u.username, u.email, u.role
		FROM recipe_images i
		JOIN recipes r ON r.id = i.recipe_id
		JOIN users u ON u.id = r.author_id
		WHERE i.id = $1`, imageID).
		Scan(&img.ID, &img.RecipeID, &img.Path, &img.Caption, &img.IsPrimary, &img.Order, &img.CreatedAt,
			&recipe.Title, &recipe.AuthorID, &author.Username, &author.Email, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe_errors.ErrImageNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to get recipe image: %v", recipe_errors.ErrDatabaseOperation, err)
	}

	author.ID = recipe.AuthorID
	author.Role = model.Role(role)
	author.IsActive = true
	recipe.ID = img.RecipeID
	recipe.Author = &author
	img.Recipe = &recipe
	return &img, nil
}

func (d *ImageDAO) ListByRecipe(ctx context.Context, recipeID string) ([]model.RecipeImage, error) {
	return (&RecipeDAO{pool: d.pool}).listImages(ctx, recipeID)
}

func (d *ImageDAO) DeleteImage(ctx context.Context, imageID string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM recipe_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete recipe image: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	if tag.RowsAffected() == 0 {
		return recipe_errors.ErrImageNotFound
	}

	d.recordImageWrite(ctx, "image.delete", imageID)
	return nil
}

// UpdateImagePath swaps the stored path after the processor writes the
// resized file.
func (d *ImageDAO) UpdateImagePath(ctx context.Context, imageID, path string) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE recipe_images SET path = $2 WHERE id = $1`, imageID, path)
	if err != nil {
		return fmt.Errorf("%w: failed to update image path: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	if tag.RowsAffected() == 0 {
		return recipe_errors.ErrImageNotFound
	}
	return nil
}

func (d *ImageDAO) recordImageWrite(ctx context.Context, action, imageID string) {
	if d.auditSvc == nil {
		return
	}
	entry := audit.Entry{
		Action:        action,
		ResourceType:  "recipe_image",
		ResourceID:    imageID,
		AccessGranted: true,
	}
	if err := d.auditSvc.Record(ctx, entry); err != nil {
		logWarnAudit(action, err)
	}
}
