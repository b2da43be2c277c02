// dao/category_dao.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

type CategoryDAO struct {
	pool *pgxpool.Pool
}

func NewCategoryDAO(pool *pgxpool.Pool) *CategoryDAO {
	return &CategoryDAO{pool: pool}
}

func (d *CategoryDAO) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err := d.pool.Exec(ctx, `
		INSERT INTO categories (id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		category.ID, category.Name, category.Description, category.IsActive,
		category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to create category: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return nil
}

func (d *CategoryDAO) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	var c model.Category
	err := d.pool.QueryRow(ctx, `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM categories WHERE id = $1`, categoryID).
		Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe_errors.ErrCategoryNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to get category: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return &c, nil
}

func (d *CategoryDAO) ListActiveCategories(ctx context.Context) ([]*model.Category, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM categories WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list categories: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan category: %v", recipe_errors.ErrDatabaseOperation, err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}
