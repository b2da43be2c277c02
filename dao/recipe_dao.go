// dao/recipe_dao.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

type RecipeDAO struct {
	pool     *pgxpool.Pool
	auditSvc audit.Service
}

func NewRecipeDAO(pool *pgxpool.Pool, auditSvc audit.Service) *RecipeDAO {
	return &RecipeDAO{pool: pool, auditSvc: auditSvc}
}

// recipeSelect joins the author, category and rating aggregates the API
// serves with every recipe.
const recipeSelect = `
	SELECT r.id, r.title, r.description, r.ingredients, r.instructions,
		r.prep_time, r.cook_time, r.servings, r.difficulty,
		r.author_id, u.username, u.email, u.role,
		r.category_id, c.name,
		r.is_published, r.is_featured, r.view_count,
		coalesce(avg(rt.rating), 0), count(rt.id),
		r.created_at, r.updated_at
	FROM recipes r
	JOIN users u ON u.id = r.author_id
	LEFT JOIN categories c ON c.id = r.category_id
	LEFT JOIN ratings rt ON rt.recipe_id = r.id`

const recipeGroupBy = ` GROUP BY r.id, u.id, c.id`

func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var (
		r            model.Recipe
		author       model.User
		authorRole   string
		categoryID   *string
		categoryName *string
	)
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Ingredients, &r.Instructions,
		&r.PrepTime, &r.CookTime, &r.Servings, &r.Difficulty,
		&author.ID, &author.Username, &author.Email, &authorRole,
		&categoryID, &categoryName,
		&r.IsPublished, &r.IsFeatured, &r.ViewCount,
		&r.AverageRating, &r.RatingCount,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	author.Role = model.Role(authorRole)
	author.IsActive = true
	r.Author = &author
	r.AuthorID = author.ID
	if categoryID != nil {
		r.CategoryID = *categoryID
		r.Category = &model.Category{ID: *categoryID}
		if categoryName != nil {
			r.Category.Name = *categoryName
		}
	}
	return &r, nil
}

func (d *RecipeDAO) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	var categoryID *string
	if recipe.CategoryID != "" {
		categoryID = &recipe.CategoryID
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO recipes (id, title, description, ingredients, instructions,
			prep_time, cook_time, servings, difficulty, author_id, category_id,
			is_published, is_featured, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, $14, $15)`,
		recipe.ID, recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions,
		recipe.PrepTime, recipe.CookTime, recipe.Servings, string(recipe.Difficulty),
		recipe.AuthorID, categoryID, recipe.IsPublished, recipe.IsFeatured,
		recipe.CreatedAt, recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to create recipe: %v", recipe_errors.ErrDatabaseOperation, err)
	}

	d.recordWrite(ctx, recipe.AuthorID, "recipe.create", recipe.ID)
	return nil
}

func (d *RecipeDAO) GetRecipeByID(ctx context.Context, recipeID string) (*model.Recipe, error) {
	row := d.pool.QueryRow(ctx, recipeSelect+` WHERE r.id = $1`+recipeGroupBy, recipeID)
	recipe, err := scanRecipe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe_errors.ErrRecipeNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to get recipe: %v", recipe_errors.ErrDatabaseOperation, err)
	}

	images, err := d.listImages(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	recipe.Images = images
	return recipe, nil
}

func (d *RecipeDAO) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	recipe.UpdatedAt = time.Now().UTC()

	var categoryID *string
	if recipe.CategoryID != "" {
		categoryID = &recipe.CategoryID
	}

	tag, err := d.pool.Exec(ctx, `
		UPDATE recipes SET title = $2, description = $3, ingredients = $4,
			instructions = $5, prep_time = $6, cook_time = $7, servings = $8,
			difficulty = $9, category_id = $10, is_published = $11, updated_at = $12
		WHERE id = $1`,
		recipe.ID, recipe.Title, recipe.Description, recipe.Ingredients,
		recipe.Instructions, recipe.PrepTime, recipe.CookTime, recipe.Servings,
		string(recipe.Difficulty), categoryID, recipe.IsPublished, recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to update recipe: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	if tag.RowsAffected() == 0 {
		return recipe_errors.ErrRecipeNotFound
	}

	d.recordWrite(ctx, recipe.AuthorID, "recipe.update", recipe.ID)
	return nil
}

func (d *RecipeDAO) DeleteRecipe(ctx context.Context, recipeID, actorID string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, recipeID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete recipe: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	if tag.RowsAffected() == 0 {
		return recipe_errors.ErrRecipeNotFound
	}

	d.recordWrite(ctx, actorID, "recipe.delete", recipeID)
	return nil
}

// ListRecipes applies the multi-field search filter over published recipes.
func (d *RecipeDAO) ListRecipes(ctx context.Context, criteria model.RecipeSearchCriteria) ([]*model.Recipe, error) {
	var (
		where = []string{"r.is_published"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if criteria.Search != "" {
		p := arg("%" + criteria.Search + "%")
		where = append(where, fmt.Sprintf(
			"(r.title ILIKE %[1]s OR r.description ILIKE %[1]s OR r.ingredients ILIKE %[1]s OR r.instructions ILIKE %[1]s OR u.username ILIKE %[1]s)", p))
	}
	if criteria.CategoryID != "" {
		where = append(where, "r.category_id = "+arg(criteria.CategoryID))
	}
	if criteria.Difficulty != "" {
		where = append(where, "r.difficulty = "+arg(string(criteria.Difficulty)))
	}
	if criteria.MaxPrepTime > 0 {
		where = append(where, "r.prep_time <= "+arg(criteria.MaxPrepTime))
	}
	if criteria.MaxCookTime > 0 {
		where = append(where, "r.cook_time <= "+arg(criteria.MaxCookTime))
	}
	if criteria.MaxTotalTime > 0 {
		where = append(where, "r.prep_time + r.cook_time <= "+arg(criteria.MaxTotalTime))
	}
	if criteria.MinServings > 0 {
		where = append(where, "r.servings >= "+arg(criteria.MinServings))
	}
	if criteria.MaxServings > 0 {
		where = append(where, "r.servings <= "+arg(criteria.MaxServings))
	}
	if criteria.Author != "" {
		where = append(where, "u.username ILIKE "+arg("%"+criteria.Author+"%"))
	}
	if criteria.Featured != nil {
		where = append(where, "r.is_featured = "+arg(*criteria.Featured))
	}
	if criteria.CreatedAfter != nil {
		where = append(where, "r.created_at >= "+arg(*criteria.CreatedAfter))
	}
	if criteria.CreatedBefore != nil {
		where = append(where, "r.created_at <= "+arg(*criteria.CreatedBefore))
	}

	query := recipeSelect + " WHERE " + strings.Join(where, " AND ") + recipeGroupBy
	if criteria.MinRating > 0 {
		query += " HAVING coalesce(avg(rt.rating), 0) >= " + arg(criteria.MinRating)
	}
	query += " ORDER BY r.created_at DESC"

	limit := criteria.Limit
	if limit <= 0 {
		limit = 10
	}
	query += " LIMIT " + arg(limit)
	if criteria.Offset > 0 {
		query += " OFFSET " + arg(criteria.Offset)
	}

	return d.queryRecipes(ctx, query, args...)
}

func (d *RecipeDAO) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*model.Recipe, error) {
	if limit <= 0 {
		limit = 10
	}
	query := recipeSelect + ` WHERE r.author_id = $1` + recipeGroupBy +
		` ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`
	return d.queryRecipes(ctx, query, authorID, limit, offset)
}

func (d *RecipeDAO) ListFeatured(ctx context.Context, limit int) ([]*model.Recipe, error) {
	query := recipeSelect + ` WHERE r.is_published AND r.is_featured` + recipeGroupBy +
		` ORDER BY r.created_at DESC LIMIT $1`
	return d.queryRecipes(ctx, query, limit)
}

// ListPopular orders by rating average then view count.
func (d *RecipeDAO) ListPopular(ctx context.Context, limit int) ([]*model.Recipe, error) {
	query := recipeSelect + ` WHERE r.is_published` + recipeGroupBy +
		` ORDER BY coalesce(avg(rt.rating), 0) DESC, r.view_count DESC LIMIT $1`
	return d.queryRecipes(ctx, query, limit)
}

func (d *RecipeDAO) ListRecent(ctx context.Context, since time.Time, limit int) ([]*model.Recipe, error) {
	query := recipeSelect + ` WHERE r.is_published AND r.created_at >= $1` + recipeGroupBy +
		` ORDER BY r.created_at DESC LIMIT $2`
	return d.queryRecipes(ctx, query, since, limit)
}

func (d *RecipeDAO) queryRecipes(ctx context.Context, query string, args ...any) ([]*model.Recipe, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query recipes: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan recipe: %v", recipe_errors.ErrDatabaseOperation, err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (d *RecipeDAO) GetStats(ctx context.Context) (*model.RecipeStats, error) {
	var stats model.RecipeStats
	err := d.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM recipes),
			(SELECT count(*) FROM recipes WHERE is_published),
			(SELECT count(*) FROM ratings),
			coalesce((SELECT round(avg(rating), 2) FROM ratings), 0),
			(SELECT count(*) FROM categories WHERE is_active)`).
		Scan(&stats.TotalRecipes, &stats.TotalPublished, &stats.TotalRatings,
			&stats.AverageRating, &stats.TotalCategories)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get recipe stats: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return &stats, nil
}

func (d *RecipeDAO) IncrementViewCount(ctx context.Context, recipeID string) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE recipes SET view_count = view_count + 1 WHERE id = $1`, recipeID)
	if err != nil {
		return fmt.Errorf("%w: failed to increment view count: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return nil
}

// TrackView records one detail-page view.
func (d *RecipeDAO) TrackView(ctx context.Context, view *model.RecipeView) error {
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now().UTC()
	}

	var userID *string
	if view.UserID != "" {
		userID = &view.UserID
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO recipe_views (id, recipe_id, user_id, ip_address, user_agent, viewed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		view.ID, view.RecipeID, userID, view.IPAddress, view.UserAgent, view.ViewedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to track view: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	return nil
}

func (d *RecipeDAO) listImages(ctx context.Context, recipeID string) ([]model.RecipeImage, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, recipe_id, path, caption, is_primary, display_order, created_at
		FROM recipe_images WHERE recipe_id = $1 ORDER BY display_order, created_at`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list recipe images: %v", recipe_errors.ErrDatabaseOperation, err)
	}
	defer rows.Close()

	var images []model.RecipeImage
	for rows.Next() {
		var img model.RecipeImage
		if err := rows.Scan(&img.ID, &img.RecipeID, &img.Path, &img.Caption,
			&img.IsPrimary, &img.Order, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan recipe image: %v", recipe_errors.ErrDatabaseOperation, err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (d *RecipeDAO) recordWrite(ctx context.Context, actorID, action, recipeID string) {
	if d.auditSvc == nil {
		return
	}
	entry := audit.Entry{
		UserID:        actorID,
		Action:        action,
		ResourceType:  "recipe",
		ResourceID:    recipeID,
		AccessGranted: true,
	}
	if err := d.auditSvc.Record(ctx, entry); err != nil {
		logWarnAudit(action, err)
	}
}
