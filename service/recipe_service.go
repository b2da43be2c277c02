// service/recipe_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/dao"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

// RecipeService is the recipe domain's write and read path. Writes publish
// their invalidation event synchronously after the row commits, so cached
// entries are gone before the response goes out.
type RecipeService interface {
	ListRecipes(ctx context.Context, criteria model.RecipeSearchCriteria) ([]*model.Recipe, error)
	GetRecipe(ctx context.Context, recipeID string, view *model.RecipeView) (*model.Recipe, error)
	CreateRecipe(ctx context.Context, recipe *model.Recipe) error
	UpdateRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, recipe *model.Recipe, actorID string) error
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*model.Recipe, error)
	FeaturedRecipes(ctx context.Context) ([]*model.Recipe, error)
	PopularRecipes(ctx context.Context) ([]*model.Recipe, error)
	Stats(ctx context.Context) (*model.RecipeStats, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	CategoryRecipes(ctx context.Context, categoryID string) ([]*model.Recipe, error)
}

const highlightLimit = 10

type recipeService struct {
	recipeDAO   *dao.RecipeDAO
	categoryDAO *dao.CategoryDAO
	cache       *util.CacheService
	bus         *util.EventBus
	validation  *util.ValidationUtil
}

func NewRecipeService(recipeDAO *dao.RecipeDAO, categoryDAO *dao.CategoryDAO,
	cache *util.CacheService, bus *util.EventBus, validation *util.ValidationUtil) RecipeService {
	return &recipeService{
		recipeDAO:   recipeDAO,
		categoryDAO: categoryDAO,
		cache:       cache,
		bus:         bus,
		validation:  validation,
	}
}

func (s *recipeService) ListRecipes(ctx context.Context, criteria model.RecipeSearchCriteria) ([]*model.Recipe, error) {
	return s.recipeDAO.ListRecipes(ctx, criteria)
}

// GetRecipe serves the detail page through the cache. The view, when given,
// is tracked without blocking the response.
func (s *recipeService) GetRecipe(ctx context.Context, recipeID string, view *model.RecipeView) (*model.Recipe, error) {
	key := util.RecipeKey(recipeID)

	var cached model.Recipe
	if s.cache.GetJSON(ctx, key, &cached) {
		s.trackView(recipeID, view)
		return &cached, nil
	}

	recipe, err := s.recipeDAO.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, recipe)
	s.trackView(recipeID, view)
	return recipe, nil
}

func (s *recipeService) trackView(recipeID string, view *model.RecipeView) {
	if view == nil {
		return
	}
	view.RecipeID = recipeID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.recipeDAO.IncrementViewCount(ctx, recipeID); err != nil {
			logger.Warn("Failed to increment view count",
				zap.String("recipeID", recipeID), zap.Error(err))
		}
		if err := s.recipeDAO.TrackView(ctx, view); err != nil {
			logger.Warn("Failed to track recipe view",
				zap.String("recipeID", recipeID), zap.Error(err))
		}
	}()
}

func (s *recipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	if err := s.validation.ValidateRecipe(*recipe); err != nil {
		return fmt.Errorf("%w: %v", recipe_errors.ErrInvalidRecipeData, err)
	}
	if recipe.CategoryID != "" {
		if _, err := s.categoryDAO.GetCategory(ctx, recipe.CategoryID); err != nil {
			return err
		}
	}

	if err := s.recipeDAO.CreateRecipe(ctx, recipe); err != nil {
		return err
	}

	s.bus.PublishSync(ctx, util.RecipeCreated, util.RecipeEvent{
		RecipeID:   recipe.ID,
		AuthorID:   recipe.AuthorID,
		CategoryID: recipe.CategoryID,
		Title:      recipe.Title,
	})
	logger.Info("Recipe created",
		zap.String("recipeID", recipe.ID),
		zap.String("authorID", recipe.AuthorID))
	return nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	if err := s.validation.ValidateRecipe(*recipe); err != nil {
		return fmt.Errorf("%w: %v", recipe_errors.ErrInvalidRecipeData, err)
	}
	if recipe.CategoryID != "" {
		if _, err := s.categoryDAO.GetCategory(ctx, recipe.CategoryID); err != nil {
			return err
		}
	}

	if err := s.recipeDAO.UpdateRecipe(ctx, recipe); err != nil {
		return err
	}

	s.bus.PublishSync(ctx, util.RecipeUpdated, util.RecipeEvent{
		RecipeID:   recipe.ID,
		AuthorID:   recipe.AuthorID,
		CategoryID: recipe.CategoryID,
		Title:      recipe.Title,
	})
	return nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipe *model.Recipe, actorID string) error {
	if err := s.recipeDAO.DeleteRecipe(ctx, recipe.ID, actorID); err != nil {
		return err
	}

	s.bus.PublishSync(ctx, util.RecipeDeleted, util.RecipeEvent{
		RecipeID:   recipe.ID,
		AuthorID:   recipe.AuthorID,
		CategoryID: recipe.CategoryID,
		Title:      recipe.Title,
	})
	logger.Info("Recipe deleted",
		zap.String("recipeID", recipe.ID),
		zap.String("actorID", actorID))
	return nil
}

func (s *recipeService) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*model.Recipe, error) {
	return s.recipeDAO.ListByAuthor(ctx, authorID, limit, offset)
}

func (s *recipeService) FeaturedRecipes(ctx context.Context) ([]*model.Recipe, error) {
	var cached []*model.Recipe
	if s.cache.GetJSON(ctx, util.FeaturedRecipesKey, &cached) {
		return cached, nil
	}

	recipes, err := s.recipeDAO.ListFeatured(ctx, highlightLimit)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, util.FeaturedRecipesKey, recipes)
	return recipes, nil
}

func (s *recipeService) PopularRecipes(ctx context.Context) ([]*model.Recipe, error) {
	var cached []*model.Recipe
	if s.cache.GetJSON(ctx, util.PopularRecipesKey, &cached) {
		return cached, nil
	}

	recipes, err := s.recipeDAO.ListPopular(ctx, highlightLimit)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, util.PopularRecipesKey, recipes)
	return recipes, nil
}

func (s *recipeService) Stats(ctx context.Context) (*model.RecipeStats, error) {
	var cached model.RecipeStats
	if s.cache.GetJSON(ctx, util.RecipeStatsKey, &cached) {
		return &cached, nil
	}

	stats, err := s.recipeDAO.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, util.RecipeStatsKey, stats)
	return stats, nil
}

func (s *recipeService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.categoryDAO.ListActiveCategories(ctx)
}

func (s *recipeService) CategoryRecipes(ctx context.Context, categoryID string) ([]*model.Recipe, error) {
	if _, err := s.categoryDAO.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	key := util.CategoryRecipesKey(categoryID)
	var cached []*model.Recipe
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	recipes, err := s.recipeDAO.ListRecipes(ctx, model.RecipeSearchCriteria{
		CategoryID: categoryID,
		Limit:      50,
	})
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, recipes)
	return recipes, nil
}
