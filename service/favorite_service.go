// service/favorite_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/dao"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

type FavoriteService interface {
	ToggleFavorite(ctx context.Context, userID, recipeID string) (favorited bool, err error)
	ListFavorites(ctx context.Context, userID string, limit, offset int) ([]*model.Recipe, error)
	IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)
}

type favoriteService struct {
	favoriteDAO *dao.FavoriteDAO
	bus         *util.EventBus
}

func NewFavoriteService(favoriteDAO *dao.FavoriteDAO, bus *util.EventBus) FavoriteService {
	return &favoriteService{favoriteDAO: favoriteDAO, bus: bus}
}

// ToggleFavorite flips the user's favorite mark for a recipe and reports
// the new state.
func (s *favoriteService) ToggleFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	existing, err := s.favoriteDAO.GetFavorite(ctx, userID, recipeID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		if err := s.favoriteDAO.DeleteFavorite(ctx, userID, recipeID); err != nil {
			return false, err
		}
		s.bus.Publish(ctx, util.FavoriteDeleted, util.RatingEvent{RecipeID: recipeID, UserID: userID})
		return false, nil
	}

	favorite := &model.Favorite{RecipeID: recipeID, UserID: userID}
	if err := s.favoriteDAO.CreateFavorite(ctx, favorite); err != nil {
		return false, err
	}
	s.bus.Publish(ctx, util.FavoriteCreated, util.RatingEvent{RecipeID: recipeID, UserID: userID})

	logger.Info("Recipe favorited",
		zap.String("recipeID", recipeID),
		zap.String("userID", userID))
	return true, nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, userID string, limit, offset int) ([]*model.Recipe, error) {
	return s.favoriteDAO.ListByUser(ctx, userID, limit, offset)
}

func (s *favoriteService) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	favorite, err := s.favoriteDAO.GetFavorite(ctx, userID, recipeID)
	if err != nil {
		return false, err
	}
	return favorite != nil, nil
}
