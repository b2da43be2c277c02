// service/rating_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/dao"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

type RatingService interface {
	RateRecipe(ctx context.Context, rating *model.Rating) (created bool, err error)
	DeleteRating(ctx context.Context, rating *model.Rating, actorID string) error
	ListByRecipe(ctx context.Context, recipeID string, limit, offset int) ([]*model.Rating, error)
	GetRating(ctx context.Context, ratingID string) (*model.Rating, error)
	GetByUserAndRecipe(ctx context.Context, userID, recipeID string) (*model.Rating, error)
}

type ratingService struct {
	ratingDAO  *dao.RatingDAO
	bus        *util.EventBus
	validation *util.ValidationUtil
}

func NewRatingService(ratingDAO *dao.RatingDAO, bus *util.EventBus, validation *util.ValidationUtil) RatingService {
	return &ratingService{ratingDAO: ratingDAO, bus: bus, validation: validation}
}

// RateRecipe records the user's rating, replacing any earlier one for the
// same recipe. The caller has already run the rating policy against the
// loaded recipe.
func (s *ratingService) RateRecipe(ctx context.Context, rating *model.Rating) (bool, error) {
	if err := s.validation.ValidateRating(*rating); err != nil {
		return false, fmt.Errorf("%w: %v", recipe_errors.ErrInvalidRatingData, err)
	}

	created, err := s.ratingDAO.UpsertRating(ctx, rating)
	if err != nil {
		return false, err
	}

	eventType := util.RatingUpdated
	if created {
		eventType = util.RatingCreated
	}
	s.bus.PublishSync(ctx, eventType, util.RatingEvent{
		RecipeID: rating.RecipeID,
		UserID:   rating.UserID,
		Value:    rating.Value,
	})
	logger.Info("Recipe rated",
		zap.String("recipeID", rating.RecipeID),
		zap.String("userID", rating.UserID),
		zap.Int("rating", rating.Value),
		zap.Bool("created", created))
	return created, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, rating *model.Rating, actorID string) error {
	if err := s.ratingDAO.DeleteRating(ctx, rating.ID, actorID); err != nil {
		return err
	}

	s.bus.PublishSync(ctx, util.RatingDeleted, util.RatingEvent{
		RecipeID: rating.RecipeID,
		UserID:   rating.UserID,
		Value:    rating.Value,
	})
	return nil
}

func (s *ratingService) ListByRecipe(ctx context.Context, recipeID string, limit, offset int) ([]*model.Rating, error) {
	return s.ratingDAO.ListByRecipe(ctx, recipeID, limit, offset)
}

func (s *ratingService) GetRating(ctx context.Context, ratingID string) (*model.Rating, error) {
	return s.ratingDAO.GetRating(ctx, ratingID)
}

func (s *ratingService) GetByUserAndRecipe(ctx context.Context, userID, recipeID string) (*model.Rating, error) {
	return s.ratingDAO.GetByUserAndRecipe(ctx, userID, recipeID)
}
