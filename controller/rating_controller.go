// controller/rating_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	"github.com/aniketsuryawanshi1/recipe-hub-api/middleware"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/policy"
	"github.com/aniketsuryawanshi1/recipe-hub-api/service"
	"github.com/aniketsuryawanshi1/recipe-hub-api/throttle"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
	helper_util "github.com/aniketsuryawanshi1/recipe-hub-api/util/helper"
)

type RatingController struct {
	ratingService service.RatingService
	recipeService service.RecipeService
	auditSvc      audit.Service
	throttles     []throttle.Throttle
}

func NewRatingController(ratingService service.RatingService, recipeService service.RecipeService,
	auditSvc audit.Service, throttles ...throttle.Throttle) *RatingController {
	return &RatingController{
		ratingService: ratingService,
		recipeService: recipeService,
		auditSvc:      auditSvc,
		throttles:     throttles,
	}
}

func (rc *RatingController) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes/:id/ratings", middleware.Throttle(rc.throttles...))
	{
		recipes.GET("", rc.ListRatings)
		recipes.POST("",
			middleware.Authorize(rc.auditSvc, policy.CanRate{}), rc.RateRecipe)
	}

	ratings := router.Group("/ratings", middleware.Throttle(rc.throttles...))
	{
		ratings.DELETE("/:id",
			middleware.Authorize(rc.auditSvc, policy.Authenticated{}), rc.DeleteRating)
	}
}

type ratingRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

// RateRecipe records or replaces the principal's rating for a recipe.
func (rc *RatingController) RateRecipe(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid rating payload", err)
		return
	}

	recipe, err := rc.recipeService.GetRecipe(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		if errors.Is(err, recipe_errors.ErrRecipeNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Recipe not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load recipe", err)
		return
	}

	rating := &model.Rating{
		Recipe:   recipe,
		RecipeID: recipe.ID,
		User:     principal,
		UserID:   principal.ID,
		Value:    req.Rating,
		Review:   req.Review,
	}
	if !checkObject(c, rc.auditSvc, principal, rating, policy.CanRate{}) {
		return
	}

	created, err := rc.ratingService.RateRecipe(c.Request.Context(), rating)
	if err != nil {
		if errors.Is(err, recipe_errors.ErrInvalidRatingData) {
			util.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to rate recipe", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, rating)
}

func (rc *RatingController) ListRatings(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	ratings, err := rc.ratingService.ListByRecipe(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list ratings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings, "count": len(ratings)})
}

func (rc *RatingController) DeleteRating(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	rating, err := rc.ratingService.GetRating(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, recipe_errors.ErrRatingNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Rating not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load rating", err)
		return
	}
	rating.User = &model.User{ID: rating.UserID, IsActive: true}

	if !checkObject(c, rc.auditSvc, principal, rating, policy.OwnerOrReadOnly{}) {
		return
	}

	if err := rc.ratingService.DeleteRating(c.Request.Context(), rating, principal.ID); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete rating", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating deleted"})
}
