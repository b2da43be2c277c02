// controller/favorite_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	"github.com/aniketsuryawanshi1/recipe-hub-api/middleware"
	"github.com/aniketsuryawanshi1/recipe-hub-api/policy"
	"github.com/aniketsuryawanshi1/recipe-hub-api/service"
	"github.com/aniketsuryawanshi1/recipe-hub-api/throttle"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
	helper_util "github.com/aniketsuryawanshi1/recipe-hub-api/util/helper"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
	recipeService   service.RecipeService
	auditSvc        audit.Service
	throttles       []throttle.Throttle
}

func NewFavoriteController(favoriteService service.FavoriteService, recipeService service.RecipeService,
	auditSvc audit.Service, throttles ...throttle.Throttle) *FavoriteController {
	return &FavoriteController{
		favoriteService: favoriteService,
		recipeService:   recipeService,
		auditSvc:        auditSvc,
		throttles:       throttles,
	}
}

func (fc *FavoriteController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recipes/:id/favorite",
		middleware.Throttle(fc.throttles...),
		middleware.Authorize(fc.auditSvc, policy.Authenticated{}),
		fc.ToggleFavorite)
	router.GET("/favorites",
		middleware.Throttle(fc.throttles...),
		middleware.Authorize(fc.auditSvc, policy.Authenticated{}),
		fc.ListFavorites)
}

// ToggleFavorite flips the favorite mark and reports the new state.
func (fc *FavoriteController) ToggleFavorite(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	recipe, err := fc.recipeService.GetRecipe(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		if errors.Is(err, recipe_errors.ErrRecipeNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Recipe not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load recipe", err)
		return
	}

	favorited, err := fc.favoriteService.ToggleFavorite(c.Request.Context(), principal.ID, recipe.ID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to toggle favorite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": recipe.ID, "favorited": favorited})
}

func (fc *FavoriteController) ListFavorites(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	recipes, err := fc.favoriteService.ListFavorites(c.Request.Context(), principal.ID, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list favorites", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}
