// controller/recipe_controller.go
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

type RecipeController struct {
	recipeService service.RecipeService
	auditSvc      audit.Service
	throttles     []throttle.Throttle
}

func NewRecipeController(recipeService service.RecipeService, auditSvc audit.Service,
	throttles ...throttle.Throttle) *RecipeController {
	return &RecipeController{
		recipeService: recipeService,
		auditSvc:      auditSvc,
		throttles:     throttles,
	}
}

func (rc *RecipeController) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes", middleware.Throttle(rc.throttles...))
	{
		recipes.GET("", rc.ListRecipes)
		recipes.GET("/featured", rc.FeaturedRecipes)
		recipes.GET("/popular", rc.PopularRecipes)
		recipes.GET("/stats", rc.Stats)
		recipes.GET("/my-recipes",
			middleware.Authorize(rc.auditSvc, policy.SellerOnly{}), rc.MyRecipes)
		recipes.POST("",
			middleware.Authorize(rc.auditSvc, policy.Authenticated{}, policy.SellerOrReadOnly{}),
			rc.CreateRecipe)
		recipes.GET("/:id", rc.GetRecipe)
		recipes.PUT("/:id",
			middleware.Authorize(rc.auditSvc, policy.Authenticated{}), rc.UpdateRecipe)
		recipes.DELETE("/:id",
			middleware.Authorize(rc.auditSvc, policy.Authenticated{}), rc.DeleteRecipe)
	}

	categories := router.Group("/categories", middleware.Throttle(rc.throttles...))
	{
		categories.GET("", rc.ListCategories)
		categories.GET("/:id/recipes", rc.CategoryRecipes)
	}
}

type recipeRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description" binding:"required"`
	Ingredients  string `json:"ingredients" binding:"required"`
	Instructions string `json:"instructions" binding:"required"`
	PrepTime     int    `json:"prep_time"`
	CookTime     int    `json:"cook_time"`
	Servings     int    `json:"servings"`
	Difficulty   string `json:"difficulty" binding:"required"`
	CategoryID   string `json:"category_id"`
	IsPublished  bool   `json:"is_published"`
}

func (rc *RecipeController) ListRecipes(c *gin.Context) {
	var criteria model.RecipeSearchCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid search parameters", err)
		return
	}

	recipes, err := rc.recipeService.ListRecipes(c.Request.Context(), criteria)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

func (rc *RecipeController) GetRecipe(c *gin.Context) {
	view := &model.RecipeView{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if principal := util.PrincipalFromContext(c); principal != nil {
		view.UserID = principal.ID
	}

	recipe, err := rc.recipeService.GetRecipe(c.Request.Context(), c.Param("id"), view)
	if err != nil {
		if errors.Is(err, recipe_errors.ErrRecipeNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Recipe not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load recipe", err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (rc *RecipeController) CreateRecipe(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid recipe payload", err)
		return
	}

	recipe := &model.Recipe{
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		Difficulty:   model.Difficulty(req.Difficulty),
		CategoryID:   req.CategoryID,
		IsPublished:  req.IsPublished,
		Author:       principal,
		AuthorID:     principal.ID,
	}
	if err := rc.recipeService.CreateRecipe(c.Request.Context(), recipe); err != nil {
		rc.respondRecipeError(c, err, "Failed to create recipe")
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (rc *RecipeController) UpdateRecipe(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	recipe, err := rc.recipeService.GetRecipe(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		rc.respondRecipeError(c, err, "Failed to load recipe")
		return
	}

	if !checkObject(c, rc.auditSvc, principal, recipe, policy.RecipeOwnerOrReadOnly{}) {
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid recipe payload", err)
		return
	}

	recipe.Title = req.Title
	recipe.Description = req.Description
	recipe.Ingredients = req.Ingredients
	recipe.Instructions = req.Instructions
	recipe.PrepTime = req.PrepTime
	recipe.CookTime = req.CookTime
	recipe.Servings = req.Servings
	recipe.Difficulty = model.Difficulty(req.Difficulty)
	recipe.CategoryID = req.CategoryID
	recipe.IsPublished = req.IsPublished

	if err := rc.recipeService.UpdateRecipe(c.Request.Context(), recipe); err != nil {
		rc.respondRecipeError(c, err, "Failed to update recipe")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (rc *RecipeController) DeleteRecipe(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	recipe, err := rc.recipeService.GetRecipe(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		rc.respondRecipeError(c, err, "Failed to load recipe")
		return
	}

	if !checkObject(c, rc.auditSvc, principal, recipe, policy.RecipeOwnerOrReadOnly{}) {
		return
	}

	if err := rc.recipeService.DeleteRecipe(c.Request.Context(), recipe, principal.ID); err != nil {
		rc.respondRecipeError(c, err, "Failed to delete recipe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
}

func (rc *RecipeController) MyRecipes(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	recipes, err := rc.recipeService.ListByAuthor(c.Request.Context(), principal.ID, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

func (rc *RecipeController) FeaturedRecipes(c *gin.Context) {
	recipes, err := rc.recipeService.FeaturedRecipes(c.Request.Context())
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list featured recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (rc *RecipeController) PopularRecipes(c *gin.Context) {
	recipes, err := rc.recipeService.PopularRecipes(c.Request.Context())
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list popular recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (rc *RecipeController) Stats(c *gin.Context) {
	stats, err := rc.recipeService.Stats(c.Request.Context())
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load recipe stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (rc *RecipeController) ListCategories(c *gin.Context) {
	categories, err := rc.recipeService.ListCategories(c.Request.Context())
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (rc *RecipeController) CategoryRecipes(c *gin.Context) {
	recipes, err := rc.recipeService.CategoryRecipes(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, recipe_errors.ErrCategoryNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Category not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list category recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (rc *RecipeController) respondRecipeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, recipe_errors.ErrRecipeNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Recipe not found", err)
	case errors.Is(err, recipe_errors.ErrCategoryNotFound):
		util.RespondWithError(c, http.StatusBadRequest, "Category not found", err)
	case errors.Is(err, recipe_errors.ErrInvalidRecipeData):
		util.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, err)
	}
}
