// controller/image_controller.go
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	"github.com/aniketsuryawanshi1/recipe-hub-api/middleware"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/policy"
	"github.com/aniketsuryawanshi1/recipe-hub-api/service"
	"github.com/aniketsuryawanshi1/recipe-hub-api/throttle"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

type ImageController struct {
	imageService  service.ImageService
	recipeService service.RecipeService
	auditSvc      audit.Service
	throttles     []throttle.Throttle
}

func NewImageController(imageService service.ImageService, recipeService service.RecipeService,
	auditSvc audit.Service, throttles ...throttle.Throttle) *ImageController {
	return &ImageController{
		imageService:  imageService,
		recipeService: recipeService,
		auditSvc:      auditSvc,
		throttles:     throttles,
	}
}

func (ic *ImageController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recipes/:id/images",
		middleware.Throttle(ic.throttles...),
		middleware.Authorize(ic.auditSvc, policy.Authenticated{}, policy.SellerOrReadOnly{}),
		ic.UploadImage)
	router.DELETE("/images/:id",
		middleware.Throttle(ic.throttles...),
		middleware.Authorize(ic.auditSvc, policy.Authenticated{}),
		ic.DeleteImage)
}

// UploadImage stores an image for the principal's recipe and queues the
// background resize. The response does not wait for processing.
func (ic *ImageController) UploadImage(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	recipe, err := ic.recipeService.GetRecipe(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		if errors.Is(err, recipe_errors.ErrRecipeNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Recipe not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load recipe", err)
		return
	}

	if !checkObject(c, ic.auditSvc, principal, recipe, policy.RecipeOwnerOrReadOnly{}) {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Image file is required", err)
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Failed to read image file", err)
		return
	}
	defer src.Close()

	isPrimary, _ := strconv.ParseBool(c.PostForm("is_primary"))
	order, _ := strconv.Atoi(c.PostForm("order"))

	image := &model.RecipeImage{
		Recipe:    recipe,
		RecipeID:  recipe.ID,
		Caption:   c.PostForm("caption"),
		IsPrimary: isPrimary,
		Order:     order,
	}
	if err := ic.imageService.UploadImage(c.Request.Context(), image, src, fileHeader.Filename); err != nil {
		if errors.Is(err, recipe_errors.ErrInvalidRecipeData) {
			util.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to upload image", err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (ic *ImageController) DeleteImage(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	image, err := ic.imageService.GetImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, recipe_errors.ErrImageNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Image not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load image", err)
		return
	}

	if !checkObject(c, ic.auditSvc, principal, image, policy.RecipeOwnerOrReadOnly{}) {
		return
	}

	if err := ic.imageService.DeleteImage(c.Request.Context(), image); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}
