// controller/auth_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/middleware"
	"github.com/aniketsuryawanshi1/recipe-hub-api/policy"
	"github.com/aniketsuryawanshi1/recipe-hub-api/service"
	"github.com/aniketsuryawanshi1/recipe-hub-api/throttle"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

type AuthController struct {
	userService service.UserService
	auditSvc    audit.Service
	anonLimit   throttle.Throttle
}

func NewAuthController(userService service.UserService, auditSvc audit.Service,
	anonLimit throttle.Throttle) *AuthController {
	return &AuthController{
		userService: userService,
		auditSvc:    auditSvc,
		anonLimit:   anonLimit,
	}
}

func (ac *AuthController) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", middleware.Throttle(ac.anonLimit), ac.Register)
		auth.POST("/login", middleware.Throttle(ac.anonLimit), ac.Login)
		auth.POST("/logout", ac.Logout)

		user := auth.Group("/user", middleware.Authorize(ac.auditSvc, policy.Authenticated{}))
		{
			user.GET("/current", ac.CurrentUser)
			user.PUT("/profile", ac.UpdateProfile)
			user.POST("/change-password", ac.ChangePassword)
		}
	}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req service.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid registration payload", err)
		return
	}

	user, err := ac.userService.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, recipe_errors.ErrEmailTaken):
			util.RespondWithError(c, http.StatusConflict, "Email is already registered", err)
		case errors.Is(err, recipe_errors.ErrInvalidRole),
			errors.Is(err, recipe_errors.ErrInvalidUserData):
			util.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to register user", err)
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid login payload", err)
		return
	}

	user, token, err := ac.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, recipe_errors.ErrInvalidCredentials) {
			util.RespondWithError(c, http.StatusUnauthorized, "Invalid email or password", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to log in", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout is log-only: access tokens are stateless and expire on their own.
func (ac *AuthController) Logout(c *gin.Context) {
	if principal := util.PrincipalFromContext(c); principal != nil {
		logger.Info("User logged out", zap.String("userID", principal.ID))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) CurrentUser(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	user, err := ac.userService.CurrentUser(c.Request.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, recipe_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	var req service.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid profile payload", err)
		return
	}

	user, err := ac.userService.UpdateProfile(c.Request.Context(), principal.ID, req)
	if err != nil {
		if errors.Is(err, recipe_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	principal := util.PrincipalFromContext(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid password payload", err)
		return
	}

	err := ac.userService.ChangePassword(c.Request.Context(), principal.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, recipe_errors.ErrInvalidCredentials):
			util.RespondWithError(c, http.StatusUnauthorized, "Current password is incorrect", err)
		case errors.Is(err, recipe_errors.ErrInvalidUserData):
			util.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to change password", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
