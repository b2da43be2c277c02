// service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aniketsuryawanshi1/recipe-hub-api/dao"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/middleware"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

// UserService covers registration, login and profile management.
type UserService interface {
	Register(ctx context.Context, req RegistrationRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req ProfileUpdateRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type RegistrationRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ProfileUpdateRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type userService struct {
	userDAO    *dao.UserDAO
	validation *util.ValidationUtil
}

func NewUserService(userDAO *dao.UserDAO, validation *util.ValidationUtil) UserService {
	return &userService{userDAO: userDAO, validation: validation}
}

func (s *userService) Register(ctx context.Context, req RegistrationRequest) (*model.User, error) {
	if err := s.validation.ValidateRegistration(req.Username, req.Email, req.Password, req.Role); err != nil {
		return nil, fmt.Errorf("%w: %v", recipe_errors.ErrInvalidUserData, err)
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recipe_errors.ErrInvalidRole, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", recipe_errors.ErrInternalServer, err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		IsActive:     true,
		PasswordHash: string(hash),
	}
	if err := s.userDAO.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User registered",
		zap.String("userID", user.ID),
		zap.String("role", string(user.Role)))
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userDAO.GetUserByEmail(ctx, email)
	if errors.Is(err, recipe_errors.ErrUserNotFound) {
		return nil, "", recipe_errors.ErrInvalidCredentials
	} else if err != nil {
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", recipe_errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", recipe_errors.ErrInvalidCredentials
	}

	token, err := middleware.IssueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to issue token: %v", recipe_errors.ErrInternalServer, err)
	}

	if err := s.userDAO.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn("Failed to update last login", zap.String("userID", user.ID), zap.Error(err))
	}

	logger.Info("User logged in", zap.String("userID", user.ID))
	return user, token, nil
}

func (s *userService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return s.userDAO.GetUserByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName

	if err := s.userDAO.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", recipe_errors.ErrInvalidUserData)
	}

	user, err := s.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return recipe_errors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: failed to hash password: %v", recipe_errors.ErrInternalServer, err)
	}
	return s.userDAO.UpdatePassword(ctx, userID, string(hash))
}
