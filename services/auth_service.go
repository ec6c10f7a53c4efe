package services

import (
	"context"
	"errors"
	"net/http"

	"artsstore/models"
	"artsstore/repositories"
	"artsstore/utils"

	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string
	Password string
	Nickname string
	Email    string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (models.User, string, error)
	Login(ctx context.Context, username, password string) (models.User, string, error)
	GetProfile(ctx context.Context, userID uint) (models.User, error)
}

type authService struct {
	users repositories.UserRepository
}

func NewAuthService(users repositories.UserRepository) AuthService {
	return &authService{users: users}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	count, err := s.users.CountByUsername(ctx, in.Username)
	if err != nil {
		return models.User{}, "", newAppError(http.StatusInternalServerError, "failed to check username", err)
	}
	if count > 0 {
		return models.User{}, "", newAppError(http.StatusBadRequest, "username already taken", nil)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.User{}, "", newAppError(http.StatusInternalServerError, "failed to hash password", err)
	}

	user := models.User{
		Username: in.Username,
		Password: hashed,
		Nickname: in.Nickname,
		Email:    in.Email,
		Role:     models.RoleCustomer,
	}
	if err := s.users.Create(ctx, nil, &user); err != nil {
		return models.User{}, "", newAppError(http.StatusInternalServerError, "failed to create user", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return models.User{}, "", newAppError(http.StatusInternalServerError, "failed to issue token", err)
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, "", newAppError(http.StatusUnauthorized, "invalid username or password", nil)
		}
		return models.User{}, "", newAppError(http.StatusInternalServerError, "failed to query user", err)
	}

	if !utils.CheckPassword(password, user.Password) {
		return models.User{}, "", newAppError(http.StatusUnauthorized, "invalid username or password", nil)
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return models.User{}, "", newAppError(http.StatusInternalServerError, "failed to issue token", err)
	}
	return user, token, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, newAppError(http.StatusNotFound, "user not found", nil)
		}
		return models.User{}, newAppError(http.StatusInternalServerError, "failed to query user", err)
	}
	return user, nil
}
