package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"carsource_backend/internal/auth"
	"carsource_backend/internal/logger"
	"carsource_backend/internal/models"
	"carsource_backend/internal/repositories"
	"carsource_backend/internal/services/dto"
	"carsource_backend/pkg/apperrors"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (dto.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
}

type authService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
}

func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.RefreshTokenRepository) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return dto.AuthResponse{}, apperrors.NewBadRequestError(err.Error())
	}

	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}
	if exists {
		return dto.AuthResponse{}, apperrors.NewConflictError("user", "Email is already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}

	role := models.UserRole(req.Role)
	if role == "" {
		role = models.UserRoleCustomer
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return s.issueTokens(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return dto.AuthResponse{}, apperrors.New(
			apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", 401)
	}

	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (dto.AuthResponse, error) {
	stored, err := s.tokenRepo.GetByToken(refreshToken)
	if err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}
	if stored == nil {
		return dto.AuthResponse{}, apperrors.NewUnauthorizedError("Invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokenRepo.DeleteByToken(refreshToken)
		return dto.AuthResponse{}, apperrors.New(
			apperrors.CodeTokenExpired, "auth", "Refresh token expired", 401)
	}

	user, err := s.userRepo.GetByID(stored.UserID)
	if err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}
	if user == nil {
		return dto.AuthResponse{}, apperrors.NewUnauthorizedError("Invalid refresh token")
	}

	// Rotate: the presented token is single-use.
	if err := s.tokenRepo.DeleteByToken(refreshToken); err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}

	return s.issueTokens(user)
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.tokenRepo.DeleteByUserID(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) issueTokens(user *models.User) (dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.tokenRepo.Create(record); err != nil {
		return dto.AuthResponse{}, apperrors.InternalError(err)
	}

	return dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.ToUserResponse(user),
	}, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
