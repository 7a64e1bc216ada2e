package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
	"github.com/mbco-platform/netcash-backend/internal/platform/config"
	"github.com/mbco-platform/netcash-backend/internal/utils"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and
// deactivated accounts alike, so callers cannot probe for valid usernames.
var ErrInvalidCredentials = errors.New("invalid credentials")

// authService authenticates staff users and issues JWTs.
type authService struct {
	userRepo portsrepo.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo portsrepo.UserRepository, cfg *config.Config) portssvc.AuthSvcFacade {
	return &authService{userRepo: userRepo, cfg: cfg}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to look up user for login", slog.String("error", err.Error()))
		return nil, err
	}

	if !user.IsActive || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Warn("Login rejected", slog.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Info("Login succeeded", slog.String("user_id", user.UserID))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.cfg.JWTExpiryDuration),
		User:      dto.ToUserResponse(user),
	}, nil
}
