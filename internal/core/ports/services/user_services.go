package services

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	"github.com/mbco-platform/netcash-backend/internal/dto"
)

// UserSvcFacade manages staff users.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// AuthSvcFacade authenticates staff credentials and issues access tokens.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}
