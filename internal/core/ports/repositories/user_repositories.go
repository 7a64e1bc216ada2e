package repositories

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// UserRepository defines persistence operations for staff users.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
