package dto

import (
	"time"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// CreateUserRequest registers a staff user.
type CreateUserRequest struct {
	Name     string          `json:"name" binding:"required"`
	Username string          `json:"username" binding:"required"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     domain.UserRole `json:"role" binding:"required,oneof=ADMIN OPERATIONS TREASURY"`
}

// UserResponse mirrors domain.User without credentials.
type UserResponse struct {
	UserID    string          `json:"userID"`
	Name      string          `json:"name"`
	Username  string          `json:"username"`
	Role      domain.UserRole `json:"role"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToUserResponse converts a domain.User to its API representation.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
