package domain

import "time"

// UserRole is the closed set of staff roles. New roles are a compile-time
// visible change, not a free-form string.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleOperations UserRole = "OPERATIONS"
	RoleTreasury   UserRole = "TREASURY"
)

// User represents a staff member operating the platform.
type User struct {
	UserID       string   `json:"userID"`
	Name         string   `json:"name"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	IsActive     bool     `json:"isActive"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
