// Package models holds the identity domain model.
package models

import (
	"time"

	id "opsledger/pkg/domain"
)

// Roles a user account can hold. RoleNone is returned for accounts without a
// role row; it never grants access to anything.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleNone  = "none"
)

// ValidRole reports whether a role can be assigned to an account.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// UserAccount is an authenticated account. The password is stored as a bcrypt
// hash and never leaves the identity vertical.
type UserAccount struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRole binds an account to its role.
type UserRole struct {
	UserID    id.UserID
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
