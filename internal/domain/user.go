package domain

import (
	"context"
	"time"
)

// User is a global account stored in the master directory. A user with no
// CompanyID cannot resolve a tenant database.
type User struct {
	ID           int64
	Username     string // unique
	Email        string // unique
	PasswordHash string // bcrypt digest, never returned in API
	Role         string
	IsActive     bool
	CompanyID    *int64 // nullable FK to the master company record
	CreatedAt    time.Time
}

// UserRepository defines master-directory access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
}
