// Package user holds the account model and its persistence.
//
// Record is the stored row, including the password hash; Profile is the
// public projection returned to clients and never carries the hash.
package user

import (
	"context"
	"errors"
	"time"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Store errors.
var (
	ErrNotFound      = errors.New("user: not found")
	ErrUsernameTaken = errors.New("user: username taken")
	ErrEmailTaken    = errors.New("user: email taken")
)

// Record is a stored user account.
type Record struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Username     string     `gorm:"column:username"`
	Email        string     `gorm:"column:email"`
	PasswordHash string     `gorm:"column:password"`
	Role         string     `gorm:"column:role"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	LastLogin    *time.Time `gorm:"column:last_login"`
}

// TableName maps Record to the users table.
func (Record) TableName() string { return "users" }

// Profile is the client-facing view of a user.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile projects r without its password hash.
func (r *Record) Profile() Profile {
	return Profile{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
	}
}

// Store is the credential store used by the session service.
type Store interface {
	// FindByIdentifier matches username or email case-insensitively.
	// It returns (nil, nil) when nothing matches.
	FindByIdentifier(ctx context.Context, identifier string) (*Record, error)

	// FindByID returns ErrNotFound when no user has id.
	FindByID(ctx context.Context, id string) (*Record, error)

	// UpdateLastLogin sets last_login for id in a single statement.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// Taken reports whether username or email is already registered,
	// ignoring case.
	Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)

	// Create inserts r. A uniqueness failure is returned as
	// ErrUsernameTaken or ErrEmailTaken.
	Create(ctx context.Context, r *Record) error
}
