package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role discriminates rider, driver, and admin accounts. A role is
// assigned at sign-up and never changes afterwards.
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// IsValid validates the role
func (r Role) IsValid() bool {
	switch r {
	case RoleRider, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// DefaultDashboard returns the dashboard path a user of this role
// lands on after login or a denied route.
func (r Role) DefaultDashboard() string {
	switch r {
	case RoleRider:
		return "/rider"
	case RoleDriver:
		return "/driver"
	case RoleAdmin:
		return "/admin"
	default:
		return "/"
	}
}

// User represents an authenticated account joined with its profile row.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValid validates the user entity
func (u *User) IsValid() error {
	if u.Name == "" {
		return ErrInvalidName
	}
	if u.Email == "" {
		return ErrInvalidEmail
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

// ProfileUpdate carries the mutable profile fields. Role and email are
// not part of it.
type ProfileUpdate struct {
	Name      string
	Phone     string
	AvatarURL *string
}

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user with its password hash
	Create(ctx context.Context, u *User, passwordHash string) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user and its password hash by email
	GetByEmail(ctx context.Context, email string) (*User, string, error)

	// UpdateProfile updates name, phone, and avatar for a user
	UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) error

	// List retrieves users, optionally restricted to a role
	List(ctx context.Context, role *Role) ([]*User, error)
}
