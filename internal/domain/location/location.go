package location

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Location is an immutable address + coordinate pair. Every ride
// references two of these rows; they are never shared between rides.
type Location struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedLocation is a user-owned bookmark such as home or work.
type SavedLocation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	IsHome    bool      `json:"is_home"`
	IsWork    bool      `json:"is_work"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedRepository defines the interface for saved location access
type SavedRepository interface {
	Create(ctx context.Context, loc *SavedLocation) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*SavedLocation, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

var (
	ErrSavedLocationNotFound = errors.New("saved location not found")
	ErrInvalidAddress        = errors.New("invalid address")
)
