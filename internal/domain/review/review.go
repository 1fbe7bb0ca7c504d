package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Review is the single source of truth for ride ratings. Rides carry no
// rating columns of their own; listings join this table.
type Review struct {
	ID         uuid.UUID `json:"id"`
	RideID     uuid.UUID `json:"ride_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsValid validates the review
func (r *Review) IsValid() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// Repository defines the interface for review data access
type Repository interface {
	// Upsert inserts the review for a ride, or replaces the rating and
	// comment when the rider re-submits. One review per ride.
	Upsert(ctx context.Context, rev *Review) error

	// GetByRideID retrieves the review for a ride
	GetByRideID(ctx context.Context, rideID uuid.UUID) (*Review, error)

	// ListByReviewee retrieves reviews received by a user, newest first
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*Review, error)
}

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)
