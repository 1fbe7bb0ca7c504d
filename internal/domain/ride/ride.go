package ride

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/domain/location"
	"github.com/habalhub/habal-hub/internal/domain/user"
)

// Status represents the ride lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitions encodes the lifecycle as data. Cancellation is only
// reachable before the trip starts; there is no cancel from in_progress.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentMethod is how the rider pays for the trip.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentGCash   PaymentMethod = "gcash"
	PaymentPayMaya PaymentMethod = "paymaya"
)

// IsValid validates the payment method
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentGCash, PaymentPayMaya:
		return true
	}
	return false
}

// Ride represents a requested transport from pickup to dropoff.
// Rating and Review are read-time joins from the reviews table.
type Ride struct {
	ID                uuid.UUID          `json:"id"`
	RiderID           uuid.UUID          `json:"rider_id"`
	DriverID          *uuid.UUID         `json:"driver_id,omitempty"`
	Status            Status             `json:"status"`
	PickupLocationID  uuid.UUID          `json:"pickup_location_id"`
	DropoffLocationID uuid.UUID          `json:"dropoff_location_id"`
	Pickup            *location.Location `json:"pickup_location,omitempty"`
	Dropoff           *location.Location `json:"dropoff_location,omitempty"`
	Fare              float64            `json:"fare"`
	PaymentMethod     PaymentMethod      `json:"payment_method"`
	ScheduledTime     time.Time          `json:"scheduled_time"`
	PickupTime        *time.Time         `json:"pickup_time,omitempty"`
	CompletedTime     *time.Time         `json:"completed_time,omitempty"`
	Rating            *int               `json:"rating,omitempty"`
	Review            *string            `json:"review,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// CanAccept checks if a driver can take this ride
func (r *Ride) CanAccept() bool {
	return r.Status == StatusPending && r.DriverID == nil
}

// CanStart checks if the assigned driver can start the trip
func (r *Ride) CanStart(driverID uuid.UUID) bool {
	return r.Status == StatusAccepted && r.DriverID != nil && *r.DriverID == driverID
}

// CanComplete checks if the assigned driver can finish the trip
func (r *Ride) CanComplete(driverID uuid.UUID) bool {
	return r.Status == StatusInProgress && r.DriverID != nil && *r.DriverID == driverID
}

// CanCancel checks if the rider can still cancel
func (r *Ride) CanCancel() bool {
	return r.Status == StatusPending || r.Status == StatusAccepted
}

// CanRate checks if the rider can rate the completed trip
func (r *Ride) CanRate() bool {
	return r.Status == StatusCompleted
}

// Filter narrows a ride listing. Role decides the ownership predicate:
// riders see their own rides, drivers see open requests plus rides
// assigned to them.
type Filter struct {
	UserID   uuid.UUID
	Role     user.Role
	Statuses []Status
}

// Repository defines the interface for ride data access. The transition
// methods are compare-and-set: they return false when the row was not in
// the expected state, which is how concurrent acceptance loses.
type Repository interface {
	// Create inserts the pickup location, dropoff location, and ride
	// row in a single transaction.
	Create(ctx context.Context, r *Ride) error

	// GetByID retrieves a ride with both location rows joined
	GetByID(ctx context.Context, id uuid.UUID) (*Ride, error)

	// List retrieves rides for a filter, newest first
	List(ctx context.Context, f Filter) ([]*Ride, error)

	// Accept assigns a driver to a pending, unassigned ride
	Accept(ctx context.Context, rideID, driverID uuid.UUID) (bool, error)

	// Start moves an accepted ride to in_progress and stamps pickup time
	Start(ctx context.Context, rideID, driverID uuid.UUID, at time.Time) (bool, error)

	// Complete moves an in_progress ride to completed and stamps completion
	Complete(ctx context.Context, rideID, driverID uuid.UUID, at time.Time) (bool, error)

	// Cancel moves a pending or accepted ride to cancelled
	Cancel(ctx context.Context, rideID, riderID uuid.UUID) (bool, error)
}
