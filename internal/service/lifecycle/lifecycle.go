package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/domain/review"
	"github.com/habalhub/habal-hub/internal/domain/ride"
	"github.com/habalhub/habal-hub/pkg/logger"
)

// Notifier receives ride lifecycle events for realtime delivery.
type Notifier interface {
	RideUpdated(r *ride.Ride, event string)
}

// NopNotifier discards events. Used in tests and tools.
type NopNotifier struct{}

func (NopNotifier) RideUpdated(*ride.Ride, string) {}

// Recorder mirrors lifecycle events into APM custom events.
type Recorder interface {
	RecordRideTransition(rideID, from, to string)
}

// Controller enforces which ride status transitions are valid and
// performs the writes that accompany each one. All guards are
// compare-and-set in the repository; the controller turns a lost race
// into a typed error instead of a silent overwrite.
type Controller struct {
	rides    ride.Repository
	reviews  review.Repository
	notifier Notifier
	recorder Recorder
	logger   *logger.Logger
	now      func() time.Time
}

// NewController creates a lifecycle controller
func NewController(rides ride.Repository, reviews review.Repository, notifier Notifier, log *logger.Logger) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		rides:    rides,
		reviews:  reviews,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

// WithRecorder attaches an APM recorder
func (c *Controller) WithRecorder(rec Recorder) *Controller {
	c.recorder = rec
	return c
}

// Accept assigns the calling driver to a pending ride. When two drivers
// race, exactly one compare-and-set succeeds; the loser gets
// ErrRideTaken.
func (c *Controller) Accept(ctx context.Context, rideID, driverID uuid.UUID) (*ride.Ride, error) {
	ok, err := c.rides.Accept(ctx, rideID, driverID)
	if err != nil {
		return nil, fmt.Errorf("accept ride: %w", err)
	}
	if !ok {
		return nil, c.acceptFailure(ctx, rideID)
	}

	c.logger.Info("Ride accepted",
		logger.String("ride_id", rideID.String()),
		logger.String("driver_id", driverID.String()),
	)
	return c.finish(ctx, rideID, ride.StatusPending, ride.StatusAccepted, "ride_accepted")
}

// Start moves the driver's accepted ride to in_progress and stamps the
// pickup time.
func (c *Controller) Start(ctx context.Context, rideID, driverID uuid.UUID) (*ride.Ride, error) {
	ok, err := c.rides.Start(ctx, rideID, driverID, c.now())
	if err != nil {
		return nil, fmt.Errorf("start ride: %w", err)
	}
	if !ok {
		return nil, c.transitionFailure(ctx, rideID, driverID)
	}

	c.logger.Info("Ride started", logger.String("ride_id", rideID.String()))
	return c.finish(ctx, rideID, ride.StatusAccepted, ride.StatusInProgress, "ride_started")
}

// Complete finishes the driver's in_progress ride and stamps the
// completion time.
func (c *Controller) Complete(ctx context.Context, rideID, driverID uuid.UUID) (*ride.Ride, error) {
	ok, err := c.rides.Complete(ctx, rideID, driverID, c.now())
	if err != nil {
		return nil, fmt.Errorf("complete ride: %w", err)
	}
	if !ok {
		return nil, c.transitionFailure(ctx, rideID, driverID)
	}

	c.logger.Info("Ride completed", logger.String("ride_id", rideID.String()))
	return c.finish(ctx, rideID, ride.StatusInProgress, ride.StatusCompleted, "ride_completed")
}

// Cancel lets the rider abandon a ride that has not started yet.
// There is no cancellation from in_progress.
func (c *Controller) Cancel(ctx context.Context, rideID, riderID uuid.UUID) (*ride.Ride, error) {
	before, err := c.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if before.RiderID != riderID {
		return nil, ride.ErrNotRideOwner
	}

	ok, err := c.rides.Cancel(ctx, rideID, riderID)
	if err != nil {
		return nil, fmt.Errorf("cancel ride: %w", err)
	}
	if !ok {
		return nil, ride.ErrInvalidStatus
	}

	c.logger.Info("Ride cancelled", logger.String("ride_id", rideID.String()))
	return c.finish(ctx, rideID, before.Status, ride.StatusCancelled, "ride_cancelled")
}

// Rate records the rider's rating for a completed ride. Re-submission
// replaces the existing review rather than duplicating it.
func (c *Controller) Rate(ctx context.Context, rideID, riderID uuid.UUID, rating int, comment *string) (*review.Review, error) {
	r, err := c.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.RiderID != riderID {
		return nil, ride.ErrNotRideOwner
	}
	if !r.CanRate() {
		return nil, ride.ErrInvalidStatus
	}

	rev := &review.Review{
		ID:         uuid.New(),
		RideID:     rideID,
		ReviewerID: riderID,
		RevieweeID: *r.DriverID,
		Rating:     rating,
		Comment:    comment,
	}
	if err := rev.IsValid(); err != nil {
		return nil, err
	}
	if err := c.reviews.Upsert(ctx, rev); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}

	c.logger.Info("Ride rated",
		logger.String("ride_id", rideID.String()),
		logger.Int("rating", rating),
	)
	return rev, nil
}

// acceptFailure distinguishes a lost acceptance race from plain
// invalid-state acceptance.
func (c *Controller) acceptFailure(ctx context.Context, rideID uuid.UUID) error {
	current, err := c.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if current.DriverID != nil {
		return ride.ErrRideTaken
	}
	return ride.ErrInvalidStatus
}

// transitionFailure distinguishes the wrong driver from a ride in the
// wrong state after a start or complete compare-and-set missed.
func (c *Controller) transitionFailure(ctx context.Context, rideID, driverID uuid.UUID) error {
	current, err := c.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if current.DriverID == nil || *current.DriverID != driverID {
		return ride.ErrNotRideDriver
	}
	return ride.ErrInvalidStatus
}

func (c *Controller) finish(ctx context.Context, rideID uuid.UUID, from, to ride.Status, event string) (*ride.Ride, error) {
	updated, err := c.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	c.notifier.RideUpdated(updated, event)
	if c.recorder != nil {
		c.recorder.RecordRideTransition(rideID.String(), string(from), string(to))
	}
	return updated, nil
}
