package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habalhub/habal-hub/internal/domain/review"
	"github.com/habalhub/habal-hub/internal/domain/ride"
	"github.com/habalhub/habal-hub/pkg/logger"
)

// fakeRideRepo is an in-memory ride store with the same
// compare-and-set semantics as the Postgres repository.
type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[uuid.UUID]*ride.Ride
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[uuid.UUID]*ride.Ride)}
}

func (f *fakeRideRepo) put(r *ride.Ride) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rides[r.ID] = r
}

func (f *fakeRideRepo) Create(ctx context.Context, r *ride.Ride) error {
	f.put(r)
	return nil
}

func (f *fakeRideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[id]
	if !ok {
		return nil, ride.ErrRideNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRideRepo) List(ctx context.Context, filter ride.Filter) ([]*ride.Ride, error) {
	return nil, nil
}

func (f *fakeRideRepo) Accept(ctx context.Context, rideID, driverID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[rideID]
	if !ok || r.Status != ride.StatusPending || r.DriverID != nil {
		return false, nil
	}
	r.Status = ride.StatusAccepted
	r.DriverID = &driverID
	return true, nil
}

func (f *fakeRideRepo) Start(ctx context.Context, rideID, driverID uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[rideID]
	if !ok || r.Status != ride.StatusAccepted || r.DriverID == nil || *r.DriverID != driverID {
		return false, nil
	}
	r.Status = ride.StatusInProgress
	r.PickupTime = &at
	return true, nil
}

func (f *fakeRideRepo) Complete(ctx context.Context, rideID, driverID uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[rideID]
	if !ok || r.Status != ride.StatusInProgress || r.DriverID == nil || *r.DriverID != driverID {
		return false, nil
	}
	r.Status = ride.StatusCompleted
	r.CompletedTime = &at
	return true, nil
}

func (f *fakeRideRepo) Cancel(ctx context.Context, rideID, riderID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[rideID]
	if !ok || r.RiderID != riderID {
		return false, nil
	}
	if r.Status != ride.StatusPending && r.Status != ride.StatusAccepted {
		return false, nil
	}
	r.Status = ride.StatusCancelled
	return true, nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	byRide  map[uuid.UUID]*review.Review
	upserts int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{byRide: make(map[uuid.UUID]*review.Review)}
}

// Upsert mirrors the SQL ON CONFLICT upsert: the stored row keeps its
// original id and created_at, and both are read back into rev.
func (f *fakeReviewRepo) Upsert(ctx context.Context, rev *review.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if existing, ok := f.byRide[rev.RideID]; ok {
		rev.ID = existing.ID
		rev.CreatedAt = existing.CreatedAt
	} else if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}
	f.byRide[rev.RideID] = rev
	return nil
}

func (f *fakeReviewRepo) GetByRideID(ctx context.Context, rideID uuid.UUID) (*review.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rev, ok := f.byRide[rideID]
	if !ok {
		return nil, review.ErrReviewNotFound
	}
	return rev, nil
}

func (f *fakeReviewRepo) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*review.Review, error) {
	return nil, nil
}

// recordingNotifier captures emitted events in order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) RideUpdated(r *ride.Ride, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func newTestController(rides *fakeRideRepo, reviews *fakeReviewRepo) (*Controller, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewController(rides, reviews, notifier, logger.Nop()), notifier
}

func pendingRide(riderID uuid.UUID) *ride.Ride {
	return &ride.Ride{
		ID:      uuid.New(),
		RiderID: riderID,
		Status:  ride.StatusPending,
	}
}

func TestAccept_AssignsDriver(t *testing.T) {
	rides := newFakeRideRepo()
	ctrl, notifier := newTestController(rides, newFakeReviewRepo())

	riderID, driverID := uuid.New(), uuid.New()
	r := pendingRide(riderID)
	rides.put(r)

	updated, err := ctrl.Accept(context.Background(), r.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusAccepted, updated.Status)
	require.NotNil(t, updated.DriverID)
	assert.Equal(t, driverID, *updated.DriverID)
	assert.Equal(t, []string{"ride_accepted"}, notifier.events)
}

// TestAccept_SecondDriverLoses tests that when two drivers go for the
// same ride, the second one is told the ride is taken and the
// assignment is untouched.
func TestAccept_SecondDriverLoses(t *testing.T) {
	rides := newFakeRideRepo()
	ctrl, _ := newTestController(rides, newFakeReviewRepo())

	r := pendingRide(uuid.New())
	rides.put(r)

	first, second := uuid.New(), uuid.New()
	_, err := ctrl.Accept(context.Background(), r.ID, first)
	require.NoError(t, err)

	_, err = ctrl.Accept(context.Background(), r.ID, second)
	assert.ErrorIs(t, err, ride.ErrRideTaken)

	current, err := rides.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *current.DriverID)
}

func TestStartAndComplete_StampTimes(t *testing.T) {
	rides := newFakeRideRepo()
	ctrl, notifier := newTestController(rides, newFakeReviewRepo())

	r := pendingRide(uuid.New())
	rides.put(r)
	driverID := uuid.New()

	_, err := ctrl.Accept(context.Background(), r.ID, driverID)
	require.NoError(t, err)

	started, err := ctrl.Start(context.Background(), r.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusInProgress, started.Status)
	assert.NotNil(t, started.PickupTime)

	completed, err := ctrl.Complete(context.Background(), r.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedTime)

	assert.Equal(t, []string{"ride_accepted", "ride_started", "ride_completed"}, notifier.events)
}

func TestStart_WrongDriverRejected(t *testing.T) {
	rides := newFakeRideRepo()
	ctrl, _ := newTestController(rides, newFakeReviewRepo())

	r := pendingRide(uuid.New())
	rides.put(r)
	driverID := uuid.New()

	_, err := ctrl.Accept(context.Background(), r.ID, driverID)
	require.NoError(t, err)

	_, err = ctrl.Start(context.Background(), r.ID, uuid.New())
	assert.ErrorIs(t, err, ride.ErrNotRideDriver)
}

// TestComplete_BeforeStartRejected tests that the assigned driver still
// cannot complete a ride that was never started.
func TestComplete_BeforeStartRejected(t *testing.T) {
	rides := newFakeRideRepo()
	ctrl, _ := newTestController(rides, newFakeReviewRepo())

	r := pendingRide(uuid.New())
	rides.put(r)
	driverID := uuid.New()

	_, err := ctrl.Accept(context.Background(), r.ID, driverID)
	require.NoError(t, err)

	_, err = ctrl.Complete(context.Background(), r.ID, driverID)
	assert.ErrorIs(t, err, ride.ErrInvalidStatus)
}

func TestCancel_Windows(t *testing.T) {
	riderID := uuid.New()

	t.Run("pending ride cancels", func(t *testing.T) {
		rides := newFakeRideRepo()
		ctrl, _ := newTestController(rides, newFakeReviewRepo())
		r := pendingRide(riderID)
		rides.put(r)

		cancelled, err := ctrl.Cancel(context.Background(), r.ID, riderID)
		require.NoError(t, err)
		assert.Equal(t, ride.StatusCancelled, cancelled.Status)
	})

	t.Run("completed ride does not cancel", func(t *testing.T) {
		rides := newFakeRideRepo()
		ctrl, _ := newTestController(rides, newFakeReviewRepo())
		driverID := uuid.New()
		r := pendingRide(riderID)
		r.Status = ride.StatusCompleted
		r.DriverID = &driverID
		rides.put(r)

		_, err := ctrl.Cancel(context.Background(), r.ID, riderID)
		assert.ErrorIs(t, err, ride.ErrInvalidStatus)
	})

	t.Run("someone else's ride does not cancel", func(t *testing.T) {
		rides := newFakeRideRepo()
		ctrl, _ := newTestController(rides, newFakeReviewRepo())
		r := pendingRide(riderID)
		rides.put(r)

		_, err := ctrl.Cancel(context.Background(), r.ID, uuid.New())
		assert.ErrorIs(t, err, ride.ErrNotRideOwner)
	})
}

func TestRate_RulesAndIdempotency(t *testing.T) {
	rides := newFakeRideRepo()
	reviews := newFakeReviewRepo()
	ctrl, _ := newTestController(rides, reviews)

	riderID, driverID := uuid.New(), uuid.New()
	r := pendingRide(riderID)
	r.Status = ride.StatusCompleted
	r.DriverID = &driverID
	rides.put(r)

	t.Run("rating outside range rejected", func(t *testing.T) {
		_, err := ctrl.Rate(context.Background(), r.ID, riderID, 6, nil)
		assert.ErrorIs(t, err, review.ErrInvalidRating)
	})

	t.Run("only the rider may rate", func(t *testing.T) {
		_, err := ctrl.Rate(context.Background(), r.ID, uuid.New(), 5, nil)
		assert.ErrorIs(t, err, ride.ErrNotRideOwner)
	})

	t.Run("re-rating replaces the review", func(t *testing.T) {
		first, err := ctrl.Rate(context.Background(), r.ID, riderID, 4, nil)
		require.NoError(t, err)
		assert.Equal(t, driverID, first.RevieweeID)

		comment := "much better second time"
		second, err := ctrl.Rate(context.Background(), r.ID, riderID, 5, &comment)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		stored, err := reviews.GetByRideID(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, stored.Rating)
		// The response must carry the id of the row that actually
		// exists, not a freshly minted one.
		assert.Equal(t, stored.ID, second.ID)
	})

	t.Run("uncompleted ride cannot be rated", func(t *testing.T) {
		open := pendingRide(riderID)
		rides.put(open)
		_, err := ctrl.Rate(context.Background(), open.ID, riderID, 5, nil)
		assert.ErrorIs(t, err, ride.ErrInvalidStatus)
	})
}
