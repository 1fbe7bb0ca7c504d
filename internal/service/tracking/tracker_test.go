package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habalhub/habal-hub/pkg/logger"
)

func newTestTracker() *Tracker {
	return NewTracker(nil, nil, logger.Nop())
}

func receivePosition(t *testing.T, ch <-chan Position) Position {
	t.Helper()
	select {
	case pos, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return pos
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for position")
		return Position{}
	}
}

func TestWatch_DeliversUpdates(t *testing.T) {
	tracker := newTestTracker()
	driverID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := tracker.Watch(ctx, driverID)

	require.NoError(t, tracker.UpdateLocation(context.Background(), driverID, 10.3157, 123.8854))

	pos := receivePosition(t, stream)
	assert.Equal(t, driverID, pos.DriverID)
	assert.Equal(t, 10.3157, pos.Latitude)
	assert.Equal(t, 123.8854, pos.Longitude)
	assert.False(t, pos.At.IsZero())
}

func TestWatch_OnlyWatchedDriver(t *testing.T) {
	tracker := newTestTracker()
	watched, other := uuid.New(), uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := tracker.Watch(ctx, watched)

	require.NoError(t, tracker.UpdateLocation(context.Background(), other, 1, 1))
	require.NoError(t, tracker.UpdateLocation(context.Background(), watched, 2, 2))

	pos := receivePosition(t, stream)
	assert.Equal(t, watched, pos.DriverID)
}

// TestWatch_LatestWins tests that a slow watcher sees the newest
// position, not a backlog.
func TestWatch_LatestWins(t *testing.T) {
	tracker := newTestTracker()
	driverID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := tracker.Watch(ctx, driverID)

	// Burst of updates with nobody reading. The subscriber buffer holds
	// one sample and each newer sample replaces it, so at most one
	// in-flight sample plus the latest can ever be delivered.
	for i := 1; i <= 5; i++ {
		require.NoError(t, tracker.UpdateLocation(context.Background(), driverID, float64(i), float64(i)))
	}

	var received []Position
	for {
		select {
		case pos := <-stream:
			received = append(received, pos)
			continue
		case <-time.After(200 * time.Millisecond):
		}
		break
	}

	require.NotEmpty(t, received)
	assert.LessOrEqual(t, len(received), 2, "backlog should be dropped, not queued")
	assert.Equal(t, 5.0, received[len(received)-1].Latitude)
}

func TestWatch_CancelClosesStream(t *testing.T) {
	tracker := newTestTracker()
	driverID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	stream := tracker.Watch(ctx, driverID)
	cancel()

	select {
	case _, ok := <-stream:
		assert.False(t, ok, "stream should close on cancellation")
	case <-time.After(time.Second):
		t.Fatal("stream did not close after cancel")
	}

	// Updates after teardown must not block or panic.
	require.NoError(t, tracker.UpdateLocation(context.Background(), driverID, 9, 9))
}

func TestNearbyDrivers_NoRedisDegrades(t *testing.T) {
	tracker := newTestTracker()

	drivers, err := tracker.NearbyDrivers(context.Background(), 10.3, 123.9, 5, 20)
	require.NoError(t, err)
	assert.Empty(t, drivers)
}
