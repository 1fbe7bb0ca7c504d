package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habalhub/habal-hub/internal/domain/ride"
	"github.com/habalhub/habal-hub/internal/service/fare"
	"github.com/habalhub/habal-hub/internal/service/geo"
	"github.com/habalhub/habal-hub/pkg/logger"
)

type capturingRideRepo struct {
	mu      sync.Mutex
	created []*ride.Ride
}

func (f *capturingRideRepo) Create(ctx context.Context, r *ride.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, r)
	return nil
}

func (f *capturingRideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	return nil, ride.ErrRideNotFound
}

func (f *capturingRideRepo) List(ctx context.Context, filter ride.Filter) ([]*ride.Ride, error) {
	return nil, nil
}

func (f *capturingRideRepo) Accept(ctx context.Context, rideID, driverID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *capturingRideRepo) Start(ctx context.Context, rideID, driverID uuid.UUID, at time.Time) (bool, error) {
	return false, nil
}

func (f *capturingRideRepo) Complete(ctx context.Context, rideID, driverID uuid.UUID, at time.Time) (bool, error) {
	return false, nil
}

func (f *capturingRideRepo) Cancel(ctx context.Context, rideID, riderID uuid.UUID) (bool, error) {
	return false, nil
}

// fixedGeocoder resolves every address to the same point.
type fixedGeocoder struct {
	lat, lng float64
}

func (g fixedGeocoder) Geocode(ctx context.Context, address string) (*geo.Point, error) {
	return &geo.Point{Latitude: g.lat, Longitude: g.lng, Address: address}, nil
}

func (g fixedGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*geo.Point, error) {
	return &geo.Point{Latitude: lat, Longitude: lng, Address: "resolved"}, nil
}

func testFares() *fare.Calculator {
	return fare.NewCalculator(fare.Config{Base: 50, PerKM: 15, Minimum: 50})
}

func newTestService(repo *capturingRideRepo, geocoder geo.Geocoder) *Service {
	return NewService(repo, geocoder, testFares(), nil, logger.Nop())
}

func mapRequest(riderID uuid.UUID) Request {
	return Request{
		RiderID: riderID,
		Mode:    ModeMap,
		Pickup: Endpoint{
			Address:  "SM City Cebu",
			Latitude: 10.3119, Longitude: 123.9178,
		},
		Dropoff: Endpoint{
			Address:  "Cebu IT Park",
			Latitude: 10.3302, Longitude: 123.9062,
		},
		PaymentMethod: ride.PaymentCash,
	}
}

func TestBook_MapMode(t *testing.T) {
	repo := &capturingRideRepo{}
	svc := newTestService(repo, geo.Disabled{})
	riderID := uuid.New()

	r, err := svc.Book(context.Background(), mapRequest(riderID))
	require.NoError(t, err)

	assert.Equal(t, ride.StatusPending, r.Status)
	assert.Nil(t, r.DriverID)
	assert.Equal(t, riderID, r.RiderID)
	assert.Greater(t, r.Fare, 0.0)
	assert.False(t, r.ScheduledTime.IsZero())
	require.Len(t, repo.created, 1)
}

func TestBook_InvalidPaymentRejected(t *testing.T) {
	repo := &capturingRideRepo{}
	svc := newTestService(repo, geo.Disabled{})

	req := mapRequest(uuid.New())
	req.PaymentMethod = "card"

	_, err := svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ride.ErrInvalidPayment)
	assert.Empty(t, repo.created)
}

// TestBook_ModeValidation tests that each mode validates only its own
// fields and ignores the other mode's.
func TestBook_ModeValidation(t *testing.T) {
	t.Run("manual mode requires both addresses", func(t *testing.T) {
		repo := &capturingRideRepo{}
		svc := newTestService(repo, fixedGeocoder{10.3, 123.9})

		req := Request{
			RiderID:       uuid.New(),
			Mode:          ModeManual,
			Pickup:        Endpoint{Address: "Ayala Center"},
			PaymentMethod: ride.PaymentGCash,
		}
		_, err := svc.Book(context.Background(), req)
		assert.ErrorIs(t, err, ride.ErrMissingEndpoints)
	})

	t.Run("map mode requires picked coordinates", func(t *testing.T) {
		repo := &capturingRideRepo{}
		svc := newTestService(repo, fixedGeocoder{10.3, 123.9})

		// Addresses alone, as a manual submission would carry, are not
		// enough in map mode.
		req := Request{
			RiderID:       uuid.New(),
			Mode:          ModeMap,
			Pickup:        Endpoint{Address: "Ayala Center"},
			Dropoff:       Endpoint{Address: "Fuente Circle"},
			PaymentMethod: ride.PaymentCash,
		}
		_, err := svc.Book(context.Background(), req)
		assert.ErrorIs(t, err, ride.ErrMissingEndpoints)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		repo := &capturingRideRepo{}
		svc := newTestService(repo, geo.Disabled{})

		req := mapRequest(uuid.New())
		req.Mode = "wizard"
		_, err := svc.Book(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestBook_ManualModeGeocodes(t *testing.T) {
	repo := &capturingRideRepo{}
	svc := newTestService(repo, fixedGeocoder{10.3157, 123.8854})

	req := Request{
		RiderID:       uuid.New(),
		Mode:          ModeManual,
		Pickup:        Endpoint{Address: "Ayala Center"},
		Dropoff:       Endpoint{Address: "Fuente Circle"},
		PaymentMethod: ride.PaymentPayMaya,
	}

	r, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 10.3157, r.Pickup.Latitude)
	assert.Equal(t, "Ayala Center", r.Pickup.Address)
}

// TestBook_GeocoderFailureDegrades tests that a dead geocoder does not
// block manual bookings; the address survives with zero coordinates
// and the fare falls back to the minimum.
func TestBook_GeocoderFailureDegrades(t *testing.T) {
	repo := &capturingRideRepo{}
	svc := newTestService(repo, geo.Disabled{})

	req := Request{
		RiderID:       uuid.New(),
		Mode:          ModeManual,
		Pickup:        Endpoint{Address: "Ayala Center"},
		Dropoff:       Endpoint{Address: "Fuente Circle"},
		PaymentMethod: ride.PaymentCash,
	}

	r, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Ayala Center", r.Pickup.Address)
	assert.Zero(t, r.Pickup.Latitude)
	assert.Zero(t, r.Pickup.Longitude)
	assert.Equal(t, 50.0, r.Fare)
}

func TestBook_ScheduledTimeDefaultsToNow(t *testing.T) {
	repo := &capturingRideRepo{}
	svc := newTestService(repo, geo.Disabled{})
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	r, err := svc.Book(context.Background(), mapRequest(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, fixed, r.ScheduledTime)

	later := fixed.Add(2 * time.Hour)
	req := mapRequest(uuid.New())
	req.ScheduledTime = later
	r, err = svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, later, r.ScheduledTime)
}
