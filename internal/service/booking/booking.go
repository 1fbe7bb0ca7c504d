package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/domain/location"
	"github.com/habalhub/habal-hub/internal/domain/ride"
	"github.com/habalhub/habal-hub/internal/service/fare"
	"github.com/habalhub/habal-hub/internal/service/geo"
	"github.com/habalhub/habal-hub/internal/service/lifecycle"
	"github.com/habalhub/habal-hub/pkg/logger"
)

// Mode selects how the rider supplied the endpoints.
type Mode string

const (
	ModeManual Mode = "manual" // free-text addresses, geocoded server-side
	ModeMap    Mode = "map"    // map-picked coordinates with resolved addresses
)

// Endpoint is one side of the trip as submitted by the rider.
type Endpoint struct {
	Address   string
	Latitude  float64
	Longitude float64
}

// Request is a booking submission. Only the fields of the active mode
// are consulted; endpoints from the other mode never leak in.
type Request struct {
	RiderID       uuid.UUID
	Mode          Mode
	Pickup        Endpoint
	Dropoff       Endpoint
	PaymentMethod ride.PaymentMethod
	ScheduledTime time.Time
}

// Service creates rides. The two location rows and the ride row are
// written in one transaction by the repository, so a failed booking
// leaves nothing behind.
type Service struct {
	rides    ride.Repository
	geocoder geo.Geocoder
	fares    *fare.Calculator
	notifier lifecycle.Notifier
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a booking service
func NewService(rides ride.Repository, geocoder geo.Geocoder, fares *fare.Calculator, notifier lifecycle.Notifier, log *logger.Logger) *Service {
	if notifier == nil {
		notifier = lifecycle.NopNotifier{}
	}
	return &Service{
		rides:    rides,
		geocoder: geocoder,
		fares:    fares,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

// Book validates the request, resolves coordinates for manual
// addresses, computes the fare, and persists the ride atomically.
func (s *Service) Book(ctx context.Context, req Request) (*ride.Ride, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, ride.ErrInvalidPayment
	}

	pickup, dropoff, err := s.resolveEndpoints(ctx, req)
	if err != nil {
		return nil, err
	}

	amount := s.fares.Estimate(pickup.Latitude, pickup.Longitude, dropoff.Latitude, dropoff.Longitude)

	scheduled := req.ScheduledTime
	if scheduled.IsZero() {
		scheduled = s.now()
	}

	r := &ride.Ride{
		ID:                uuid.New(),
		RiderID:           req.RiderID,
		Status:            ride.StatusPending,
		PickupLocationID:  pickup.ID,
		DropoffLocationID: dropoff.ID,
		Pickup:            pickup,
		Dropoff:           dropoff,
		Fare:              amount,
		PaymentMethod:     req.PaymentMethod,
		ScheduledTime:     scheduled,
	}

	if err := s.rides.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}

	s.logger.Info("Ride booked",
		logger.String("ride_id", r.ID.String()),
		logger.String("rider_id", req.RiderID.String()),
		logger.Float64("fare", amount),
	)
	s.notifier.RideUpdated(r, "ride_requested")
	return r, nil
}

// resolveEndpoints turns the active mode's input into location rows.
// Manual addresses go through the geocoder; when that fails the address
// is kept with zero coordinates rather than failing the booking.
func (s *Service) resolveEndpoints(ctx context.Context, req Request) (*location.Location, *location.Location, error) {
	switch req.Mode {
	case ModeManual:
		if req.Pickup.Address == "" || req.Dropoff.Address == "" {
			return nil, nil, ride.ErrMissingEndpoints
		}
		return s.geocodeManual(ctx, req.Pickup.Address), s.geocodeManual(ctx, req.Dropoff.Address), nil

	case ModeMap:
		if !mapEndpointSet(req.Pickup) || !mapEndpointSet(req.Dropoff) {
			return nil, nil, ride.ErrMissingEndpoints
		}
		return newLocation(req.Pickup.Address, req.Pickup.Latitude, req.Pickup.Longitude),
			newLocation(req.Dropoff.Address, req.Dropoff.Latitude, req.Dropoff.Longitude), nil

	default:
		return nil, nil, fmt.Errorf("unknown booking mode %q", req.Mode)
	}
}

func (s *Service) geocodeManual(ctx context.Context, address string) *location.Location {
	point, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.Warn("Geocoding unavailable, storing manual address",
			logger.String("address", address),
			logger.Err(err),
		)
		return newLocation(address, 0, 0)
	}
	return newLocation(point.Address, point.Latitude, point.Longitude)
}

func mapEndpointSet(e Endpoint) bool {
	return e.Address != "" && (e.Latitude != 0 || e.Longitude != 0)
}

func newLocation(address string, lat, lng float64) *location.Location {
	return &location.Location{
		ID:        uuid.New(),
		Address:   address,
		Latitude:  lat,
		Longitude: lng,
	}
}
