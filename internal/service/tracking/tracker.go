package tracking

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/habalhub/habal-hub/pkg/logger"
)

const geoKey = "drivers:locations"

// Position is one driver location sample.
type Position struct {
	DriverID  uuid.UUID `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	At        time.Time `json:"at"`
}

// Tracker ingests driver position updates and fans them out to
// watchers. Delivery is latest-wins: a watcher holds at most one
// undelivered position, and a newer sample replaces it. Streams are
// scoped to a context; cancelling it is the only teardown needed.
type Tracker struct {
	redis  *redis.Client
	db     *sql.DB
	logger *logger.Logger

	mu       sync.Mutex
	watchers map[uuid.UUID]map[int]chan Position
	nextID   int
}

// NewTracker creates a tracker
func NewTracker(redisClient *redis.Client, db *sql.DB, log *logger.Logger) *Tracker {
	return &Tracker{
		redis:    redisClient,
		db:       db,
		logger:   log,
		watchers: make(map[uuid.UUID]map[int]chan Position),
	}
}

// UpdateLocation records a driver position. The Redis geo index is the
// hot path; the Postgres write is best-effort and a failure there does
// not fail the update.
func (t *Tracker) UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng float64) error {
	if t.redis != nil {
		if err := t.redis.GeoAdd(ctx, geoKey, &redis.GeoLocation{
			Name:      driverID.String(),
			Latitude:  lat,
			Longitude: lng,
		}).Err(); err != nil {
			return err
		}
	}

	if t.db != nil {
		if _, err := t.db.ExecContext(ctx, `
			UPDATE users
			SET current_latitude = $1, current_longitude = $2, updated_at = NOW()
			WHERE id = $3 AND role = 'driver'
		`, lat, lng, driverID); err != nil {
			t.logger.Warn("Failed to persist driver location",
				logger.String("driver_id", driverID.String()),
				logger.Err(err),
			)
		}
	}

	t.publish(Position{DriverID: driverID, Latitude: lat, Longitude: lng, At: time.Now()})
	return nil
}

// Watch streams a driver's positions until ctx is cancelled. The
// returned channel is closed on cancellation.
func (t *Tracker) Watch(ctx context.Context, driverID uuid.UUID) <-chan Position {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	inner := make(chan Position, 1)
	if t.watchers[driverID] == nil {
		t.watchers[driverID] = make(map[int]chan Position)
	}
	t.watchers[driverID][id] = inner
	t.mu.Unlock()

	out := make(chan Position)
	go func() {
		defer func() {
			t.mu.Lock()
			if subs, ok := t.watchers[driverID]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(t.watchers, driverID)
				}
			}
			t.mu.Unlock()
			close(out)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case pos := <-inner:
				select {
				case out <- pos:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// NearbyDrivers returns driver IDs within radiusKM of a point, closest
// first, capped at limit.
func (t *Tracker) NearbyDrivers(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]Position, error) {
	if t.redis == nil {
		return nil, nil
	}
	locs, err := t.redis.GeoSearchLocation(ctx, geoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lng,
			Latitude:   lat,
			Radius:     radiusKM,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, err
	}

	positions := make([]Position, 0, len(locs))
	for _, loc := range locs {
		driverID, err := uuid.Parse(loc.Name)
		if err != nil {
			continue
		}
		positions = append(positions, Position{
			DriverID:  driverID,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}
	return positions, nil
}

// publish hands a sample to every watcher of the driver, replacing any
// sample a slow watcher has not consumed yet.
func (t *Tracker) publish(pos Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.watchers[pos.DriverID] {
		select {
		case ch <- pos:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- pos:
			default:
			}
		}
	}
}
