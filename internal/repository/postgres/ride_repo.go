package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/habalhub/habal-hub/internal/domain/location"
	"github.com/habalhub/habal-hub/internal/domain/ride"
	"github.com/habalhub/habal-hub/internal/domain/user"
)

// RideRepository implements ride.Repository on PostgreSQL. Status
// transitions are guarded by the WHERE clause: a lost race shows up as
// zero rows affected, never as a silent overwrite.
type RideRepository struct {
	db *sql.DB
}

// NewRideRepository creates a new ride repository
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db}
}

// Create inserts both location rows and the ride row in one transaction,
// so a failed booking leaves no orphan locations behind.
func (r *RideRepository) Create(ctx context.Context, rd *ride.Ride) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback()

	insertLocation := `
		INSERT INTO locations (id, address, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	if _, err := tx.ExecContext(ctx, insertLocation,
		rd.Pickup.ID, rd.Pickup.Address, rd.Pickup.Latitude, rd.Pickup.Longitude); err != nil {
		return fmt.Errorf("insert pickup location: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertLocation,
		rd.Dropoff.ID, rd.Dropoff.Address, rd.Dropoff.Latitude, rd.Dropoff.Longitude); err != nil {
		return fmt.Errorf("insert dropoff location: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rides (
			id, rider_id, driver_id, status,
			pickup_location_id, dropoff_location_id,
			fare, payment_method, scheduled_time,
			created_at, updated_at
		) VALUES ($1, $2, NULL, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`, rd.ID, rd.RiderID, string(rd.Status),
		rd.Pickup.ID, rd.Dropoff.ID,
		rd.Fare, string(rd.PaymentMethod), rd.ScheduledTime); err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}

	return tx.Commit()
}

const rideSelect = `
	SELECT r.id, r.rider_id, r.driver_id, r.status,
	       r.pickup_location_id, r.dropoff_location_id,
	       r.fare, r.payment_method, r.scheduled_time,
	       r.pickup_time, r.completed_time,
	       r.created_at, r.updated_at,
	       p.address, p.latitude, p.longitude, p.created_at,
	       d.address, d.latitude, d.longitude, d.created_at,
	       rev.rating, rev.comment
	FROM rides r
	JOIN locations p ON r.pickup_location_id = p.id
	JOIN locations d ON r.dropoff_location_id = d.id
	LEFT JOIN reviews rev ON rev.ride_id = r.id
`

func (r *RideRepository) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	row := r.db.QueryRowContext(ctx, rideSelect+" WHERE r.id = $1", id)
	rd, err := scanRide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ride.ErrRideNotFound
	}
	return rd, err
}

// List returns rides visible to the filter's user, newest first. Riders
// see their own rides; drivers see open requests plus rides assigned to
// them, mirroring the dashboard queries.
func (r *RideRepository) List(ctx context.Context, f ride.Filter) ([]*ride.Ride, error) {
	query := rideSelect
	args := []interface{}{}

	switch f.Role {
	case user.RoleDriver:
		args = append(args, f.UserID)
		query += " WHERE (r.driver_id = $1 OR r.driver_id IS NULL)"
	case user.RoleAdmin:
		query += " WHERE TRUE"
	default:
		args = append(args, f.UserID)
		query += " WHERE r.rider_id = $1"
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		query += fmt.Sprintf(" AND r.status = ANY($%d)", len(args))
	}

	query += " ORDER BY r.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*ride.Ride
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, rd)
	}
	return rides, rows.Err()
}

// Accept claims a pending, unassigned ride for a driver. The predicate
// is the whole concurrency guard: the second driver matches zero rows.
func (r *RideRepository) Accept(ctx context.Context, rideID, driverID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rides
		SET driver_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND driver_id IS NULL
	`, driverID, string(ride.StatusAccepted), rideID, string(ride.StatusPending))
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

func (r *RideRepository) Start(ctx context.Context, rideID, driverID uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rides
		SET status = $1, pickup_time = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND driver_id = $5
	`, string(ride.StatusInProgress), at, rideID, string(ride.StatusAccepted), driverID)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

func (r *RideRepository) Complete(ctx context.Context, rideID, driverID uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rides
		SET status = $1, completed_time = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND driver_id = $5
	`, string(ride.StatusCompleted), at, rideID, string(ride.StatusInProgress), driverID)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

func (r *RideRepository) Cancel(ctx context.Context, rideID, riderID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rides
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND rider_id = $3 AND status IN ($4, $5)
	`, string(ride.StatusCancelled), rideID, riderID,
		string(ride.StatusPending), string(ride.StatusAccepted))
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

func oneRow(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanRide(row rowScanner) (*ride.Ride, error) {
	var rd ride.Ride
	var pickup, dropoff location.Location
	var driverID uuid.NullUUID
	var pickupTime, completedTime sql.NullTime
	var rating sql.NullInt64
	var comment sql.NullString

	err := row.Scan(
		&rd.ID, &rd.RiderID, &driverID, &rd.Status,
		&rd.PickupLocationID, &rd.DropoffLocationID,
		&rd.Fare, &rd.PaymentMethod, &rd.ScheduledTime,
		&pickupTime, &completedTime,
		&rd.CreatedAt, &rd.UpdatedAt,
		&pickup.Address, &pickup.Latitude, &pickup.Longitude, &pickup.CreatedAt,
		&dropoff.Address, &dropoff.Latitude, &dropoff.Longitude, &dropoff.CreatedAt,
		&rating, &comment,
	)
	if err != nil {
		return nil, err
	}

	pickup.ID = rd.PickupLocationID
	dropoff.ID = rd.DropoffLocationID
	rd.Pickup = &pickup
	rd.Dropoff = &dropoff

	if driverID.Valid {
		id := driverID.UUID
		rd.DriverID = &id
	}
	if pickupTime.Valid {
		t := pickupTime.Time
		rd.PickupTime = &t
	}
	if completedTime.Valid {
		t := completedTime.Time
		rd.CompletedTime = &t
	}
	if rating.Valid {
		v := int(rating.Int64)
		rd.Rating = &v
	}
	if comment.Valid {
		rd.Review = &comment.String
	}
	return &rd, nil
}
