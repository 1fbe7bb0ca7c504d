package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/habalhub/habal-hub/internal/domain/location"
)

// SavedLocationRepository implements location.SavedRepository on PostgreSQL
type SavedLocationRepository struct {
	db *sql.DB
}

// NewSavedLocationRepository creates a new saved location repository
func NewSavedLocationRepository(db *sql.DB) *SavedLocationRepository {
	return &SavedLocationRepository{db: db}
}

func (r *SavedLocationRepository) Create(ctx context.Context, loc *location.SavedLocation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO saved_locations (id, user_id, name, address, latitude, longitude, is_home, is_work, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, loc.ID, loc.UserID, loc.Name, loc.Address, loc.Latitude, loc.Longitude, loc.IsHome, loc.IsWork)
	return err
}

func (r *SavedLocationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*location.SavedLocation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, address, latitude, longitude, is_home, is_work, created_at
		FROM saved_locations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*location.SavedLocation
	for rows.Next() {
		var loc location.SavedLocation
		if err := rows.Scan(&loc.ID, &loc.UserID, &loc.Name, &loc.Address,
			&loc.Latitude, &loc.Longitude, &loc.IsHome, &loc.IsWork, &loc.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, &loc)
	}
	return locations, rows.Err()
}

func (r *SavedLocationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM saved_locations WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return location.ErrSavedLocationNotFound
	}
	return nil
}
