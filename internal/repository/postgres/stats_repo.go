package postgres

import (
	"context"
	"database/sql"

	"github.com/habalhub/habal-hub/internal/domain/admin"
)

// StatsRepository answers the admin dashboard's aggregate queries.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview gathers platform-wide counts in a single snapshot.
func (r *StatsRepository) Overview(ctx context.Context) (*admin.Overview, error) {
	ov := &admin.Overview{
		RidesByStatus: make(map[string]int),
		UsersByRole:   make(map[string]int),
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM rides GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		ov.RidesByStatus[status] = count
		ov.TotalRides += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT role, COUNT(*) FROM users GROUP BY role
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		ov.UsersByRole[role] = count
		ov.TotalUsers += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(fare), 0) FROM rides WHERE status = 'completed'
	`).Scan(&ov.CompletedFareTotal)
	if err != nil {
		return nil, err
	}

	return ov, nil
}
