package admin

import "context"

// Overview is the admin dashboard's platform snapshot.
type Overview struct {
	TotalRides         int            `json:"total_rides"`
	RidesByStatus      map[string]int `json:"rides_by_status"`
	TotalUsers         int            `json:"total_users"`
	UsersByRole        map[string]int `json:"users_by_role"`
	CompletedFareTotal float64        `json:"completed_fare_total"`
}

// StatsRepository provides the aggregate queries behind the dashboard.
type StatsRepository interface {
	Overview(ctx context.Context) (*Overview, error)
}
