package dashboard

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Stats summarizes the platform for the operations dashboard.
type Stats struct {
	GarageCount         int   `json:"garage_count"`
	ActiveReservations  int   `json:"active_reservations"`
	CompletedLast30Days int   `json:"completed_last_30_days"`
	CancelledLast30Days int   `json:"cancelled_last_30_days"`
	RevenueLast30Days   int64 `json:"revenue_last_30_days_pence"`
	RegisteredUsers     int   `json:"registered_users"`

	TopGarages []GarageStat `json:"top_garages"`
}

// GarageStat is one row of the busiest-garages report.
type GarageStat struct {
	GarageID     string `db:"garage_id" json:"garage_id"`
	Name         string `db:"name" json:"name"`
	Bookings     int    `db:"bookings" json:"bookings"`
	RevenuePence int64  `db:"revenue_pence" json:"revenue_pence"`
}

// Service aggregates reporting queries. Reads only; failures of individual
// counters degrade to zeroes rather than failing the whole report.
type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{TopGarages: []GarageStat{}}
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)

	_ = s.db.GetContext(ctx, &stats.GarageCount,
		`SELECT COUNT(*) FROM garages`)

	_ = s.db.GetContext(ctx, &stats.ActiveReservations,
		`SELECT COUNT(*) FROM reservations WHERE status = 'active'`)

	_ = s.db.GetContext(ctx, &stats.CompletedLast30Days,
		`SELECT COUNT(*) FROM reservations
		 WHERE status = 'completed' AND updated_at > $1`, thirtyDaysAgo)

	_ = s.db.GetContext(ctx, &stats.CancelledLast30Days,
		`SELECT COUNT(*) FROM reservations
		 WHERE status = 'cancelled' AND updated_at > $1`, thirtyDaysAgo)

	// revenue counts completed stays only; cancellations are refunded
	_ = s.db.GetContext(ctx, &stats.RevenueLast30Days,
		`SELECT COALESCE(SUM(price_pence), 0) FROM reservations
		 WHERE status = 'completed' AND updated_at > $1`, thirtyDaysAgo)

	_ = s.db.GetContext(ctx, &stats.RegisteredUsers,
		`SELECT COUNT(*) FROM users`)

	_ = s.db.SelectContext(ctx, &stats.TopGarages, `
		SELECT g.id AS garage_id, g.name,
		       COUNT(r.id) AS bookings,
		       COALESCE(SUM(r.price_pence), 0) AS revenue_pence
		FROM garages g
		JOIN reservations r ON r.garage_id = g.id
		WHERE r.status = 'completed' AND r.updated_at > $1
		GROUP BY g.id, g.name
		ORDER BY bookings DESC, g.id
		LIMIT 10
	`, thirtyDaysAgo)

	return stats, nil
}

// GetOccupancy reports, per garage, how many spaces are taken right now.
func (s *Service) GetOccupancy(ctx context.Context) ([]OccupancyStat, error) {
	occupancy := []OccupancyStat{}
	err := s.db.SelectContext(ctx, &occupancy, `
		SELECT g.id AS garage_id, g.name, g.total_spaces,
		       COUNT(r.id) AS occupied
		FROM garages g
		LEFT JOIN reservations r
		  ON r.garage_id = g.id
		 AND r.status = 'active'
		 AND r.starts_at <= now()
		 AND r.ends_at > now()
		GROUP BY g.id, g.name, g.total_spaces
		ORDER BY g.name
	`)
	return occupancy, err
}

type OccupancyStat struct {
	GarageID    string `db:"garage_id" json:"garage_id"`
	Name        string `db:"name" json:"name"`
	TotalSpaces int    `db:"total_spaces" json:"total_spaces"`
	Occupied    int    `db:"occupied" json:"occupied"`
}
