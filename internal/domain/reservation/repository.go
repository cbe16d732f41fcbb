package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, res *Reservation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reservations (id, user_id, garage_id, starts_at, ends_at, price_pence, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, res.ID, res.UserID, res.GarageID, res.StartsAt, res.EndsAt, res.PricePence, res.Status, res.CreatedAt, res.UpdatedAt)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var res Reservation
	err := r.db.GetContext(ctx, &res, `SELECT * FROM reservations WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CountActiveOverlapping counts active reservations whose half-open window
// intersects w: starts_at < w.End AND ends_at > w.Start.
func (r *Repository) CountActiveOverlapping(ctx context.Context, garageID uuid.UUID, w Window) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM reservations
		WHERE garage_id = $1
		  AND status = 'active'
		  AND starts_at < $3
		  AND ends_at > $2
	`, garageID, w.Start, w.End)
	return count, err
}

// UpdateStatusFrom transitions a reservation only when it still holds the
// expected status, so racing cancellations and completions cannot double
// apply. Returns false when the guard did not match.
func (r *Repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET status = $3, updated_at = now() WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.SelectContext(ctx, &reservations, `
		SELECT * FROM reservations
		WHERE user_id = $1
		ORDER BY starts_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return reservations, err
}

// CountCompletedByGarage returns how many completed stays the user has per
// garage. Feeds the history affinity ranking signal.
func (r *Repository) CountCompletedByGarage(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT garage_id, COUNT(*) AS visits
		FROM reservations
		WHERE user_id = $1 AND status = 'completed'
		GROUP BY garage_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var garageID uuid.UUID
		var visits int
		if err := rows.Scan(&garageID, &visits); err != nil {
			return nil, err
		}
		counts[garageID] = visits
	}
	return counts, rows.Err()
}

// CompleteFinished marks active reservations past their end time completed.
func (r *Repository) CompleteFinished(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET status = 'completed', updated_at = now()
		WHERE status = 'active' AND ends_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
