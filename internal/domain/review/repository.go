package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a review. reviews carries a unique (garage_id, user_id)
// constraint, so a second review surfaces as ErrAlreadyReviewed.
func (r *Repository) Create(ctx context.Context, rev *Review) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, garage_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, rev.ID, rev.GarageID, rev.UserID, rev.Rating, rev.Comment)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyReviewed
		}
		return err
	}
	return nil
}

func (r *Repository) ListByGarage(ctx context.Context, garageID uuid.UUID, limit, offset int) ([]Review, error) {
	reviews := []Review{}
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews
		WHERE garage_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, garageID, limit, offset)
	return reviews, err
}

// HasCompletedStay reports whether the user finished a reservation at the
// garage. Reviews are gated on real visits.
func (r *Repository) HasCompletedStay(ctx context.Context, userID, garageID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE user_id = $1 AND garage_id = $2 AND status = 'completed'
		)
	`, userID, garageID)
	return exists, err
}
