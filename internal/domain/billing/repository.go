package billing

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

// Append inserts a ledger entry. The reference column carries a unique
// constraint, so replays surface as ErrDuplicateReference.
func (r *Repository) Append(ctx context.Context, e *Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO billing_entries (id, user_id, reservation_id, amount_pence, type, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, e.ID, e.UserID, e.ReservationID, e.AmountPence, string(e.Type), e.Reference)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM billing_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return entries, err
}

// BalanceByUser sums the user's ledger: charges minus refunds to date.
func (r *Repository) BalanceByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount_pence), 0) FROM billing_entries WHERE user_id = $1
	`, userID)
	return total, err
}
