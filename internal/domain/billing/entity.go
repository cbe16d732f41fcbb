package billing

import (
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	EntryTypeCharge EntryType = "charge"
	EntryTypeRefund EntryType = "refund"
)

// Entry is one row of the append-only payment ledger. Amounts are pence;
// charges are recorded positive, refunds negative.
type Entry struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	ReservationID uuid.UUID `db:"reservation_id" json:"reservation_id"`
	AmountPence   int64     `db:"amount_pence" json:"amount_pence"`
	Type          EntryType `db:"type" json:"type"`
	Reference     string    `db:"reference" json:"reference"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
