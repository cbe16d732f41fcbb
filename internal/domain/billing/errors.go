package billing

import "errors"

var (
	ErrDuplicateReference = errors.New("duplicate ledger reference")
)
