package garage

import "errors"

var (
	ErrNotFound = errors.New("garage not found")
)
