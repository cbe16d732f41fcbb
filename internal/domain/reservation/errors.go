package reservation

import "errors"

var (
	ErrInvalidWindow  = errors.New("invalid booking window")
	ErrGarageNotFound = errors.New("garage not found")
	ErrNoCapacity     = errors.New("no free spaces for the requested window")
	ErrBusy           = errors.New("garage admission is busy")
	ErrPersistence    = errors.New("reservation could not be stored")
	ErrNotFound       = errors.New("reservation not found")
	ErrForbidden      = errors.New("not allowed to act on this reservation")
	ErrNotCancellable = errors.New("reservation is not cancellable")
)
