package review

import "errors"

var (
	ErrAlreadyReviewed = errors.New("garage already reviewed by this user")
	ErrNoCompletedStay = errors.New("no completed stay at this garage")
)
