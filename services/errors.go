package services

import "errors"

// Sentinel errors the controllers map onto HTTP statuses. Anything else
// coming out of the service layer is treated as an internal error.
var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadyVoted   = errors.New("already voted on this review")
	ErrAlreadyClaimed = errors.New("daily bonus already claimed today")
)
