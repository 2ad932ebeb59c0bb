package errors

import "errors"

var (
	ErrNotFound  = errors.New("waitlist entry not found")
	ErrInvalidID = errors.New("invalid waitlist entry ID")

	// ErrStaleStatus means the entry left the expected status before the update.
	ErrStaleStatus = errors.New("waitlist entry status changed concurrently")
)
