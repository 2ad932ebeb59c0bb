package errors

import "errors"

var (
	ErrNotFound = errors.New("schedule record not found")

	ErrInvalidID = errors.New("invalid schedule record ID format")

	ErrDuplicate = errors.New("schedule record already exists")

	// ErrStaleStatus means the record changed status between read and write.
	ErrStaleStatus = errors.New("time-off status changed concurrently")
)
