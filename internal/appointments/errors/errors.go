package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	// ErrDuplicate is raised by the unique index on active bookings.
	ErrDuplicate = errors.New("appointment interval already booked")

	ErrStaleStatus = errors.New("appointment status changed concurrently")
)
