package errors

import "errors"

var (
	ErrNotFound  = errors.New("recurring rule not found")
	ErrInvalidID = errors.New("invalid recurring rule ID")
	ErrNotActive = errors.New("recurring rule is not active")
)
