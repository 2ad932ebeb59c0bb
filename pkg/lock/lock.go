// Package lock serializes writes to one staff member's day across processes.
package lock

import (
	"context"
	"fmt"
	"time"

	apperrors "staffbook/pkg/errors"
)

const busyMessage = "This time slot is currently being booked by another request. Please try again."

// Lease is a held lock. Owner is a random token so only the holder can release it.
type Lease struct {
	Key       string
	Owner     string
	ExpiresAt time.Time
}

type Locker interface {
	// Acquire returns a CONFLICT AppError when the key is held by someone else.
	Acquire(ctx context.Context, key string) (*Lease, error)
	Release(ctx context.Context, lease *Lease) error
}

// SlotKey is the lock key for a staff member's date. Staff-less writes lock
// on the client instead.
func SlotKey(staffID, clientID, date string) string {
	if staffID == "" {
		return fmt.Sprintf("slot_lock_client_%s_%s", clientID, date)
	}
	return fmt.Sprintf("slot_lock_%s_%s", staffID, date)
}

// Do runs fn while holding key. Release errors are ignored because the
// lease expires on its own.
func Do(ctx context.Context, l Locker, key string, fn func(ctx context.Context) error) error {
	lease, err := l.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		_ = l.Release(context.WithoutCancel(ctx), lease)
	}()
	return fn(ctx)
}

func errBusy() error {
	return apperrors.Conflict(busyMessage)
}
