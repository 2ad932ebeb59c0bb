package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "staffbook/pkg/errors"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("db", errors.New("x")), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad payload", nil), ErrorTypePermanent},
		{"explicit business", NewBusinessError("taken", nil), ErrorTypeBusiness},
		{"wrapped kafka error", fmt.Errorf("handler: %w", NewTransientError("db", nil)), ErrorTypeTransient},
		{"deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"app internal", apperrors.Internal("Failed to load", errors.New("x")), ErrorTypeTransient},
		{"app unavailable", apperrors.Unavailable("directory"), ErrorTypeTransient},
		{"app booking conflict", apperrors.BookingConflict("taken", nil), ErrorTypeBusiness},
		{"app not found", apperrors.NotFound("Waitlist entry"), ErrorTypeBusiness},
		{"app validation", apperrors.Validation("bad", nil), ErrorTypePermanent},
		{"network pattern", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("something odd"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("db", nil)

	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.True(t, ShouldRetry(transient, 2, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "transient", ErrorTypeTransient.String())
	assert.Equal(t, "permanent", ErrorTypePermanent.String())
	assert.Equal(t, "business", ErrorTypeBusiness.String())
	assert.Equal(t, "unknown", ErrorTypeUnknown.String())
}
