package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "resource not found"},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("server selection timeout"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: server selection timeout)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Appointment"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Appointment", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("locked"), CodeConflict, http.StatusConflict},
		{"availability", AvailabilityConflict("closed", "time_off", nil), CodeAvailabilityConflict, http.StatusConflict},
		{"booking", BookingConflict("overlap", []string{"a"}), CodeBookingConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("mongo"), CodeUnavailable, http.StatusServiceUnavailable},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode())
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Recurring rule", "64b7f0c2e4b0a1a2b3c4d5e6")
	assert.Equal(t, "Recurring rule not found", err.Message)
	assert.Equal(t, "Recurring rule", err.Details["resource"])
	assert.Equal(t, "64b7f0c2e4b0a1a2b3c4d5e6", err.Details["id"])
}

func TestAvailabilityConflict_MergesDetails(t *testing.T) {
	err := AvailabilityConflict("Staff is on break", "break_time", map[string]any{
		"interval": "12:00-13:00",
	})

	assert.Equal(t, "break_time", err.Details["reason"])
	assert.Equal(t, "12:00-13:00", err.Details["interval"])
	assert.True(t, err.IsConflict())
}

func TestBookingConflict_CarriesFullSet(t *testing.T) {
	conflicts := []string{"a1", "a2", "a3"}
	err := BookingConflict("Overlapping appointments", conflicts)

	assert.Equal(t, conflicts, err.Details["conflicts"])
	assert.True(t, err.IsConflict())
	assert.False(t, Internal("x", nil).IsConflict())
}

func TestAsAppError_Unwraps(t *testing.T) {
	inner := NotFound("Waitlist entry")
	wrapped := fmt.Errorf("convert: %w", inner)

	assert.True(t, IsAppError(wrapped))
	assert.Same(t, inner, AsAppError(wrapped))
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeConflict))

	plain := errors.New("connection refused")
	assert.False(t, IsAppError(plain))
	converted := AsAppError(plain)
	assert.Equal(t, CodeInternal, converted.Code)
	assert.ErrorIs(t, converted, plain)
}

func TestAppError_ToJSON(t *testing.T) {
	err := Validation("Appointment validation failed", map[string]any{"field": "start_time"})

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal(err.ToJSON(), &decoded))
	assert.Equal(t, CodeValidation, decoded.Code)
	assert.Equal(t, "Appointment validation failed", decoded.Message)
	assert.Equal(t, "start_time", decoded.Details["field"])
}

func TestAppError_UnwrapAndWrap(t *testing.T) {
	cause := errors.New("write conflict")
	err := Wrap(cause, CodeInternal, "Failed to create appointment", http.StatusInternalServerError)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Nil(t, New(CodeConflict, "x", http.StatusConflict).Unwrap())
}
