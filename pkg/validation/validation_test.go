package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/logger"
)

type payload struct {
	Date  string `json:"date" validate:"required,valid_date"`
	Start string `json:"start_time" validate:"required,valid_time"`
	Note  string `json:"note,omitempty" validate:"omitempty,max=5"`
}

func TestValidator_Struct(t *testing.T) {
	v := New(logger.Nop())

	tests := []struct {
		name   string
		in     payload
		fields []string
	}{
		{"valid", payload{Date: "2024-01-01", Start: "09:00"}, nil},
		{"missing date", payload{Start: "09:00"}, []string{"date"}},
		{"bad date", payload{Date: "2024-02-30", Start: "09:00"}, []string{"date"}},
		{"bad time", payload{Date: "2024-01-01", Start: "24:00"}, []string{"start_time"}},
		{"long note", payload{Date: "2024-01-01", Start: "09:00", Note: "too long"}, []string{"note"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&tt.in)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var fields FieldErrors
			require.True(t, errors.As(err, &fields))
			var got []string
			for _, f := range fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestAsAppError(t *testing.T) {
	assert.NoError(t, AsAppError("x", nil))

	err := AsAppError("Appointment validation failed", Field("end_time", "end_time must be after start_time"))
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Equal(t, "Appointment validation failed", appErr.Message)
	assert.Len(t, appErr.Details["errors"], 1)

	conflict := apperrors.Conflict("busy")
	assert.Same(t, conflict, AsAppError("x", conflict))
}
