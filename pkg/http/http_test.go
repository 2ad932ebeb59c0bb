package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "staffbook/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteError_AppErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperrors.NotFoundWithID("Appointment", "a1"), http.StatusNotFound, apperrors.CodeNotFound},
		{"validation", apperrors.Validation("bad", nil), http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"invalid input", apperrors.InvalidInput("bad"), http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"booking conflict", apperrors.BookingConflict("taken", []string{"a1"}), http.StatusConflict, apperrors.CodeBookingConflict},
		{"availability conflict", apperrors.AvailabilityConflict("closed", "time_off", nil), http.StatusConflict, apperrors.CodeAvailabilityConflict},
		{"rate limited", apperrors.RateLimited("slow down"), http.StatusTooManyRequests, apperrors.CodeRateLimited},
		{"internal", apperrors.Internal("db", errors.New("secret")), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decode(t, rec).Code)
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

func TestWriteError_ConflictDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, apperrors.AvailabilityConflict("approved time-off", "time_off", nil)))

	resp := decode(t, rec)
	assert.Equal(t, "approved time-off", resp.Error)
	assert.Equal(t, "time_off", resp.Details["reason"])
}

func TestWriteError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, errors.New("connection string with password")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "An unexpected error occurred", body.Error)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestWritePaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WritePaginated(rec, []string{"a"}, 10, 5, 5))

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.TotalCount)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, int64(5), resp.Offset)
}

func TestExtractLimitOffset(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?limit=20&offset=40", nil)
	limit, offset, err := ExtractLimitOffset(r)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
	assert.Equal(t, int64(40), offset)

	r = httptest.NewRequest(http.MethodGet, "/x", nil)
	limit, offset, err = ExtractLimitOffset(r)
	require.NoError(t, err)
	assert.Equal(t, 10, limit)
	assert.Equal(t, int64(0), offset)

	r = httptest.NewRequest(http.MethodGet, "/x?limit=abc", nil)
	_, _, err = ExtractLimitOffset(r)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?duration=45", nil)
	v, err := QueryInt(r, "duration", 0)
	require.NoError(t, err)
	assert.Equal(t, 45, v)

	v, err = QueryInt(r, "buffer", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	r = httptest.NewRequest(http.MethodGet, "/x?buffer=ten", nil)
	_, err = QueryInt(r, "buffer", 0)
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "a", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"other":1}`))
	assert.True(t, apperrors.HasCode(DecodeJSON(r, &v), apperrors.CodeInvalidInput))

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(``))
	assert.True(t, apperrors.HasCode(DecodeJSON(r, &v), apperrors.CodeInvalidInput))
}

func TestActorFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Empty(t, ActorFromRequest(r))

	r.Header.Set(HeaderActor, "user-1")
	assert.Equal(t, "user-1", ActorFromRequest(r))
}
