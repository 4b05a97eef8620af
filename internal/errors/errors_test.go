package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_DATE", "start must use the YYYY-MM-DD format")
	assert.Equal(t, "start must use the YYYY-MM-DD format", err.Error())
}

func TestAPIError_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	render.Render(w, r, ErrViewNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var got APIError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "VIEW_NOT_FOUND", got.ErrorCode)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{"validation failed", ErrValidationFailed, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"invalid date", ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE"},
		{"not found", ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"view not found", ErrViewNotFound, http.StatusNotFound, "VIEW_NOT_FOUND"},
		{"method not allowed", ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"internal", ErrInternalServer, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"export", ErrExportFailed, http.StatusInternalServerError, "EXPORT_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestInvalidDateError(t *testing.T) {
	err := InvalidDateError("start", "2011-13-45")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_DATE", err.ErrorCode)
	assert.Equal(t, "start must use the YYYY-MM-DD format", err.Message)

	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "start", details.Field)
	assert.Contains(t, details.Message, "2011-13-45")
}

func TestUnknownViewError(t *testing.T) {
	err := UnknownViewError("monthly")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "VIEW_NOT_FOUND", err.ErrorCode)
	assert.Equal(t, `view "monthly" not found`, err.Message)
	assert.Equal(t, "monthly", err.Details)
}

func TestExportError(t *testing.T) {
	err := ExportError("xlsx", errors.New("sheet limit reached"))

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "xlsx export failed", err.Message)
	assert.Equal(t, "sheet limit reached", err.Details)
}

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *APIError
		want     bool
	}{
		{"invalid date", InvalidDateError("start", "2011-02-30"), ErrInvalidDateRange, true},
		{"unknown view", UnknownViewError("hourly"), ErrViewNotFound, true},
		{"missing route", NotFoundError("route /x"), ErrNotFound, true},
		{"export", ExportError("csv", errors.New("disk full")), ErrExportFailed, true},
		{"field validation", ErrValidation("upgrade", "required"), ErrValidationFailed, true},
		{"bad payload", InvalidRequestWithError(errors.New("eof")), ErrInvalidRequest, true},
		{"method", MethodNotAllowedError(http.MethodPost, "/api/dashboard"), ErrMethodNotAllowed, true},
		{"wrapped", fmt.Errorf("render: %w", InvalidDateError("end", "x")), ErrInvalidDateRange, true},
		{"same status different code", UnknownViewError("hourly"), ErrNotFound, false},
		{"plain error", errors.New("boom"), ErrInternalServer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.sentinel))
		})
	}
}
