package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/loglens/internal/api/shared"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "An unexpected error occurred",
		},
		{
			name:           "not found",
			err:            service.ErrAnalysisNotFound,
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "Analysis task not found",
		},
		{
			name:           "wrapped queue full",
			err:            fmt.Errorf("failed to enqueue task: %w", service.ErrQueueFull),
			expectedStatus: http.StatusServiceUnavailable,
			expectedMsg:    "Analysis queue is full, retry later",
		},
		{
			name:           "shutting down",
			err:            service.ErrShuttingDown,
			expectedStatus: http.StatusServiceUnavailable,
			expectedMsg:    "Service is shutting down",
		},
		{
			name:           "logs too large",
			err:            service.ErrLogsTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedMsg:    "Log payload too large",
		},
		{
			name:           "body too large",
			err:            shared.ErrBodyTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedMsg:    "Log payload too large",
		},
		{
			name:           "invalid input",
			err:            service.ErrInvalidInput,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request",
		},
		{
			name:           "domain validation",
			err:            fmt.Errorf("%w: taskId has invalid format", domain.ErrValidation),
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request",
		},
		{
			name:           "unknown error",
			err:            errors.New("prompt template exploded at /etc/loglens/prompt.tmpl"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.expectedMsg, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	t.Run("default message replaces generic 500 text", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleAPIError(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"), "Failed to get analysis result")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "Failed to get analysis result")
		assert.NotContains(t, rr.Body.String(), "boom")
		assert.Empty(t, rr.Header().Get("Retry-After"))
	})

	t.Run("default message ignored for known errors", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleAPIError(rr, httptest.NewRequest(http.MethodGet, "/", nil), service.ErrAnalysisNotFound, "Failed")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Analysis task not found")
	})

	t.Run("load shedding sets retry-after", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleAPIError(rr, httptest.NewRequest(http.MethodPost, "/", nil), service.ErrQueueFull, "")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, RetryAfterSeconds, rr.Header().Get("Retry-After"))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(SubmitLogsRequest{})
	assert.Equal(t, "Invalid logs: required field", SanitizeValidationError(err))

	err = v.Struct(SubmitLogsRequest{Logs: "x", Type: "this-analysis-type-name-is-far-too-long"})
	assert.Equal(t, "Invalid type: too long", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("Key: 'x' Error: secret")))
}
