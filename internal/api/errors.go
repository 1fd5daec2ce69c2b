package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/loglens/internal/api/shared"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/service"
)

// RetryAfterSeconds is advertised to clients when the pipeline sheds load.
const RetryAfterSeconds = "1"

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrAnalysisNotFound):
		return http.StatusNotFound

	// Load shedding
	case errors.Is(err, service.ErrQueueFull),
		errors.Is(err, service.ErrShuttingDown):
		return http.StatusServiceUnavailable

	// Payload size
	case errors.Is(err, service.ErrLogsTooLarge),
		errors.Is(err, shared.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge

	// Bad request errors
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyLogs),
		errors.Is(err, domain.ErrInvalidAnalysisType):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrAnalysisNotFound):
		return "Analysis task not found"

	case errors.Is(err, service.ErrQueueFull):
		return "Analysis queue is full, retry later"

	case errors.Is(err, service.ErrShuttingDown):
		return "Service is shutting down"

	case errors.Is(err, service.ErrLogsTooLarge),
		errors.Is(err, shared.ErrBodyTooLarge):
		return "Log payload too large"

	case errors.Is(err, domain.ErrEmptyLogs):
		return "Logs cannot be empty"

	case errors.Is(err, domain.ErrInvalidAnalysisType):
		return "Invalid analysis type"

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. defaultMsg
// replaces the generic message for unexpected errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	switch status {
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", RetryAfterSeconds)
	case http.StatusRequestEntityTooLarge:
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
