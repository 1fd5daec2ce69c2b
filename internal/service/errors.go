package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrAnalysisNotFound indicates that no task exists for the requested ID.
	// API layer should map this to HTTP 404 Not Found.
	ErrAnalysisNotFound = errors.New("analysis task not found")

	// ErrInvalidInput indicates the submission was rejected before a task was created.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid analysis request")

	// ErrLogsTooLarge indicates the submitted log text exceeds the configured limit.
	// API layer should map this to HTTP 413 Request Entity Too Large.
	ErrLogsTooLarge = errors.New("log payload too large")

	// ErrQueueFull indicates the work queue rejected the submission.
	// API layer should map this to HTTP 503 Service Unavailable with Retry-After.
	ErrQueueFull = errors.New("analysis queue is full")

	// ErrShuttingDown indicates the pipeline no longer accepts submissions.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrShuttingDown = errors.New("analysis pipeline is shutting down")
)
