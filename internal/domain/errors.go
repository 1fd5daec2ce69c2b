// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyLogs is returned when a submission contains no log text.
	ErrEmptyLogs = errors.New("logs cannot be empty")

	// ErrNoLogEntries is returned when non-empty input yields no parseable entries.
	ErrNoLogEntries = errors.New("no parseable log entries found")

	// ErrInvalidAnalysisType is returned when an analysis type is not recognized.
	ErrInvalidAnalysisType = errors.New("invalid analysis type")

	// ErrInvalidStatus is returned when an analysis status is not valid.
	ErrInvalidStatus = errors.New("invalid analysis status")

	// ErrEmptyTaskID is returned when an analysis result has no task ID.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")
)
