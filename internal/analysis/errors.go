package analysis

import "errors"

// Common errors returned by analyzers
var (
	// ErrAnalysisFailed is returned when log analysis fails for any general reason
	ErrAnalysisFailed = errors.New("failed to analyze logs")

	// ErrInvalidResponse is returned when the LLM response is missing or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during log analysis")

	// ErrInvalidConfig is returned when the analyzer configuration is invalid
	ErrInvalidConfig = errors.New("invalid analyzer configuration")

	// ErrEmptyLogs is returned when there are no entries to analyze
	ErrEmptyLogs = errors.New("no log entries to analyze")
)
