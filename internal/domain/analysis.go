package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnalysisType selects which aspect of the logs the analysis focuses on.
type AnalysisType string

// Supported analysis types
const (
	// AnalysisTypeFull analyzes all entries
	AnalysisTypeFull AnalysisType = "full"
	// AnalysisTypeErrorsOnly analyzes only Error and Critical entries
	AnalysisTypeErrorsOnly AnalysisType = "errors_only"
	// AnalysisTypePerformance focuses the analysis on latency and throughput symptoms
	AnalysisTypePerformance AnalysisType = "performance"
)

// ParseAnalysisType resolves a case-insensitive analysis type name.
// An empty string yields AnalysisTypeFull.
func ParseAnalysisType(s string) (AnalysisType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch AnalysisType(normalized) {
	case "":
		return AnalysisTypeFull, nil
	case AnalysisTypeFull, AnalysisTypeErrorsOnly, AnalysisTypePerformance:
		return AnalysisType(normalized), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAnalysisType, s)
}

// IsValid reports whether t is a supported analysis type.
func (t AnalysisType) IsValid() bool {
	switch t {
	case AnalysisTypeFull, AnalysisTypeErrorsOnly, AnalysisTypePerformance:
		return true
	}
	return false
}

// AnalysisStatus represents the lifecycle state of an analysis task
type AnalysisStatus string

// Possible analysis status values
const (
	AnalysisStatusQueued     AnalysisStatus = "queued"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusAnalyzing  AnalysisStatus = "analyzing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// rank orders statuses along the lifecycle. Both terminal states share the
// highest rank.
func (s AnalysisStatus) rank() int {
	switch s {
	case AnalysisStatusQueued:
		return 0
	case AnalysisStatusProcessing:
		return 1
	case AnalysisStatusAnalyzing:
		return 2
	case AnalysisStatusCompleted, AnalysisStatusFailed:
		return 3
	}
	return -1
}

// IsValid reports whether s is a known status.
func (s AnalysisStatus) IsValid() bool {
	return s.rank() >= 0
}

// IsTerminal reports whether s is Completed or Failed.
func (s AnalysisStatus) IsTerminal() bool {
	return s == AnalysisStatusCompleted || s == AnalysisStatusFailed
}

// CanTransitionTo reports whether moving from s to next goes strictly forward
// in the lifecycle. Nothing leaves a terminal state.
func (s AnalysisStatus) CanTransitionTo(next AnalysisStatus) bool {
	if !s.IsValid() || !next.IsValid() || s.IsTerminal() {
		return false
	}
	return next.rank() > s.rank()
}

// Metrics are the counts derived from a successful analysis.
type Metrics struct {
	TotalEntries int `json:"totalEntries"`
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
	Critical     int `json:"critical"`
}

// NewMetrics derives metrics from parsed logs. Levels that never occurred count as 0.
func NewMetrics(logs *ParsedLogs) Metrics {
	if logs == nil {
		return Metrics{}
	}
	return Metrics{
		TotalEntries: logs.Total(),
		Errors:       logs.Count(LogLevelError),
		Warnings:     logs.Count(LogLevelWarning),
		Critical:     logs.Count(LogLevelCritical),
	}
}

// AnalysisResult is the record of one submitted batch of logs. It is created
// in the Queued state and ends either Completed (with Summary and Metrics) or
// Failed (with ErrorMessage), never both.
type AnalysisResult struct {
	TaskID       uuid.UUID      `json:"task_id"`
	Status       AnalysisStatus `json:"status"`
	Type         AnalysisType   `json:"type"`
	Summary      string         `json:"summary,omitempty"`
	Metrics      *Metrics       `json:"metrics,omitempty"`
	Created      time.Time      `json:"created"`
	Completed    *time.Time     `json:"completed,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// NewAnalysisResult creates a queued record with a freshly minted task ID.
func NewAnalysisResult(analysisType AnalysisType) (*AnalysisResult, error) {
	if analysisType == "" {
		analysisType = AnalysisTypeFull
	}

	result := &AnalysisResult{
		TaskID:  uuid.New(),
		Status:  AnalysisStatusQueued,
		Type:    analysisType,
		Created: time.Now().UTC(),
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// Validate checks the record's invariants: a known status and type, and
// result fields populated only as the status allows.
func (r *AnalysisResult) Validate() error {
	if r.TaskID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAnalysisType, r.Type)
	}

	switch r.Status {
	case AnalysisStatusCompleted:
		if r.Metrics == nil || r.ErrorMessage != "" || r.Completed == nil {
			return fmt.Errorf("%w: completed record must carry summary and metrics only", ErrValidation)
		}
	case AnalysisStatusFailed:
		if r.ErrorMessage == "" || r.Metrics != nil || r.Summary != "" || r.Completed == nil {
			return fmt.Errorf("%w: failed record must carry an error message only", ErrValidation)
		}
	default:
		if r.Metrics != nil || r.Summary != "" || r.ErrorMessage != "" || r.Completed != nil {
			return fmt.Errorf("%w: %s record must not carry results", ErrValidation, r.Status)
		}
	}

	return nil
}

// Clone returns a deep copy of the record.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Metrics != nil {
		metrics := *r.Metrics
		clone.Metrics = &metrics
	}
	if r.Completed != nil {
		completed := *r.Completed
		clone.Completed = &completed
	}
	return &clone
}
