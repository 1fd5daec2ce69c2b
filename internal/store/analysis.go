package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/domain"
)

// AnalysisStore defines the interface for analysis task state.
//
// Update-style methods (SetStatus, SetCompleted, SetFailed) return nil when
// the task does not exist, and leave records that already reached a terminal
// status untouched. Implementations must be safe for concurrent use.
type AnalysisStore interface {
	// CreateTask saves a new task record. It never overwrites an existing
	// record and returns ErrDuplicateTask if the ID is already taken.
	// Returns ErrInvalidEntity if the record fails domain validation.
	CreateTask(ctx context.Context, result *domain.AnalysisResult) error

	// GetTask retrieves a snapshot of the task record.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error)

	// SetStatus moves a task forward to the given non-terminal status.
	// Backward or repeated transitions are ignored.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus) error

	// SetCompleted marks a task completed with its summary and metrics.
	SetCompleted(ctx context.Context, id uuid.UUID, summary string, metrics domain.Metrics) error

	// SetFailed marks a task failed with a human-readable error message.
	SetFailed(ctx context.Context, id uuid.UUID, message string) error

	// DeleteTask removes a task record. Deleting a missing task is not an error.
	DeleteTask(ctx context.Context, id uuid.UUID) error

	// DeleteCompletedBefore removes terminal records that finished before
	// cutoff and returns how many were removed.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the number of stored task records.
	Count(ctx context.Context) (int, error)
}
