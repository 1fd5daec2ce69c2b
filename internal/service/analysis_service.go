package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/store"
	"github.com/phrazzld/loglens/internal/task"
)

// DefaultMaxLogBytes is the submission size limit used when none is configured.
const DefaultMaxLogBytes int64 = 1 << 20

// TaskRunner defines the interface for submitting and querying analysis tasks
type TaskRunner interface {
	// Submit records a queued task and enqueues its logs
	Submit(ctx context.Context, logs string, analysisType domain.AnalysisType) (*domain.AnalysisResult, error)

	// Get returns a snapshot of the task record
	Get(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error)

	// QueueStats reports the current pipeline load
	QueueStats() task.QueueStats

	// TaskCount reports how many task records are held
	TaskCount(ctx context.Context) (int, error)
}

// AnalysisService provides log analysis operations
type AnalysisService interface {
	// SubmitLogs validates raw log text and queues it for analysis.
	// The returned record is in the queued state.
	SubmitLogs(ctx context.Context, logs string, analysisType domain.AnalysisType) (*domain.AnalysisResult, error)

	// GetResult retrieves the current record for a task
	GetResult(ctx context.Context, taskID uuid.UUID) (*domain.AnalysisResult, error)

	// Stats reports the queue depth, capacity and worker count
	Stats() task.QueueStats

	// TaskCount reports how many task records, of any status, are retained
	TaskCount(ctx context.Context) (int, error)
}

// AnalysisServiceError wraps errors from the analysis service with context.
type AnalysisServiceError struct {
	// Operation is the operation that failed (e.g., "submit_logs", "get_result")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for AnalysisServiceError.
func (e *AnalysisServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("analysis service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *AnalysisServiceError) Unwrap() error {
	return e.Err
}

// NewAnalysisServiceError creates a new AnalysisServiceError.
// Known conditions are translated to service sentinel errors instead of being wrapped.
func NewAnalysisServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrAnalysisNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrAnalysisNotFound
	case errors.Is(err, ErrQueueFull), errors.Is(err, task.ErrQueueFull):
		return ErrQueueFull
	case errors.Is(err, ErrShuttingDown), errors.Is(err, task.ErrQueueClosed):
		return ErrShuttingDown
	case errors.Is(err, domain.ErrInvalidAnalysisType):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return &AnalysisServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// AnalysisServiceConfig holds limits applied to submissions.
type AnalysisServiceConfig struct {
	// MaxLogBytes caps the size of a single submission.
	// Defaults to DefaultMaxLogBytes.
	MaxLogBytes int64
}

// analysisServiceImpl implements the AnalysisService interface
type analysisServiceImpl struct {
	runner      TaskRunner
	maxLogBytes int64
	logger      *slog.Logger
}

// NewAnalysisService creates a new AnalysisService
// It returns an error if the task runner is nil.
func NewAnalysisService(runner TaskRunner, config AnalysisServiceConfig, logger *slog.Logger) (AnalysisService, error) {
	if runner == nil {
		return nil, &AnalysisServiceError{
			Operation: "create_service",
			Message:   "runner cannot be nil",
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	maxLogBytes := config.MaxLogBytes
	if maxLogBytes <= 0 {
		maxLogBytes = DefaultMaxLogBytes
	}

	return &analysisServiceImpl{
		runner:      runner,
		maxLogBytes: maxLogBytes,
		logger:      logger.With("component", "analysis_service"),
	}, nil
}

// SubmitLogs implements AnalysisService.
func (s *analysisServiceImpl) SubmitLogs(
	ctx context.Context,
	logs string,
	analysisType domain.AnalysisType,
) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(logs) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrEmptyLogs)
	}
	if int64(len(logs)) > s.maxLogBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrLogsTooLarge, len(logs), s.maxLogBytes)
	}

	normalized, err := domain.ParseAnalysisType(string(analysisType))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	result, err := s.runner.Submit(ctx, logs, normalized)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to submit logs for analysis",
			"error", err,
			"analysis_type", normalized,
			"log_bytes", len(logs))
		return nil, NewAnalysisServiceError("submit_logs", "failed to queue analysis", err)
	}

	return result, nil
}

// GetResult implements AnalysisService.
func (s *analysisServiceImpl) GetResult(ctx context.Context, taskID uuid.UUID) (*domain.AnalysisResult, error) {
	result, err := s.runner.Get(ctx, taskID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.ErrorContext(ctx, "failed to load analysis task",
				"error", err,
				"task_id", taskID)
		}
		return nil, NewAnalysisServiceError("get_result", "failed to load analysis task", err)
	}
	return result, nil
}

// Stats implements AnalysisService.
func (s *analysisServiceImpl) Stats() task.QueueStats {
	return s.runner.QueueStats()
}

// TaskCount implements AnalysisService.
func (s *analysisServiceImpl) TaskCount(ctx context.Context) (int, error) {
	count, err := s.runner.TaskCount(ctx)
	if err != nil {
		return 0, NewAnalysisServiceError("task_count", "failed to count analysis tasks", err)
	}
	return count, nil
}
