package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/store"
)

// AnalysisStore is an in-memory implementation of store.AnalysisStore.
// Records live as long as the process does.
type AnalysisStore struct {
	mu     sync.RWMutex
	tasks  map[uuid.UUID]*domain.AnalysisResult
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an AnalysisStore.
type Option func(*AnalysisStore)

// WithClock overrides the clock used for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AnalysisStore) {
		s.now = now
	}
}

// NewAnalysisStore creates an empty store.
func NewAnalysisStore(logger *slog.Logger, opts ...Option) *AnalysisStore {
	if logger == nil {
		logger = slog.Default()
	}

	s := &AnalysisStore{
		tasks:  make(map[uuid.UUID]*domain.AnalysisResult),
		logger: logger.With("component", "analysis_store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.AnalysisStore = (*AnalysisStore)(nil)

// CreateTask implements store.AnalysisStore.
func (s *AnalysisStore) CreateTask(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil {
		return store.NewStoreError("analysis task", "create", "record is nil", store.ErrInvalidEntity)
	}
	if err := result.Validate(); err != nil {
		return store.NewStoreError("analysis task", "create", err.Error(), store.ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[result.TaskID]; exists {
		return store.ErrDuplicateTask
	}

	s.tasks[result.TaskID] = result.Clone()
	return nil
}

// GetTask implements store.AnalysisStore. The returned record is a copy.
func (s *AnalysisStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return result.Clone(), nil
}

// SetStatus implements store.AnalysisStore.
func (s *AnalysisStore) SetStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus) error {
	if status.IsTerminal() || !status.IsValid() {
		s.logger.WarnContext(ctx, "ignoring status update to non-intermediate status",
			"task_id", id, "status", status)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.lookup(ctx, id, "set_status")
	if !ok {
		return nil
	}
	if !result.Status.CanTransitionTo(status) {
		s.logger.DebugContext(ctx, "ignoring non-forward status transition",
			"task_id", id, "from", result.Status, "to", status)
		return nil
	}

	result.Status = status
	return nil
}

// SetCompleted implements store.AnalysisStore.
func (s *AnalysisStore) SetCompleted(
	ctx context.Context,
	id uuid.UUID,
	summary string,
	metrics domain.Metrics,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.lookup(ctx, id, "set_completed")
	if !ok || s.terminal(ctx, result) {
		return nil
	}

	completed := s.now()
	result.Status = domain.AnalysisStatusCompleted
	result.Summary = summary
	result.Metrics = &metrics
	result.Completed = &completed
	return nil
}

// SetFailed implements store.AnalysisStore.
func (s *AnalysisStore) SetFailed(ctx context.Context, id uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.lookup(ctx, id, "set_failed")
	if !ok || s.terminal(ctx, result) {
		return nil
	}

	if message == "" {
		message = "analysis failed"
	}

	completed := s.now()
	result.Status = domain.AnalysisStatusFailed
	result.ErrorMessage = message
	result.Completed = &completed
	return nil
}

// DeleteTask implements store.AnalysisStore.
func (s *AnalysisStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tasks, id)
	return nil
}

// DeleteCompletedBefore implements store.AnalysisStore.
func (s *AnalysisStore) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, result := range s.tasks {
		if !result.Status.IsTerminal() || result.Completed == nil {
			continue
		}
		if result.Completed.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed, nil
}

// Count implements store.AnalysisStore.
func (s *AnalysisStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks), nil
}

// lookup must be called with the write lock held.
func (s *AnalysisStore) lookup(ctx context.Context, id uuid.UUID, op string) (*domain.AnalysisResult, bool) {
	result, ok := s.tasks[id]
	if !ok {
		s.logger.WarnContext(ctx, "update for unknown task ignored", "task_id", id, "operation", op)
	}
	return result, ok
}

func (s *AnalysisStore) terminal(ctx context.Context, result *domain.AnalysisResult) bool {
	if result.Status.IsTerminal() {
		s.logger.DebugContext(ctx, "task already terminal, update ignored",
			"task_id", result.TaskID, "status", result.Status)
		return true
	}
	return false
}
