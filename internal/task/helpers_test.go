package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/platform/memory"
	"github.com/phrazzld/loglens/internal/store"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newTestStore() *memory.AnalysisStore {
	return memory.NewAnalysisStore(setupTestLogger())
}

// createQueuedTask stores a fresh queued record and returns a queue item for it.
func createQueuedTask(t *testing.T, s store.AnalysisStore, logs string) QueueItem {
	t.Helper()

	result, err := domain.NewAnalysisResult(domain.AnalysisTypeFull)
	require.NoError(t, err)
	require.NoError(t, s.CreateTask(context.Background(), result))

	return QueueItem{
		TaskID:     result.TaskID,
		Logs:       logs,
		Type:       result.Type,
		EnqueuedAt: time.Now().UTC(),
	}
}

// waitForStatus polls the store until the task reaches want.
func waitForStatus(t *testing.T, s store.AnalysisStore, id uuid.UUID, want domain.AnalysisStatus) *domain.AnalysisResult {
	t.Helper()

	var last *domain.AnalysisResult
	require.Eventually(t, func() bool {
		result, err := s.GetTask(context.Background(), id)
		if err != nil {
			return false
		}
		last = result
		return result.Status == want
	}, 5*time.Second, 5*time.Millisecond, "task %s never reached status %s", id, want)
	return last
}

// exclusiveStore wraps an AnalysisStore and records a violation whenever two
// goroutines mutate the same task at the same time. It also keeps the
// sequence of statuses written for each task.
type exclusiveStore struct {
	store.AnalysisStore

	mu         sync.Mutex
	inFlight   map[uuid.UUID]int
	history    map[uuid.UUID][]domain.AnalysisStatus
	violations atomic.Int32
	hold       time.Duration
}

func newExclusiveStore(inner store.AnalysisStore, hold time.Duration) *exclusiveStore {
	return &exclusiveStore{
		AnalysisStore: inner,
		inFlight:      make(map[uuid.UUID]int),
		history:       make(map[uuid.UUID][]domain.AnalysisStatus),
		hold:          hold,
	}
}

func (s *exclusiveStore) enter(id uuid.UUID, status domain.AnalysisStatus) {
	s.mu.Lock()
	if s.inFlight[id] > 0 {
		s.violations.Add(1)
	}
	s.inFlight[id]++
	s.history[id] = append(s.history[id], status)
	s.mu.Unlock()

	if s.hold > 0 {
		time.Sleep(s.hold)
	}
}

func (s *exclusiveStore) exit(id uuid.UUID) {
	s.mu.Lock()
	s.inFlight[id]--
	s.mu.Unlock()
}

func (s *exclusiveStore) SetStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus) error {
	s.enter(id, status)
	defer s.exit(id)
	return s.AnalysisStore.SetStatus(ctx, id, status)
}

func (s *exclusiveStore) SetCompleted(ctx context.Context, id uuid.UUID, summary string, metrics domain.Metrics) error {
	s.enter(id, domain.AnalysisStatusCompleted)
	defer s.exit(id)
	return s.AnalysisStore.SetCompleted(ctx, id, summary, metrics)
}

func (s *exclusiveStore) SetFailed(ctx context.Context, id uuid.UUID, message string) error {
	s.enter(id, domain.AnalysisStatusFailed)
	defer s.exit(id)
	return s.AnalysisStore.SetFailed(ctx, id, message)
}

func (s *exclusiveStore) History(id uuid.UUID) []domain.AnalysisStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AnalysisStatus(nil), s.history[id]...)
}
