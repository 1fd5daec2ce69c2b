package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/analysis"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/events"
	"github.com/phrazzld/loglens/internal/store"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// EnqueueTimeout is how long Submit may wait for queue space.
	// Zero rejects immediately when the queue is full.
	EnqueueTimeout time.Duration

	// AnalysisTimeout bounds each analyzer call
	AnalysisTimeout time.Duration

	// Retention is how long terminal records are kept.
	// Zero disables pruning.
	Retention time.Duration

	// RetentionCheckInterval defines how often to prune expired records
	// If zero, defaults to 5 minutes
	RetentionCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            3,
		QueueSize:              DefaultQueueSize,
		AnalysisTimeout:        DefaultAnalysisTimeout,
		RetentionCheckInterval: 5 * time.Minute,
	}
}

// QueueStats describes the current pipeline load.
type QueueStats struct {
	Len     int `json:"queue_len"`
	Cap     int `json:"queue_cap"`
	Workers int `json:"workers"`
}

// TaskRunner owns the analysis pipeline: the task store, the bounded queue
// and the worker pool draining it.
type TaskRunner struct {
	store  store.AnalysisStore
	queue  *TaskQueue
	pool   *WorkerPool
	config TaskRunnerConfig
	logger *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
}

// NewTaskRunner creates a new TaskRunner. emitter may be nil.
func NewTaskRunner(
	analysisStore store.AnalysisStore,
	analyzer analysis.Analyzer,
	emitter events.EventEmitter,
	config TaskRunnerConfig,
	logger *slog.Logger,
) (*TaskRunner, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	// Apply default check interval if not specified
	if config.RetentionCheckInterval <= 0 {
		config.RetentionCheckInterval = 5 * time.Minute
	}

	processor, err := NewAnalysisProcessor(analysisStore, analyzer, emitter, ProcessorConfig{
		AnalysisTimeout: config.AnalysisTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis processor: %w", err)
	}

	queue := NewTaskQueue(config.QueueSize, config.EnqueueTimeout, logger)
	pool := NewWorkerPool(queue, processor, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      analysisStore,
		queue:      queue,
		pool:       pool,
		config:     config,
		logger:     logger.With("component", "task_runner"),
		ctx:        ctx,
		cancelFunc: cancel,
	}, nil
}

// SetErrorHandler allows setting a custom handler for failed or abandoned items.
// It must be called before Start.
func (r *TaskRunner) SetErrorHandler(handler func(item QueueItem, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit records a new queued task and hands its logs to the workers.
// If the queue rejects the item the record is removed again, so a rejected
// submission never leaves a task behind.
func (r *TaskRunner) Submit(
	ctx context.Context,
	logs string,
	analysisType domain.AnalysisType,
) (*domain.AnalysisResult, error) {
	result, err := domain.NewAnalysisResult(analysisType)
	if err != nil {
		return nil, err
	}

	// Save the record first so a worker can never see an unknown task
	if err := r.store.CreateTask(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	item := QueueItem{
		TaskID:     result.TaskID,
		Logs:       logs,
		Type:       result.Type,
		EnqueuedAt: time.Now().UTC(),
	}

	if err := r.queue.Enqueue(ctx, item); err != nil {
		if delErr := r.store.DeleteTask(context.WithoutCancel(ctx), result.TaskID); delErr != nil {
			r.logger.ErrorContext(ctx, "failed to remove rejected task",
				"task_id", result.TaskID,
				"error", delErr)
		}
		r.logger.WarnContext(ctx, "task rejected by queue",
			"task_id", result.TaskID,
			"queue_len", r.queue.Len(),
			"queue_cap", r.queue.Cap(),
			"error", err)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	r.logger.InfoContext(ctx, "task submitted",
		"task_id", result.TaskID,
		"analysis_type", result.Type,
		"log_bytes", len(logs))

	return result, nil
}

// Get returns a snapshot of the task record.
func (r *TaskRunner) Get(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error) {
	return r.store.GetTask(ctx, id)
}

// QueueStats reports the queue depth, capacity and worker count.
func (r *TaskRunner) QueueStats() QueueStats {
	return QueueStats{
		Len:     r.queue.Len(),
		Cap:     r.queue.Cap(),
		Workers: r.pool.WorkerCount(),
	}
}

// TaskCount reports how many task records the store currently holds.
func (r *TaskRunner) TaskCount(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

// Start begins processing tasks and, when retention is configured, pruning
// expired records.
func (r *TaskRunner) Start() {
	r.startOnce.Do(func() {
		r.pool.Start()

		if r.config.Retention > 0 {
			r.wg.Add(1)
			go r.retentionMonitor()
		}

		r.logger.Info("task runner started",
			"worker_count", r.pool.WorkerCount(),
			"queue_cap", r.queue.Cap(),
			"retention", r.config.Retention.String())
	})
}

// Stop rejects further submissions, cancels in-flight analyses and waits for
// the workers to exit. Abandoned tasks keep their last non-terminal status.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.queue.Close()
		r.pool.Stop()
		r.wg.Wait()
		r.logger.Info("task runner stopped", "unprocessed_items", r.queue.Len())
	})
}

// PruneExpired removes terminal records older than the configured retention.
func (r *TaskRunner) PruneExpired(ctx context.Context) (int, error) {
	if r.config.Retention <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-r.config.Retention)
	removed, err := r.store.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune expired tasks: %w", err)
	}

	if removed > 0 {
		r.logger.InfoContext(ctx, "pruned expired tasks", "count", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// retentionMonitor periodically prunes expired terminal records
func (r *TaskRunner) retentionMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.RetentionCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			if _, err := r.PruneExpired(r.ctx); err != nil {
				r.logger.Error("retention check failed", "error", err)
			}
		}
	}
}
