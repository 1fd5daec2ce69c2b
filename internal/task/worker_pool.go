package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/loglens/internal/redact"
)

// WorkerPool manages a pool of worker goroutines that process items
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// queue provides read access to the items to be processed
	queue TaskQueueReader

	// processor runs the work for each item
	processor ItemProcessor

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once

	// logger for structured logging
	logger *slog.Logger

	// errorHandler is called when processing an item fails
	// If nil, errors are only logged
	errorHandler func(item QueueItem, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 3,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(
	queue TaskQueueReader,
	processor ItemProcessor,
	config WorkerPoolConfig,
	logger *slog.Logger,
) *WorkerPool {
	// Apply defaults for invalid config values
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	// Create a cancelable context for shutdown coordination
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queue:       queue,
		processor:   processor,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With("component", "worker_pool"),
	}
}

// SetErrorHandler allows setting a custom error handler for processing failures.
// It must be called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(item QueueItem, err error)) {
	p.errorHandler = handler
}

// WorkerCount returns the number of workers the pool runs.
func (p *WorkerPool) WorkerCount() int {
	return p.workerCount
}

// Start launches the workers. Calling Start more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 1; i <= p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop cancels in-flight work and waits for every worker to exit.
// Items still buffered in the queue are not processed.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("stopping worker pool")
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

// worker processes items from the queue until the pool is stopped or the
// queue is closed and drained.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	items := p.queue.GetChannel()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case item, ok := <-items:
			if !ok {
				p.logger.Debug("task queue closed, stopping worker", "worker_id", id)
				return
			}
			p.processItem(item, id)
		}
	}
}

// processItem runs a single item. A failure or panic is reported and the
// worker keeps going.
func (p *WorkerPool) processItem(item QueueItem, workerID int) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while processing task: %v", r)
			p.logger.Error("recovered from panic in worker",
				"task_id", item.TaskID,
				"worker_id", workerID,
				"panic", r)
			p.handleError(item, err)
		}
	}()

	if err := p.processor.Process(p.ctx, item, workerID); err != nil {
		p.logger.Error("task processing failed",
			"task_id", item.TaskID,
			"worker_id", workerID,
			"error", redact.Error(err))
		p.handleError(item, err)
	}
}

func (p *WorkerPool) handleError(item QueueItem, err error) {
	if p.errorHandler != nil {
		p.errorHandler(item, err)
	}
}
