package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultQueueSize is used when a non-positive capacity is requested.
const DefaultQueueSize = 100

// Common errors returned by the TaskQueue
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue implements a bounded FIFO queue that satisfies both
// TaskQueueReader and TaskQueueWriter interfaces.
type TaskQueue struct {
	items          chan QueueItem
	enqueueTimeout time.Duration
	logger         *slog.Logger

	// mu guards closed and the close of items against in-flight sends.
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	once   sync.Once
}

var (
	_ TaskQueueReader = (*TaskQueue)(nil)
	_ TaskQueueWriter = (*TaskQueue)(nil)
)

// NewTaskQueue creates a new task queue with the specified buffer size.
// When enqueueTimeout is positive, Enqueue waits up to that long for space
// before rejecting an item.
func NewTaskQueue(size int, enqueueTimeout time.Duration, logger *slog.Logger) *TaskQueue {
	if size <= 0 {
		logger.Warn("invalid queue size specified, using default",
			"specified_size", size,
			"default_size", DefaultQueueSize)
		size = DefaultQueueSize
	}

	return &TaskQueue{
		items:          make(chan QueueItem, size),
		enqueueTimeout: enqueueTimeout,
		logger:         logger.With("component", "task_queue"),
		done:           make(chan struct{}),
	}
}

// Enqueue adds an item to the queue for processing.
// Returns ErrQueueFull if no space frees up in time and ErrQueueClosed after Close.
func (q *TaskQueue) Enqueue(ctx context.Context, item QueueItem) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- item:
		q.logEnqueued(ctx, item)
		return nil
	default:
	}

	if q.enqueueTimeout <= 0 {
		return q.fullError()
	}

	timer := time.NewTimer(q.enqueueTimeout)
	defer timer.Stop()

	select {
	case q.items <- item:
		q.logEnqueued(ctx, item)
		return nil
	case <-timer.C:
		return q.fullError()
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", q.fullError(), ctx.Err())
	case <-q.done:
		return ErrQueueClosed
	}
}

func (q *TaskQueue) fullError() error {
	return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.items))
}

func (q *TaskQueue) logEnqueued(ctx context.Context, item QueueItem) {
	q.logger.DebugContext(ctx, "item enqueued",
		"task_id", item.TaskID,
		"analysis_type", item.Type,
		"queue_len", len(q.items),
		"queue_cap", cap(q.items))
}

// Close closes the task queue, preventing further submission. Items already
// buffered remain readable. Close is safe to call more than once.
func (q *TaskQueue) Close() {
	q.once.Do(func() {
		// Release producers waiting for space before taking the write lock.
		close(q.done)

		q.mu.Lock()
		q.closed = true
		close(q.items)
		q.mu.Unlock()

		q.logger.Info("task queue closed", "pending_items", len(q.items))
	})
}

// GetChannel returns a read-only channel for consuming items
func (q *TaskQueue) GetChannel() <-chan QueueItem {
	return q.items
}

// Len returns the number of buffered items.
func (q *TaskQueue) Len() int {
	return len(q.items)
}

// Cap returns the queue capacity.
func (q *TaskQueue) Cap() int {
	return cap(q.items)
}
