package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/domain"
)

// QueueItem is a unit of work waiting for a worker: the raw log text of one
// submitted task.
type QueueItem struct {
	TaskID     uuid.UUID
	Logs       string
	Type       domain.AnalysisType
	EnqueuedAt time.Time
}

// TaskQueueReader provides read-only access to the item channel
// allowing workers to consume items without the ability to enqueue.
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming items
	GetChannel() <-chan QueueItem
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue items for processing.
type TaskQueueWriter interface {
	// Enqueue adds an item to the queue for processing.
	// Returns an error if the queue is full or closed.
	Enqueue(ctx context.Context, item QueueItem) error

	// Close closes the task queue, preventing further submission
	Close()
}

// ItemProcessor runs the work for a single queue item.
type ItemProcessor interface {
	Process(ctx context.Context, item QueueItem, workerID int) error
}

// ItemProcessorFunc adapts a function to ItemProcessor.
type ItemProcessorFunc func(ctx context.Context, item QueueItem, workerID int) error

// Process implements ItemProcessor.
func (f ItemProcessorFunc) Process(ctx context.Context, item QueueItem, workerID int) error {
	return f(ctx, item, workerID)
}
