package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the analysis pipeline.
const (
	// TypeAnalysisCompleted is emitted when a task reaches the completed state.
	TypeAnalysisCompleted = "analysis.completed"

	// TypeAnalysisFailed is emitted when a task reaches the failed state.
	TypeAnalysisFailed = "analysis.failed"
)

// AnalysisEvent describes a lifecycle change of an analysis task.
// It carries only identifiers and a JSON payload, so emitters and handlers
// stay independent of the task package.
type AnalysisEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// TaskID identifies the analysis task the event refers to
	TaskID uuid.UUID `json:"task_id"`

	// Status is the task status at the time of the event
	Status string `json:"status"`

	// Payload contains event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// CompletedPayload is the payload of TypeAnalysisCompleted events.
type CompletedPayload struct {
	Summary      string `json:"summary"`
	TotalEntries int    `json:"total_entries"`
	Errors       int    `json:"errors"`
	Warnings     int    `json:"warnings"`
	Critical     int    `json:"critical"`
}

// FailedPayload is the payload of TypeAnalysisFailed events.
type FailedPayload struct {
	ErrorMessage string `json:"error_message"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *AnalysisEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewAnalysisEvent creates a new AnalysisEvent with the specified type and payload.
func NewAnalysisEvent(
	eventType string,
	taskID uuid.UUID,
	status string,
	payload interface{},
) (*AnalysisEvent, error) {
	// Serialize the payload to JSON
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &AnalysisEvent{
		ID:        uuid.New(),
		Type:      eventType,
		TaskID:    taskID,
		Status:    status,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *AnalysisEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the pipeline to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *AnalysisEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *AnalysisEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *AnalysisEvent) error {
	return f(ctx, event)
}
