package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/loglens/internal/analysis"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/events"
	"github.com/phrazzld/loglens/internal/parser"
	"github.com/phrazzld/loglens/internal/platform/logger"
	"github.com/phrazzld/loglens/internal/redact"
	"github.com/phrazzld/loglens/internal/store"
)

// DefaultAnalysisTimeout bounds a single analyzer call when none is configured.
const DefaultAnalysisTimeout = 90 * time.Second

// Processing errors
var (
	// ErrTaskAbandoned is returned when shutdown interrupts an item. The task
	// keeps its last non-terminal status.
	ErrTaskAbandoned = errors.New("task abandoned during shutdown")

	// ErrParseFailed is returned when parsing the raw logs fails outright.
	ErrParseFailed = errors.New("log parsing failed")

	// ErrAnalysisTimeout is returned when the analyzer does not answer in time.
	ErrAnalysisTimeout = errors.New("analysis timed out")
)

// ProcessorConfig holds settings for the AnalysisProcessor.
type ProcessorConfig struct {
	// AnalysisTimeout bounds each analyzer call. Defaults to DefaultAnalysisTimeout.
	AnalysisTimeout time.Duration
}

// AnalysisProcessor drives one queue item through the analysis lifecycle:
// processing, parse, analyzing, analyze, then completed or failed.
type AnalysisProcessor struct {
	store    store.AnalysisStore
	analyzer analysis.Analyzer
	emitter  events.EventEmitter
	timeout  time.Duration
	logger   *slog.Logger
}

var _ ItemProcessor = (*AnalysisProcessor)(nil)

// NewAnalysisProcessor creates an AnalysisProcessor. emitter may be nil.
func NewAnalysisProcessor(
	analysisStore store.AnalysisStore,
	analyzer analysis.Analyzer,
	emitter events.EventEmitter,
	config ProcessorConfig,
	log *slog.Logger,
) (*AnalysisProcessor, error) {
	if analysisStore == nil {
		return nil, fmt.Errorf("analysis store cannot be nil")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	timeout := config.AnalysisTimeout
	if timeout <= 0 {
		timeout = DefaultAnalysisTimeout
	}

	return &AnalysisProcessor{
		store:    analysisStore,
		analyzer: analyzer,
		emitter:  emitter,
		timeout:  timeout,
		logger:   log.With("component", "analysis_processor"),
	}, nil
}

// Process implements ItemProcessor. A non-nil error means the task failed or
// was abandoned; failures have already been recorded in the store.
func (p *AnalysisProcessor) Process(ctx context.Context, item QueueItem, workerID int) error {
	ctx = logger.WithTaskID(ctx, item.TaskID.String())
	ctx = logger.WithWorkerID(ctx, workerID)

	if ctx.Err() != nil {
		return p.abandon(ctx, "before processing")
	}

	p.logger.InfoContext(ctx, "processing task",
		"analysis_type", item.Type,
		"queue_wait", time.Since(item.EnqueuedAt).String())

	if err := p.store.SetStatus(ctx, item.TaskID, domain.AnalysisStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark task processing: %w", err)
	}

	logs, stats, err := parse(item.Logs)
	if err != nil {
		return p.fail(ctx, item, err)
	}
	p.logger.DebugContext(ctx, "logs parsed",
		"lines", stats.Lines,
		"parsed", stats.Parsed,
		"skipped", stats.Skipped)
	if logs.Total() == 0 {
		return p.fail(ctx, item, domain.ErrNoLogEntries)
	}

	if err := p.store.SetStatus(ctx, item.TaskID, domain.AnalysisStatusAnalyzing); err != nil {
		return fmt.Errorf("failed to mark task analyzing: %w", err)
	}

	summary, err := p.analyze(ctx, logs, item.Type)
	if err != nil {
		if ctx.Err() != nil {
			return p.abandon(ctx, "during analysis")
		}
		return p.fail(ctx, item, err)
	}

	return p.complete(ctx, item, logs, summary)
}

// parse runs the parser, converting a panic into ErrParseFailed.
func parse(raw string) (logs *domain.ParsedLogs, stats parser.Stats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrParseFailed, r)
		}
	}()

	logs, stats = parser.ParseWithStats(raw)
	return logs, stats, nil
}

// analyze calls the analyzer under the analysis timeout.
func (p *AnalysisProcessor) analyze(
	ctx context.Context,
	logs *domain.ParsedLogs,
	analysisType domain.AnalysisType,
) (summary string, err error) {
	actx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: analyzer panicked: %v", analysis.ErrAnalysisFailed, r)
		}
	}()

	start := time.Now()
	summary, err = p.analyzer.AnalyzeLogs(actx, logs, analysisType)
	if err != nil {
		if ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrAnalysisTimeout, p.timeout)
		}
		return "", err
	}

	p.logger.DebugContext(ctx, "analysis finished",
		"duration", time.Since(start).String(),
		"summary_length", len(summary))
	return summary, nil
}

func (p *AnalysisProcessor) abandon(ctx context.Context, stage string) error {
	p.logger.WarnContext(ctx, "abandoning task, worker pool is shutting down", "stage", stage)
	return ErrTaskAbandoned
}

// fail records err on the task and emits an analysis.failed event.
func (p *AnalysisProcessor) fail(ctx context.Context, item QueueItem, cause error) error {
	message := redact.Error(cause)

	p.logger.ErrorContext(ctx, "task failed", "error", message)

	if err := p.store.SetFailed(ctx, item.TaskID, message); err != nil {
		p.logger.ErrorContext(ctx, "failed to record task failure", "error", err)
		return fmt.Errorf("failed to record task failure: %w", err)
	}

	p.emit(ctx, events.TypeAnalysisFailed, item, domain.AnalysisStatusFailed, events.FailedPayload{
		ErrorMessage: message,
	})

	return cause
}

// complete stores the summary and metrics and emits an analysis.completed event.
func (p *AnalysisProcessor) complete(
	ctx context.Context,
	item QueueItem,
	logs *domain.ParsedLogs,
	summary string,
) error {
	metrics := domain.NewMetrics(logs)

	if err := p.store.SetCompleted(ctx, item.TaskID, summary, metrics); err != nil {
		p.logger.ErrorContext(ctx, "failed to record task completion", "error", err)
		return fmt.Errorf("failed to record task completion: %w", err)
	}

	p.logger.InfoContext(ctx, "task completed",
		"total_entries", metrics.TotalEntries,
		"errors", metrics.Errors,
		"warnings", metrics.Warnings,
		"critical", metrics.Critical)

	p.emit(ctx, events.TypeAnalysisCompleted, item, domain.AnalysisStatusCompleted, events.CompletedPayload{
		Summary:      summary,
		TotalEntries: metrics.TotalEntries,
		Errors:       metrics.Errors,
		Warnings:     metrics.Warnings,
		Critical:     metrics.Critical,
	})

	return nil
}

// emit publishes a lifecycle event. Event delivery never changes the task outcome.
func (p *AnalysisProcessor) emit(
	ctx context.Context,
	eventType string,
	item QueueItem,
	status domain.AnalysisStatus,
	payload interface{},
) {
	if p.emitter == nil {
		return
	}

	event, err := events.NewAnalysisEvent(eventType, item.TaskID, string(status), payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to create event", "event_type", eventType, "error", err)
		return
	}

	if err := p.emitter.EmitEvent(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "event delivery failed", "event_type", eventType, "error", err)
	}
}
