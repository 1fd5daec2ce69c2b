package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/loglens/internal/analysis"
	"github.com/phrazzld/loglens/internal/config"
	"github.com/phrazzld/loglens/internal/events"
	"github.com/phrazzld/loglens/internal/platform/gemini"
	"github.com/phrazzld/loglens/internal/platform/kafka"
	"github.com/phrazzld/loglens/internal/platform/memory"
	"github.com/phrazzld/loglens/internal/redact"
	"github.com/phrazzld/loglens/internal/service"
	"github.com/phrazzld/loglens/internal/store"
	"github.com/phrazzld/loglens/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	analysisStore store.AnalysisStore
	analyzer      analysis.Analyzer

	// Event system
	eventEmitter *events.InMemoryEventEmitter
	publisher    *kafka.Publisher

	// Pipeline
	taskRunner      *task.TaskRunner
	analysisService service.AnalysisService

	ingestConsumer *kafka.IngestConsumer
}

// newApplication creates a new application instance with all dependencies initialized.
// The task runner is created but not started; serve starts it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		analysisStore: memory.NewAnalysisStore(logger),
		eventEmitter:  events.NewInMemoryEventEmitter(logger),
	}

	analyzer, err := newAnalyzer(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}
	app.analyzer = analysis.NewLimiter(analyzer, cfg.LLM.MaxConcurrentRequests, logger)
	logger.Info("analyzer initialized",
		"provider", cfg.LLM.Provider,
		"max_concurrent_requests", cfg.LLM.MaxConcurrentRequests)

	app.eventEmitter.RegisterHandler(events.EventHandlerFunc(func(ctx context.Context, event *events.AnalysisEvent) error {
		logger.DebugContext(ctx, "analysis event emitted",
			"event_id", event.ID,
			"event_type", event.Type,
			"task_id", event.TaskID)
		return nil
	}))

	if cfg.Kafka.Enabled {
		app.publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, logger)
		app.eventEmitter.RegisterHandler(app.publisher)
		logger.Info("kafka event publisher enabled",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.EventsTopic)
	}
	logger.Info("event handlers registered", "count", app.eventEmitter.HandlerCount())

	app.taskRunner, err = task.NewTaskRunner(app.analysisStore, app.analyzer, app.eventEmitter, task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		EnqueueTimeout:         cfg.Task.EnqueueTimeout(),
		AnalysisTimeout:        cfg.Task.AnalysisTimeout(),
		Retention:              cfg.Task.Retention(),
		RetentionCheckInterval: cfg.Task.RetentionCheckInterval(),
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task runner: %w", err)
	}
	app.taskRunner.SetErrorHandler(func(item task.QueueItem, err error) {
		logger.Warn("analysis task did not complete",
			"task_id", item.TaskID,
			"analysis_type", item.Type,
			"error", redact.Error(err))
	})

	app.analysisService, err = service.NewAnalysisService(app.taskRunner, service.AnalysisServiceConfig{
		MaxLogBytes: cfg.Task.MaxLogBytes,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create analysis service: %w", err)
	}

	if cfg.Kafka.Enabled && cfg.Kafka.IngestTopic != "" {
		app.ingestConsumer = kafka.NewIngestConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.IngestTopic,
			cfg.Kafka.GroupID,
			app.analysisService,
			logger,
		)
		logger.Info("kafka ingest consumer enabled",
			"topic", cfg.Kafka.IngestTopic,
			"group_id", cfg.Kafka.GroupID)
	}

	return app, nil
}

// newAnalyzer selects the analysis backend for the configured provider.
func newAnalyzer(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (analysis.Analyzer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		a, err := gemini.NewAnalyzer(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.ProviderLocal:
		a, err := analysis.NewLocalAnalyzer(cfg.MaxPromptEntries, logger)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", analysis.ErrInvalidConfig, cfg.Provider)
	}
}

// cleanup handles graceful shutdown of application resources.
// In-flight analyses are abandoned; their tasks keep their last status.
func (app *application) cleanup() {
	if app.ingestConsumer != nil {
		if err := app.ingestConsumer.Close(); err != nil {
			app.logger.Error("error closing kafka ingest consumer", "error", redact.Error(err))
		}
	}

	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing kafka publisher", "error", redact.Error(err))
		}
	}

	app.logger.Info("application shutdown completed")
}
