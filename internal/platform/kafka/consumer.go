package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/service"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
)

const (
	submitRetryBase = 100 * time.Millisecond
	submitRetryCap  = 5 * time.Second
	fetchErrorDelay = time.Second
	commitTimeout   = 5 * time.Second
)

// IngestMessage is the JSON body of a raw log submission.
type IngestMessage struct {
	Logs string `json:"logs"`
	Type string `json:"type,omitempty"`
}

// DecodeIngestMessage parses and validates a message value.
func DecodeIngestMessage(value []byte) (IngestMessage, error) {
	var msg IngestMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return IngestMessage{}, fmt.Errorf("invalid ingest message: %w", err)
	}
	if strings.TrimSpace(msg.Logs) == "" {
		return IngestMessage{}, fmt.Errorf("invalid ingest message: %w", domain.ErrEmptyLogs)
	}
	if _, err := domain.ParseAnalysisType(msg.Type); err != nil {
		return IngestMessage{}, fmt.Errorf("invalid ingest message: %w", err)
	}
	return msg, nil
}

// messageReader is the subset of *kafka.Reader used by IngestConsumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Submitter accepts log text for analysis.
type Submitter interface {
	SubmitLogs(ctx context.Context, logs string, analysisType domain.AnalysisType) (*domain.AnalysisResult, error)
}

// IngestConsumer reads raw log submissions from Kafka and submits them for
// analysis. A message is committed once its submission succeeded or was
// permanently rejected; while the queue is full it is retried with backoff.
type IngestConsumer struct {
	reader    messageReader
	submitter Submitter
	topic     string
	logger    *slog.Logger
}

// NewIngestConsumer creates a consumer-group reader on topic.
func NewIngestConsumer(
	brokers []string,
	topic, groupID string,
	submitter Submitter,
	logger *slog.Logger,
) *IngestConsumer {
	return newIngestConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		StartOffset: kafka.FirstOffset,
		Topic:       topic,
		GroupID:     groupID,
		MaxWait:     10 * time.Second,
	}), topic, submitter, logger)
}

func newIngestConsumer(reader messageReader, topic string, submitter Submitter, logger *slog.Logger) *IngestConsumer {
	return &IngestConsumer{
		reader:    reader,
		submitter: submitter,
		topic:     topic,
		logger:    logger.With("component", "kafka_ingest", "topic", topic),
	}
}

// Run consumes messages until ctx is done or the reader is closed.
func (c *IngestConsumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "ingest consumer started")
	defer c.logger.InfoContext(ctx, "ingest consumer stopped")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.ErrorContext(ctx, "failed to fetch message", "error", err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchErrorDelay):
			}
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorContext(ctx, "failed to handle message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err)
		}
	}
}

// handle submits one message and commits it unless ctx ended first.
func (c *IngestConsumer) handle(ctx context.Context, msg kafka.Message) error {
	log := c.logger.With("partition", msg.Partition, "offset", msg.Offset)

	ingest, err := DecodeIngestMessage(msg.Value)
	if err != nil {
		log.WarnContext(ctx, "skipping malformed ingest message", "error", err)
		return c.commit(ctx, msg)
	}

	var result *domain.AnalysisResult
	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		var submitErr error
		result, submitErr = c.submitter.SubmitLogs(ctx, ingest.Logs, domain.AnalysisType(ingest.Type))
		if errors.Is(submitErr, service.ErrQueueFull) {
			log.DebugContext(ctx, "analysis queue full, backing off")
			return retry.RetryableError(submitErr)
		}
		return submitErr
	})

	switch {
	case err != nil && ctx.Err() != nil:
		// Leave the message uncommitted so it is redelivered.
		return ctx.Err()
	case err != nil:
		log.WarnContext(ctx, "ingest submission rejected", "error", err)
	default:
		log.InfoContext(ctx, "ingest submission accepted",
			"task_id", result.TaskID,
			"key", string(msg.Key))
	}

	return c.commit(ctx, msg)
}

// commit records the offset even if ctx was cancelled after the outcome was known.
func (c *IngestConsumer) commit(ctx context.Context, msg kafka.Message) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to commit offset %d: %w", msg.Offset, err)
	}
	return nil
}

func (c *IngestConsumer) backoff() retry.Backoff {
	b := retry.NewExponential(submitRetryBase)
	b = retry.WithCappedDuration(submitRetryCap, b)
	return retry.WithJitterPercent(10, b)
}

// Close releases the reader. A blocked Run returns afterwards.
func (c *IngestConsumer) Close() error {
	return c.reader.Close()
}
