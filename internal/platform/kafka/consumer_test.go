package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/service"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeReader serves queued messages, then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return kafka.Message{}, io.EOF
	}
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

// fakeSubmitter returns scripted errors, then succeeds.
type fakeSubmitter struct {
	mu     sync.Mutex
	errs   []error
	calls  int
	logs   []string
	types  []domain.AnalysisType
	always error
}

func (s *fakeSubmitter) SubmitLogs(
	ctx context.Context,
	logs string,
	analysisType domain.AnalysisType,
) (*domain.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.logs = append(s.logs, logs)
	s.types = append(s.types, analysisType)

	if s.always != nil {
		return nil, s.always
	}
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return &domain.AnalysisResult{TaskID: uuid.New(), Status: domain.AnalysisStatusQueued}, nil
}

func (s *fakeSubmitter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestDecodeIngestMessage(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    IngestMessage
		wantErr error
	}{
		{
			name:  "logs and type",
			value: `{"logs":"[2025-11-23 10:15:30] ERROR: boom","type":"errors_only"}`,
			want:  IngestMessage{Logs: "[2025-11-23 10:15:30] ERROR: boom", Type: "errors_only"},
		},
		{
			name:  "type is optional",
			value: `{"logs":"line"}`,
			want:  IngestMessage{Logs: "line"},
		},
		{
			name:    "blank logs",
			value:   `{"logs":"   "}`,
			wantErr: domain.ErrEmptyLogs,
		},
		{
			name:    "unknown type",
			value:   `{"logs":"line","type":"verbose"}`,
			wantErr: domain.ErrInvalidAnalysisType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeIngestMessage([]byte(tt.value))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeIngestMessage([]byte("not json"))
	assert.ErrorContains(t, err, "invalid ingest message")
}

func TestIngestConsumer_SubmitsAndCommits(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 1, Value: []byte(`{"logs":"[2025-11-23 10:15:30] INFO: ok","type":"performance"}`)},
		{Offset: 2, Value: []byte(`{broken`)},
		{Offset: 3, Value: []byte(`{"logs":"line"}`)},
	}}
	submitter := &fakeSubmitter{}
	consumer := newIngestConsumer(reader, "raw-logs", submitter, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	require.Eventually(t, func() bool { return len(reader.Committed()) == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1, 2, 3}, reader.Committed(), "malformed messages are committed too")
	assert.Equal(t, 2, submitter.Calls())
	assert.Equal(t, []domain.AnalysisType{domain.AnalysisTypePerformance, ""}, submitter.types)
}

func TestIngestConsumer_RetriesWhileQueueFull(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 7, Value: []byte(`{"logs":"line"}`)},
	}}
	submitter := &fakeSubmitter{errs: []error{service.ErrQueueFull, service.ErrQueueFull}}
	consumer := newIngestConsumer(reader, "raw-logs", submitter, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Run(ctx) }()

	require.Eventually(t, func() bool { return len(reader.Committed()) == 1 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, submitter.Calls())
}

func TestIngestConsumer_PermanentRejectionIsCommitted(t *testing.T) {
	reader := &fakeReader{}
	submitter := &fakeSubmitter{always: errors.New("analysis service submit_logs failed")}
	consumer := newIngestConsumer(reader, "raw-logs", submitter, testLogger())

	err := consumer.handle(context.Background(), kafka.Message{Offset: 4, Value: []byte(`{"logs":"line"}`)})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, reader.Committed())
	assert.Equal(t, 1, submitter.Calls())
}

func TestIngestConsumer_ShutdownLeavesMessageUncommitted(t *testing.T) {
	reader := &fakeReader{}
	submitter := &fakeSubmitter{always: service.ErrQueueFull}
	consumer := newIngestConsumer(reader, "raw-logs", submitter, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := consumer.handle(ctx, kafka.Message{Offset: 9, Value: []byte(`{"logs":"line"}`)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, reader.Committed())
}

func TestIngestConsumer_StopsWhenClosed(t *testing.T) {
	reader := &fakeReader{}
	consumer := newIngestConsumer(reader, "raw-logs", &fakeSubmitter{}, testLogger())
	require.NoError(t, consumer.Close())

	assert.NoError(t, consumer.Run(context.Background()))
}
