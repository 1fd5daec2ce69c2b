package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/loglens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_CapsConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight, peak int32
	release := make(chan struct{})

	slow := AnalyzerFunc(func(ctx context.Context, _ *domain.ParsedLogs, _ domain.AnalysisType) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&inFlight, -1)
		return "ok", nil
	})

	limiter := NewLimiter(slow, 2, setupTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summary, err := limiter.AnalyzeLogs(context.Background(), domain.NewParsedLogs(), domain.AnalysisTypeFull)
			assert.NoError(t, err)
			assert.Equal(t, "ok", summary)
		}()
	}

	// Give the callers time to pile up behind the limit.
	require.Eventually(t, func() bool { return atomic.LoadInt32(&inFlight) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inFlight))

	close(release)
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	defer close(block)
	started := make(chan struct{})

	blocking := AnalyzerFunc(func(ctx context.Context, _ *domain.ParsedLogs, _ domain.AnalysisType) (string, error) {
		close(started)
		<-block
		return "", nil
	})

	limiter := NewLimiter(blocking, 1, setupTestLogger())

	go func() {
		_, _ = limiter.AnalyzeLogs(context.Background(), domain.NewParsedLogs(), domain.AnalysisTypeFull)
	}()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first call never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := limiter.AnalyzeLogs(ctx, domain.NewParsedLogs(), domain.AnalysisTypeFull)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewLimiter_DefaultLimit(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(AnalyzerFunc(nil), 0, setupTestLogger())
	assert.Equal(t, int64(DefaultMaxConcurrentRequests), limiter.limit)
}
