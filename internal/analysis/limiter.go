package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/loglens/internal/domain"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrentRequests is the number of analyses allowed in flight at once.
const DefaultMaxConcurrentRequests = 3

// Limiter wraps an Analyzer and caps how many calls run concurrently.
// Callers over the limit wait until a slot frees up or their context ends.
type Limiter struct {
	next   Analyzer
	sem    *semaphore.Weighted
	limit  int64
	logger *slog.Logger
}

var _ Analyzer = (*Limiter)(nil)

// NewLimiter creates a Limiter. A non-positive limit selects DefaultMaxConcurrentRequests.
func NewLimiter(next Analyzer, limit int, logger *slog.Logger) *Limiter {
	if limit <= 0 {
		limit = DefaultMaxConcurrentRequests
	}
	return &Limiter{
		next:   next,
		sem:    semaphore.NewWeighted(int64(limit)),
		limit:  int64(limit),
		logger: logger.With("component", "analysis_limiter"),
	}
}

// AnalyzeLogs implements Analyzer.
func (l *Limiter) AnalyzeLogs(
	ctx context.Context,
	logs *domain.ParsedLogs,
	analysisType domain.AnalysisType,
) (string, error) {
	if !l.sem.TryAcquire(1) {
		l.logger.DebugContext(ctx, "waiting for analysis slot", "limit", l.limit)
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("waiting for analysis slot: %w", err)
		}
	}
	defer l.sem.Release(1)

	return l.next.AnalyzeLogs(ctx, logs, analysisType)
}
