package analysis

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/parser"
	"github.com/phrazzld/loglens/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLocalAnalyzer(t *testing.T) {
	t.Parallel()

	analyzer, err := NewLocalAnalyzer(0, setupTestLogger())
	require.NoError(t, err)
	logs := parser.Parse(testutils.SampleLogs())

	summary, err := analyzer.AnalyzeLogs(context.Background(), logs, domain.AnalysisTypeFull)
	require.NoError(t, err)

	assert.Contains(t, summary, "Analyzed 6 entries (1 critical, 2 errors, 1 warnings).")
	assert.Contains(t, summary, "Critical: Data corruption detected")
	assert.Contains(t, summary, "Severity: Critical.")

	again, err := analyzer.AnalyzeLogs(context.Background(), logs, domain.AnalysisTypeFull)
	require.NoError(t, err)
	assert.Equal(t, summary, again)
}

func TestLocalAnalyzer_Severity(t *testing.T) {
	t.Parallel()

	analyzer, err := NewLocalAnalyzer(0, setupTestLogger())
	require.NoError(t, err)

	tests := []struct {
		input string
		want  string
	}{
		{"[2025-11-23 10:15:30] INFO: started", "Severity: Low."},
		{"[2025-11-23 10:15:30] WARNING: slow disk", "Severity: Medium."},
		{"[2025-11-23 10:15:30] ERROR: request failed", "Severity: High."},
	}

	for _, tc := range tests {
		summary, err := analyzer.AnalyzeLogs(context.Background(), parser.Parse(tc.input), domain.AnalysisTypeFull)
		require.NoError(t, err)
		assert.Contains(t, summary, tc.want)
	}
}

func TestLocalAnalyzer_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewLocalAnalyzer(0, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	analyzer, err := NewLocalAnalyzer(0, setupTestLogger())
	require.NoError(t, err)

	_, err = analyzer.AnalyzeLogs(context.Background(), domain.NewParsedLogs(), domain.AnalysisTypeFull)
	assert.ErrorIs(t, err, ErrEmptyLogs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = analyzer.AnalyzeLogs(ctx, parser.Parse(testutils.SampleLogs()), domain.AnalysisTypeFull)
	assert.ErrorIs(t, err, context.Canceled)
}
