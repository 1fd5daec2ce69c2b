package analysis

import (
	"context"

	"github.com/phrazzld/loglens/internal/domain"
)

// Analyzer turns parsed logs into a human-readable summary.
// This interface is the boundary between the pipeline and external
// AI/LLM services.
type Analyzer interface {
	// AnalyzeLogs summarizes the given logs with the focus selected by analysisType.
	// Implementations must return promptly once ctx is done.
	AnalyzeLogs(ctx context.Context, logs *domain.ParsedLogs, analysisType domain.AnalysisType) (string, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, logs *domain.ParsedLogs, analysisType domain.AnalysisType) (string, error)

// AnalyzeLogs calls f(ctx, logs, analysisType).
func (f AnalyzerFunc) AnalyzeLogs(
	ctx context.Context,
	logs *domain.ParsedLogs,
	analysisType domain.AnalysisType,
) (string, error) {
	return f(ctx, logs, analysisType)
}
