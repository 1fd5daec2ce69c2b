package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/loglens/internal/domain"
)

// LocalAnalyzer summarizes logs without calling any external service.
// Its output is deterministic for a given input.
type LocalAnalyzer struct {
	prompts *PromptBuilder
	logger  *slog.Logger
}

var _ Analyzer = (*LocalAnalyzer)(nil)

// NewLocalAnalyzer creates a LocalAnalyzer that quotes at most maxEntries entries.
func NewLocalAnalyzer(maxEntries int, logger *slog.Logger) (*LocalAnalyzer, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}

	prompts, err := NewPromptBuilder("", maxEntries)
	if err != nil {
		return nil, err
	}

	return &LocalAnalyzer{
		prompts: prompts,
		logger:  logger.With("component", "local_analyzer"),
	}, nil
}

// AnalyzeLogs implements Analyzer.
func (a *LocalAnalyzer) AnalyzeLogs(
	ctx context.Context,
	logs *domain.ParsedLogs,
	analysisType domain.AnalysisType,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := a.prompts.Data(logs, analysisType)
	if err != nil {
		return "", err
	}

	severity := "Low"
	switch {
	case logs.Count(domain.LogLevelCritical) > 0:
		severity = "Critical"
	case logs.Count(domain.LogLevelError) > 0:
		severity = "High"
	case logs.Count(domain.LogLevelWarning) > 0:
		severity = "Medium"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d entries (%d critical, %d errors, %d warnings).",
		data.TotalEntries,
		logs.Count(domain.LogLevelCritical),
		logs.Count(domain.LogLevelError),
		logs.Count(domain.LogLevelWarning))

	issues := mainIssues(data.Entries, 3)
	if len(issues) > 0 {
		fmt.Fprintf(&b, " Main issues: %s.", strings.Join(issues, "; "))
	} else {
		b.WriteString(" Main issues: none found.")
	}

	fmt.Fprintf(&b, " Severity: %s.", severity)
	fmt.Fprintf(&b, " Recommendations: %s", recommendation(severity, analysisType))

	a.logger.DebugContext(ctx, "local analysis finished",
		"analysis_type", data.Type,
		"total_entries", data.TotalEntries,
		"severity", severity)

	return b.String(), nil
}

// mainIssues picks distinct messages of Warning or above, in the given order.
func mainIssues(entries []domain.LogEntry, limit int) []string {
	seen := make(map[string]struct{})
	issues := make([]string, 0, limit)
	for _, entry := range entries {
		if len(issues) == limit {
			break
		}
		if !entry.Level.AtLeast(domain.LogLevelWarning) {
			continue
		}
		if _, dup := seen[entry.Message]; dup {
			continue
		}
		seen[entry.Message] = struct{}{}
		issues = append(issues, fmt.Sprintf("%s: %s", entry.Level, entry.Message))
	}
	return issues
}

func recommendation(severity string, analysisType domain.AnalysisType) string {
	if analysisType == domain.AnalysisTypePerformance {
		return "profile the slowest operations and review timeouts and retry budgets."
	}
	switch severity {
	case "Critical":
		return "investigate the critical entries immediately and verify data integrity."
	case "High":
		return "address the recurring errors and add alerting for them."
	case "Medium":
		return "review the warnings before they escalate."
	}
	return "no action required."
}
