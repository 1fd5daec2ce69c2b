package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/loglens/internal/analysis"
	"github.com/phrazzld/loglens/internal/domain"
)

// MockAnalyzer implements analysis.Analyzer for testing
type MockAnalyzer struct {
	// Custom behavior function
	AnalyzeLogsFn func(ctx context.Context, logs *domain.ParsedLogs, analysisType domain.AnalysisType) (string, error)

	// Default response values
	Summary string
	Err     error

	mu    sync.Mutex
	calls []AnalyzeLogsCall
}

// AnalyzeLogsCall records the arguments of one AnalyzeLogs call.
type AnalyzeLogsCall struct {
	Logs         *domain.ParsedLogs
	AnalysisType domain.AnalysisType
}

var _ analysis.Analyzer = (*MockAnalyzer)(nil)

// NewMockAnalyzer returns a MockAnalyzer that always answers with summary.
func NewMockAnalyzer(summary string) *MockAnalyzer {
	return &MockAnalyzer{Summary: summary}
}

// NewFailingAnalyzer returns a MockAnalyzer that always fails with err.
func NewFailingAnalyzer(err error) *MockAnalyzer {
	return &MockAnalyzer{Err: err}
}

// NewBlockingAnalyzer returns a MockAnalyzer that blocks until its context is
// done and closes started when the first call begins.
func NewBlockingAnalyzer(started chan<- struct{}) *MockAnalyzer {
	var once sync.Once
	return &MockAnalyzer{
		AnalyzeLogsFn: func(ctx context.Context, _ *domain.ParsedLogs, _ domain.AnalysisType) (string, error) {
			if started != nil {
				once.Do(func() { close(started) })
			}
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// AnalyzeLogs implements the analysis.Analyzer interface
func (m *MockAnalyzer) AnalyzeLogs(
	ctx context.Context,
	logs *domain.ParsedLogs,
	analysisType domain.AnalysisType,
) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, AnalyzeLogsCall{Logs: logs, AnalysisType: analysisType})
	m.mu.Unlock()

	if m.AnalyzeLogsFn != nil {
		return m.AnalyzeLogsFn(ctx, logs, analysisType)
	}
	return m.Summary, m.Err
}

// CallCount returns how many times AnalyzeLogs was called.
func (m *MockAnalyzer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockAnalyzer) Calls() []AnalyzeLogsCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AnalyzeLogsCall(nil), m.calls...)
}
