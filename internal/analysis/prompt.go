package analysis

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/phrazzld/loglens/internal/domain"
)

// DefaultMaxPromptEntries bounds how many individual entries are quoted in a prompt.
const DefaultMaxPromptEntries = 50

//go:embed templates/analysis_prompt.tmpl
var defaultPromptTemplate string

const performanceFocus = "Focus on performance: latency, timeouts, retries, " +
	"resource exhaustion and throughput degradation."

const errorsOnlyFocus = "Focus only on Error and Critical entries and their likely root causes."

// LevelCount is one row of the per-level breakdown in a prompt.
type LevelCount struct {
	Level domain.LogLevel
	Count int
}

// PromptData is the data passed to the prompt template.
type PromptData struct {
	Type         domain.AnalysisType
	TotalEntries int
	Counts       []LevelCount
	Focus        string
	Entries      []domain.LogEntry
	Omitted      int
}

// PromptBuilder renders analysis prompts from a text/template.
type PromptBuilder struct {
	tmpl       *template.Template
	maxEntries int
}

// NewPromptBuilder creates a PromptBuilder. An empty templatePath selects the
// built-in template; maxEntries <= 0 selects DefaultMaxPromptEntries.
func NewPromptBuilder(templatePath string, maxEntries int) (*PromptBuilder, error) {
	content := defaultPromptTemplate
	name := "analysis_prompt"

	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, templatePath, err)
		}
		content = string(raw)
		name = templatePath
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	if maxEntries <= 0 {
		maxEntries = DefaultMaxPromptEntries
	}

	return &PromptBuilder{tmpl: tmpl, maxEntries: maxEntries}, nil
}

// Data assembles the template data for logs. Entries are selected by analysis
// type: errors_only keeps Error and above, performance keeps input order and
// full puts the most severe entries first.
func (b *PromptBuilder) Data(logs *domain.ParsedLogs, analysisType domain.AnalysisType) (PromptData, error) {
	if logs == nil || logs.Total() == 0 {
		return PromptData{}, ErrEmptyLogs
	}
	if analysisType == "" {
		analysisType = domain.AnalysisTypeFull
	}

	data := PromptData{
		Type:         analysisType,
		TotalEntries: logs.Total(),
	}
	for _, level := range domain.AllLogLevels() {
		if count := logs.Count(level); count > 0 {
			data.Counts = append(data.Counts, LevelCount{Level: level, Count: count})
		}
	}

	var candidates []domain.LogEntry
	switch analysisType {
	case domain.AnalysisTypeErrorsOnly:
		data.Focus = errorsOnlyFocus
		candidates = logs.Filter(domain.LogLevelError)
	case domain.AnalysisTypePerformance:
		data.Focus = performanceFocus
		candidates = logs.Entries
	case domain.AnalysisTypeFull:
		candidates = logs.MostSevere(-1)
	default:
		return PromptData{}, fmt.Errorf("%w: %q", domain.ErrInvalidAnalysisType, analysisType)
	}

	if len(candidates) > b.maxEntries {
		data.Entries = candidates[:b.maxEntries]
		data.Omitted = len(candidates) - b.maxEntries
	} else {
		data.Entries = candidates
	}

	return data, nil
}

// Build renders the prompt for logs.
func (b *PromptBuilder) Build(logs *domain.ParsedLogs, analysisType domain.AnalysisType) (string, error) {
	data, err := b.Data(logs, analysisType)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
