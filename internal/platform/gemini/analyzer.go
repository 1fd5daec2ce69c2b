package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/loglens/internal/analysis"
	"github.com/phrazzld/loglens/internal/config"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
	maxRetryDelay     = 30 * time.Second
	retryJitterPct    = 25
	temperature       = 0.2
)

// modelService is the subset of *genai.Models used by the Analyzer.
type modelService interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Analyzer implements analysis.Analyzer using Google's Gemini API.
type Analyzer struct {
	logger          *slog.Logger
	models          modelService
	prompts         *analysis.PromptBuilder
	model           string
	maxRetries      int
	retryDelay      time.Duration
	maxOutputTokens int32
}

var _ analysis.Analyzer = (*Analyzer)(nil)

// NewAnalyzer creates a Gemini-backed Analyzer from the LLM configuration.
func NewAnalyzer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Analyzer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", analysis.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", analysis.ErrInvalidConfig, err)
	}

	return newAnalyzer(client.Models, logger, cfg)
}

// newAnalyzer wires an Analyzer around any model service.
func newAnalyzer(models modelService, logger *slog.Logger, cfg config.LLMConfig) (*Analyzer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if models == nil {
		return nil, fmt.Errorf("%w: model service cannot be nil", analysis.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", analysis.ErrInvalidConfig)
	}

	prompts, err := analysis.NewPromptBuilder(cfg.PromptTemplatePath, cfg.MaxPromptEntries)
	if err != nil {
		return nil, err
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using default", "max_retries", defaultMaxRetries)
		maxRetries = defaultMaxRetries
	}

	retryDelay := cfg.RetryDelay()
	if retryDelay <= 0 {
		logger.Warn("invalid retry delay value, using default", "retry_delay", defaultRetryDelay.String())
		retryDelay = defaultRetryDelay
	}

	maxOutputTokens := cfg.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = 1000
	}

	return &Analyzer{
		logger:          logger.With("component", "gemini_analyzer", "model", cfg.ModelName),
		models:          models,
		prompts:         prompts,
		model:           cfg.ModelName,
		maxRetries:      maxRetries,
		retryDelay:      retryDelay,
		maxOutputTokens: int32(maxOutputTokens),
	}, nil
}

// AnalyzeLogs implements analysis.Analyzer.
func (a *Analyzer) AnalyzeLogs(
	ctx context.Context,
	logs *domain.ParsedLogs,
	analysisType domain.AnalysisType,
) (string, error) {
	if logs == nil || logs.Total() == 0 {
		return "", analysis.ErrEmptyLogs
	}

	prompt, err := a.prompts.Build(logs, analysisType)
	if err != nil {
		return "", err
	}

	a.logger.DebugContext(ctx, "prompt generated",
		"prompt_length", len(prompt),
		"analysis_type", analysisType,
		"total_entries", logs.Total())

	var summary string
	attempt := 0

	err = retry.Do(ctx, a.backoff(), func(ctx context.Context) error {
		attempt++
		a.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attempt,
			"max_attempts", a.maxRetries+1)

		text, callErr := a.generate(ctx, prompt)
		if callErr == nil {
			summary = text
			return nil
		}

		if isTransient(ctx, callErr) {
			a.logger.WarnContext(ctx, "transient Gemini API error",
				"attempt", attempt,
				"error", callErr)
			return retry.RetryableError(callErr)
		}

		a.logger.WarnContext(ctx, "permanent error occurred, not retrying",
			"attempt", attempt,
			"error", callErr)
		return callErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, analysis.ErrTransientFailure) {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)", err, a.maxRetries)
		}
		return "", err
	}

	a.logger.InfoContext(ctx, "Gemini API call successful",
		"attempt", attempt,
		"summary_length", len(summary))
	return summary, nil
}

func (a *Analyzer) backoff() retry.Backoff {
	b := retry.NewExponential(a.retryDelay)
	b = retry.WithCappedDuration(maxRetryDelay, b)
	b = retry.WithJitterPercent(retryJitterPct, b)
	return retry.WithMaxRetries(uint64(a.maxRetries), b)
}

// generate makes one API call and classifies the response.
func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.models.GenerateContent(ctx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: a.maxOutputTokens,
		Temperature:     genai.Ptr[float32](temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", analysis.ErrTransientFailure, err)
	}

	return extractText(resp)
}

// extractText returns the text of the first candidate or a permanent error.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", analysis.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", analysis.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", analysis.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", analysis.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", analysis.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", analysis.ErrInvalidResponse)
	}
	return text, nil
}

// isTransient reports whether err is worth retrying.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, analysis.ErrContentBlocked) || errors.Is(err, analysis.ErrInvalidResponse) {
		return false
	}
	return errors.Is(err, analysis.ErrTransientFailure)
}
