package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Task   TaskConfig   `mapstructure:"task"   validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm"    validate:"required"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds"  validate:"gte=1"`
}

// ShutdownTimeout returns how long graceful shutdown may take.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-request handler timeout.
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// TaskConfig contains settings for the analysis pipeline: queue, workers and retention.
type TaskConfig struct {
	WorkerCount                   int   `mapstructure:"worker_count"                     validate:"gte=1,lte=256"`
	QueueSize                     int   `mapstructure:"queue_size"                       validate:"gte=1"`
	EnqueueTimeoutMS              int   `mapstructure:"enqueue_timeout_ms"               validate:"gte=0"`
	AnalysisTimeoutSeconds        int   `mapstructure:"analysis_timeout_seconds"         validate:"gte=1"`
	MaxLogBytes                   int64 `mapstructure:"max_log_bytes"                    validate:"gte=1"`
	RetentionMinutes              int   `mapstructure:"retention_minutes"                validate:"gte=0"`
	RetentionCheckIntervalMinutes int   `mapstructure:"retention_check_interval_minutes" validate:"gte=1"`
}

// EnqueueTimeout returns how long a submission may wait for queue space.
// Zero means submissions are rejected immediately when the queue is full.
func (c TaskConfig) EnqueueTimeout() time.Duration {
	return time.Duration(c.EnqueueTimeoutMS) * time.Millisecond
}

// AnalysisTimeout returns the upper bound for a single analysis call.
func (c TaskConfig) AnalysisTimeout() time.Duration {
	return time.Duration(c.AnalysisTimeoutSeconds) * time.Second
}

// Retention returns how long terminal records are kept. Zero keeps them forever.
func (c TaskConfig) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// RetentionCheckInterval returns how often expired records are pruned.
func (c TaskConfig) RetentionCheckInterval() time.Duration {
	return time.Duration(c.RetentionCheckIntervalMinutes) * time.Minute
}

// Analyzer providers
const (
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider              string `mapstructure:"provider"                validate:"required,oneof=gemini local"`
	GeminiAPIKey          string `mapstructure:"gemini_api_key"          validate:"required_if=Provider gemini"`
	ModelName             string `mapstructure:"model_name"              validate:"required"`
	PromptTemplatePath    string `mapstructure:"prompt_template_path"`
	MaxRetries            int    `mapstructure:"max_retries"             validate:"gte=0,lte=10"`
	RetryDelaySeconds     int    `mapstructure:"retry_delay_seconds"     validate:"gte=1,lte=60"`
	MaxConcurrentRequests int    `mapstructure:"max_concurrent_requests" validate:"gte=1"`
	MaxPromptEntries      int    `mapstructure:"max_prompt_entries"      validate:"gte=1"`
	MaxOutputTokens       int    `mapstructure:"max_output_tokens"       validate:"gte=1"`
}

// RetryDelay returns the base delay between retries of transient failures.
func (c LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// KafkaConfig contains settings for the optional Kafka event publisher
// and ingest consumer.
type KafkaConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"      validate:"required_if=Enabled true,dive,hostname_port"`
	EventsTopic string   `mapstructure:"events_topic" validate:"required_if=Enabled true"`
	IngestTopic string   `mapstructure:"ingest_topic"`
	GroupID     string   `mapstructure:"group_id"     validate:"required_with=IngestTopic"`
}
