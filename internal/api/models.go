package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/domain"
)

// SubmitLogsRequest defines the payload for POST /api/log/add-task.
type SubmitLogsRequest struct {
	// Logs is the raw newline-delimited log text
	Logs string `json:"logs" validate:"required"`

	// Type selects the analysis focus; empty means "full".
	// Values are matched case-insensitively by the service.
	Type string `json:"type" validate:"omitempty,max=32"`
}

// SubmitLogsResponse is returned with 202 Accepted once a task is queued.
type SubmitLogsResponse struct {
	TaskID  uuid.UUID             `json:"task_id" yaml:"task_id"`
	Status  domain.AnalysisStatus `json:"status" yaml:"status"`
	Created time.Time             `json:"created" yaml:"created"`
}

// MetricsResponse carries the counts of a completed analysis.
type MetricsResponse struct {
	TotalEntries int `json:"totalEntries" yaml:"totalEntries"`
	Errors       int `json:"errors" yaml:"errors"`
	Warnings     int `json:"warnings" yaml:"warnings"`
	Critical     int `json:"critical" yaml:"critical"`
}

// AnalysisResultResponse is the public view of a task record.
type AnalysisResultResponse struct {
	TaskID       uuid.UUID             `json:"task_id" yaml:"task_id"`
	Status       domain.AnalysisStatus `json:"status" yaml:"status"`
	Type         domain.AnalysisType   `json:"type" yaml:"type"`
	Summary      string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	Metrics      *MetricsResponse      `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Created      time.Time             `json:"created" yaml:"created"`
	Completed    *time.Time            `json:"completed,omitempty" yaml:"completed,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// HealthResponse reports liveness plus the current pipeline load.
type HealthResponse struct {
	Status   string `json:"status" yaml:"status"`
	QueueLen int    `json:"queue_len" yaml:"queue_len"`
	QueueCap int    `json:"queue_cap" yaml:"queue_cap"`
	Workers  int    `json:"workers" yaml:"workers"`
	Tasks    int    `json:"tasks" yaml:"tasks"`
}

func submitResponse(result *domain.AnalysisResult) SubmitLogsResponse {
	return SubmitLogsResponse{
		TaskID:  result.TaskID,
		Status:  result.Status,
		Created: result.Created,
	}
}

func resultToResponse(result *domain.AnalysisResult) AnalysisResultResponse {
	resp := AnalysisResultResponse{
		TaskID:       result.TaskID,
		Status:       result.Status,
		Type:         result.Type,
		Summary:      result.Summary,
		Created:      result.Created,
		Completed:    result.Completed,
		ErrorMessage: result.ErrorMessage,
	}
	if result.Metrics != nil {
		resp.Metrics = &MetricsResponse{
			TotalEntries: result.Metrics.TotalEntries,
			Errors:       result.Metrics.Errors,
			Warnings:     result.Metrics.Warnings,
			Critical:     result.Metrics.Critical,
		}
	}
	return resp
}
