package api

import (
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/loglens/internal/api/shared"
	"github.com/phrazzld/loglens/internal/domain"
	"github.com/phrazzld/loglens/internal/service"
)

// Route paths
const (
	SubmitPath = "/api/log/add-task"
	ResultPath = "/api/log/result/{taskId}"
	HealthPath = "/health"

	resultPathPrefix = "/api/log/result"
)

// LogHandlerConfig holds limits for the log endpoints.
type LogHandlerConfig struct {
	// MaxBodyBytes bounds the JSON request body. Zero disables the check;
	// the service still enforces its own limit on the log text.
	MaxBodyBytes int64
}

// LogHandler handles log submission and result HTTP requests
type LogHandler struct {
	service      service.AnalysisService
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(svc service.AnalysisService, config LogHandlerConfig, logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{
		service:      svc,
		maxBodyBytes: config.MaxBodyBytes,
		logger:       logger.With("component", "log_handler"),
	}
}

// RegisterRoutes mounts the handler's endpoints on r.
func (h *LogHandler) RegisterRoutes(r chi.Router) {
	r.Post(SubmitPath, h.SubmitLogs)
	r.Get(ResultPath, h.GetResult)
	r.Get(HealthPath, h.Health)
}

// SubmitLogs handles POST /api/log/add-task requests
func (h *LogHandler) SubmitLogs(w http.ResponseWriter, r *http.Request) {
	var req SubmitLogsRequest
	if err := shared.DecodeJSONWithLimit(w, r, &req, h.maxBodyBytes); err != nil {
		if errors.Is(err, shared.ErrBodyTooLarge) {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.service.SubmitLogs(r.Context(), req.Logs, domain.AnalysisType(req.Type))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to queue analysis")
		return
	}

	h.logger.InfoContext(r.Context(), "analysis task accepted",
		"task_id", result.TaskID,
		"analysis_type", result.Type,
		"log_bytes", len(req.Logs))

	// 202 Accepted since analysis happens asynchronously
	w.Header().Set("Location", path.Join(resultPathPrefix, result.TaskID.String()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, submitResponse(result))
}

// GetResult handles GET /api/log/result/{taskId} requests
func (h *LogHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "taskId")
	if err != nil {
		h.logger.DebugContext(r.Context(), "invalid task id",
			"value", chi.URLParam(r, "taskId"))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	result, err := h.service.GetResult(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get analysis result")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resultToResponse(result))
}

// Health handles GET /health requests
func (h *LogHandler) Health(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.TaskCount(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read pipeline state")
		return
	}

	stats := h.service.Stats()
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:   "ok",
		QueueLen: stats.Len,
		QueueCap: stats.Cap,
		Workers:  stats.Workers,
		Tasks:    tasks,
	})
}
