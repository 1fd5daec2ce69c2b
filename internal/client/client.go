// Package client is a small HTTP client for the loglens analysis API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/api"
	"github.com/phrazzld/loglens/internal/api/shared"
	"github.com/sethvargo/go-retry"
)

// Defaults applied by New
const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Client talks to a loglens server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// SubmitRetries is how many times a submission rejected with
	// 503 Service Unavailable is retried.
	SubmitRetries uint64

	// RetryDelay is the minimum wait between submission attempts.
	// Defaults to one second.
	RetryDelay time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	TraceID    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error: status=%d", e.StatusCode)
	if e.Message != "" {
		msg += " message=" + strconv.Quote(e.Message)
	}
	if e.TraceID != "" {
		msg += " trace_id=" + e.TraceID
	}
	return msg
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Submit queues logs for analysis. Load-shedding rejections are retried up
// to SubmitRetries times, waiting at least as long as the server asks.
func (c *Client) Submit(ctx context.Context, logs, analysisType string) (api.SubmitLogsResponse, error) {
	body := api.SubmitLogsRequest{Logs: logs, Type: analysisType}

	delay := c.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	var resp api.SubmitLogsResponse
	b := retry.WithMaxRetries(c.SubmitRetries, retry.NewConstant(delay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodPost, api.SubmitPath, body, &resp)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
			// Honour a Retry-After longer than our own delay
			if extra := apiErr.RetryAfter - delay; extra > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(extra):
				}
			}
			return retry.RetryableError(err)
		}
		return err
	})
	return resp, err
}

// Result fetches the current record for a task.
func (c *Client) Result(ctx context.Context, taskID uuid.UUID) (api.AnalysisResultResponse, error) {
	var resp api.AnalysisResultResponse
	endpoint := "/api/log/result/" + url.PathEscape(taskID.String())
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Health fetches the server's health and queue load.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var resp api.HealthResponse
	err := c.do(ctx, http.MethodGet, api.HealthPath, nil, &resp)
	return resp, err
}

// Wait polls a task until it reaches a terminal status or ctx is done.
// onUpdate, if not nil, is called whenever the status changes.
func (c *Client) Wait(
	ctx context.Context,
	taskID uuid.UUID,
	interval time.Duration,
	onUpdate func(api.AnalysisResultResponse),
) (api.AnalysisResultResponse, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last api.AnalysisResultResponse
	for {
		res, err := c.Result(ctx, taskID)
		if err != nil {
			return last, err
		}
		if res.Status != last.Status && onUpdate != nil {
			onUpdate(res)
		}
		last = res
		if res.Status.IsTerminal() {
			return res, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base()+endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		TraceID:    resp.Header.Get(shared.TraceIDHeader),
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var errResp shared.ErrorResponse
	if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
		if errResp.TraceID != "" {
			apiErr.TraceID = errResp.TraceID
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
