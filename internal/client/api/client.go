package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/logger"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the task service.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Logger     *logger.Logger
	HTTPClient *http.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api base url is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{baseURL: base, httpClient: httpClient, logger: log}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type taskPayload struct {
	Task   *string            `json:"task,omitempty"`
	Status *domain.TaskStatus `json:"status,omitempty"`
}

type errorPayload struct {
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task. An empty status lets the server pick its default.
func (c *Client) CreateTask(ctx context.Context, text string, status domain.TaskStatus) (*domain.Task, error) {
	payload := taskPayload{Task: &text}
	if status != "" {
		payload.Status = &status
	}
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/todos", payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, text *string, status *domain.TaskStatus) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), taskPayload{Task: text, Status: status}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	return c.UpdateTask(ctx, id, nil, &status)
}

func (c *Client) UpdateText(ctx context.Context, id, text string) (*domain.Task, error) {
	return c.UpdateTask(ctx, id, &text, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
}

// Ping fetches the greeting served at the root path.
func (c *Client) Ping(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode}
	}
	return string(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	start := time.Now()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("api_network_error", "method", method, "path", path, "error", err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debugw("api_response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"resp_bytes", len(respBody),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload errorPayload
		if json.Unmarshal(respBody, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.Details = payload.Details
		}
		c.logger.Warnw("api_bad_status", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.Warnw("api_parse_error", "method", method, "path", path, "error", err)
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
