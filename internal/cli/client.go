package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

const idempotencyHeader = "Idempotency-Key"

// Client talks to the taskmatch HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// TaskInput is the body of POST /tasks.
type TaskInput struct {
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	AssigneeID     string  `json:"assignee_id"`
	Category       string  `json:"category,omitempty"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimated_hours"`
	DueDate        string  `json:"due_date"`
}

// EventInput is the body of POST /events.
type EventInput struct {
	EventID  string `json:"event_id"`
	TaskID   string `json:"task_id"`
	Action   string `json:"action"`
	Progress int    `json:"progress,omitempty"`
	TS       string `json:"ts,omitempty"`
}

// Ack is the reply to POST /events.
type Ack struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type riskInput struct {
	EmployeeID     string  `json:"employee_id"`
	EstimatedHours float64 `json:"estimated_hours"`
	DueDate        string  `json:"due_date"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Employees lists the roster.
func (c *Client) Employees(ctx context.Context) ([]model.Employee, error) {
	var out []model.Employee
	_, err := c.do(ctx, http.MethodGet, "/employees", nil, nil, nil, &out)
	return out, err
}

// Employee fetches one roster entry.
func (c *Client) Employee(ctx context.Context, id string) (model.Employee, error) {
	var out model.Employee
	_, err := c.do(ctx, http.MethodGet, "/employees/"+url.PathEscape(id), nil, nil, nil, &out)
	return out, err
}

// Recommend ranks candidates. A zero limit leaves the server default.
func (c *Client) Recommend(ctx context.Context, category, priority string, hours float64, limit int) ([]types.Recommendation, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	q.Set("priority", priority)
	q.Set("estimated_hours", strconv.FormatFloat(hours, 'f', -1, 64))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []types.Recommendation
	_, err := c.do(ctx, http.MethodGet, "/recommendations", q, nil, nil, &out)
	return out, err
}

// Risk assesses assigning hours of work due at due to an employee.
func (c *Client) Risk(ctx context.Context, employeeID string, hours float64, due string) (types.RiskAssessment, error) {
	var out types.RiskAssessment
	_, err := c.do(ctx, http.MethodPost, "/risk", nil, nil,
		riskInput{EmployeeID: employeeID, EstimatedHours: hours, DueDate: due}, &out)
	return out, err
}

// Team fetches team statistics.
func (c *Client) Team(ctx context.Context) (types.TeamStats, error) {
	var out types.TeamStats
	_, err := c.do(ctx, http.MethodGet, "/team", nil, nil, nil, &out)
	return out, err
}

// Tasks lists tasks, optionally for one assignee.
func (c *Client) Tasks(ctx context.Context, assignee string) ([]model.Task, error) {
	q := url.Values{}
	if assignee != "" {
		q.Set("assignee", assignee)
	}
	var out []model.Task
	_, err := c.do(ctx, http.MethodGet, "/tasks", q, nil, nil, &out)
	return out, err
}

// Task fetches one task.
func (c *Client) Task(ctx context.Context, id string) (model.Task, error) {
	var out model.Task
	_, err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, nil, &out)
	return out, err
}

// CreateTask assigns a task. created is false when the server replayed key.
func (c *Client) CreateTask(ctx context.Context, key string, in TaskInput) (task model.Task, created bool, err error) {
	header := http.Header{}
	if key != "" {
		header.Set(idempotencyHeader, key)
	}
	status, err := c.do(ctx, http.MethodPost, "/tasks", nil, header, in, &task)
	return task, status == http.StatusCreated, err
}

// Command applies start, pause, review or complete.
func (c *Client) Command(ctx context.Context, id, action string) (model.Task, error) {
	var out model.Task
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/"+url.PathEscape(action), nil, nil, nil, &out)
	return out, err
}

// SetProgress records task progress.
func (c *Client) SetProgress(ctx context.Context, id string, progress int) (model.Task, error) {
	var out model.Task
	_, err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id)+"/progress", nil, nil,
		map[string]int{"progress": progress}, &out)
	return out, err
}

// Analytics fetches schedule analytics for a task.
func (c *Client) Analytics(ctx context.Context, id string) (types.ProgressAnalytics, error) {
	var out types.ProgressAnalytics
	_, err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id)+"/analytics", nil, nil, nil, &out)
	return out, err
}

// PostEvent queues a lifecycle event.
func (c *Client) PostEvent(ctx context.Context, ev EventInput) (Ack, error) {
	var out Ack
	_, err := c.do(ctx, http.MethodPost, "/events", nil, nil, ev, &out)
	return out, err
}

// Deadline asks for a suggested due date.
func (c *Client) Deadline(ctx context.Context, hours float64, category, complexity string) (types.DeadlineSuggestion, error) {
	q := url.Values{}
	q.Set("estimated_hours", strconv.FormatFloat(hours, 'f', -1, 64))
	if category != "" {
		q.Set("category", category)
	}
	if complexity != "" {
		q.Set("complexity", complexity)
	}
	var out types.DeadlineSuggestion
	_, err := c.do(ctx, http.MethodGet, "/planning/deadline", q, nil, nil, &out)
	return out, err
}

// Stats fetches the service counters.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	_, err := c.do(ctx, http.MethodGet, "/stats", nil, nil, nil, &out)
	return out, err
}

// do sends one request and decodes a 2xx JSON reply into out.
// Non-2xx replies come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, header http.Header, body, out any) (int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("%w: encode body: %w", ErrRequest, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read body: %w", ErrResponse, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			apiErr.Code, apiErr.Message = eb.Code, eb.Message
		}
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decode %s: %w", ErrResponse, path, err)
		}
	}
	return resp.StatusCode, nil
}
