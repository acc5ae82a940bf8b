package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/task"
)

// FetchError reports a failed read of the task collection: a non-success
// status or a transport failure.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch tasks: %v", e.Err)
	}
	return fmt.Sprintf("fetch tasks: unexpected status %d", e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError reports a failed create, update or delete.
type WriteError struct {
	Op     string
	Status int
	Err    error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s task: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s task: unexpected status %d", e.Op, e.Status)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Draft is the body of a create request. The server assigns id and
// created_at; the caller must reload the list to observe them.
type Draft struct {
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Priority  string  `json:"priority"`
	DueDate   *string `json:"due_date"`
}

// Patch carries a partial update. Only non-nil fields are sent, so the
// server changes nothing else.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	DueDate   *string `json:"due_date,omitempty"`
}

// Client wraps the four-verb HTTP contract of the remote task store.
// Methods return typed outcomes and never panic past this boundary.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

func NewClient(base string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// List fetches the full collection. A body that is not a JSON array is
// treated as an empty list rather than an error; the condition is logged
// so the leniency stays observable.
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("list request failed", zap.Error(err))
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		c.logger.Error("list rejected", zap.Int("status", resp.StatusCode))
		return nil, &FetchError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	var tasks []task.Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		c.logger.Warn("list body is not a task array, treating as empty",
			zap.Int("bytes", len(body)))
		return []task.Task{}, nil
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, draft Draft) error {
	return c.write(ctx, "create", http.MethodPost, c.base, draft, success)
}

func (c *Client) Update(ctx context.Context, id string, patch Patch) error {
	return c.write(ctx, "update", http.MethodPut, c.base+"/"+id, patch, success)
}

// Delete tolerates 404: deleting an already-gone task counts as done,
// and the caller reloads the list afterward either way.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.write(ctx, "delete", http.MethodDelete, c.base+"/"+id, nil, func(status int) bool {
		return success(status) || status == http.StatusNotFound
	})
}

func (c *Client) write(ctx context.Context, op, method, url string, body any, accept func(int) bool) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &WriteError{Op: op, Err: err}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return &WriteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("write request failed", zap.String("op", op), zap.Error(err))
		return &WriteError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	// Response bodies are ignored: the caller observes the result of a
	// write by reloading the whole list.
	io.Copy(io.Discard, resp.Body)

	if !accept(resp.StatusCode) {
		c.logger.Error("write rejected", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return &WriteError{Op: op, Status: resp.StatusCode}
	}
	return nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}
