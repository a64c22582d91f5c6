// Package board talks to the Intranet task-board API: task creation and
// updates, task detail lookup, comments and column listings.
package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrTaskNotFound is returned when a task ID does not exist upstream.
var ErrTaskNotFound = errors.New("board: task not found")

// Task is a task record as the board returns it.
type Task struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status,omitempty"`
	Priority     string `json:"priority,omitempty"`
	AssignedUser string `json:"assigned_user,omitempty"`
	CreatedDate  string `json:"created_date,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	ColumnID     int    `json:"column_id,omitempty"`
}

// TaskResult is the board's single-task envelope.
type TaskResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

// CommentResult is the envelope returned after posting a comment.
type CommentResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

// ColumnPage is one page of tasks from a board column.
type ColumnPage struct {
	Success bool   `json:"success"`
	Data    []Task `json:"data"`
	Total   int    `json:"total"`
}

// SearchResult is a filtered task listing.
type SearchResult struct {
	Success bool   `json:"success"`
	Data    []Task `json:"data"`
	Total   int    `json:"total"`
}

// Stats aggregates board-wide task counters.
type Stats struct {
	TotalTasks              int     `json:"total_tareas"`
	CompletedTasks          int     `json:"tareas_completadas"`
	InProgressTasks         int     `json:"tareas_en_progreso"`
	PendingTasks            int     `json:"tareas_pendientes"`
	CompletionRate          float64 `json:"tasa_completacion"`
	AvgResolutionDays       float64 `json:"tiempo_promedio_resolucion_dias"`
	ActiveBoards            int     `json:"tableros_activos"`
	ActiveUsers             int     `json:"usuarios_activos"`
}

// Client wraps interactions with the Intranet board API.
type Client struct {
	baseURL    string
	session    string
	logger     *slog.Logger
	httpClient *http.Client
}

// NewClient constructs a new client. session is the serialized mibot_session
// header sent with every request.
func NewClient(baseURL, session string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		session: session,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "MCP-OnBotGo/1.0")
	req.Header.Set("mibot_session", c.session)
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return ErrTaskNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("board: %s %s returned status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("board: decode response: %w", err)
	}
	return nil
}

// CreateTask creates a new task on a board. The payload keys follow the
// board's own field names (name, description, projectuid, columnid, ...).
func (c *Client) CreateTask(ctx context.Context, task map[string]any) (*TaskResult, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("board: encode task: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/boards/task", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	var result TaskResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	c.logger.Info("task created", "name", task["name"])
	return &result, nil
}

// UpdateTask applies a partial update to an existing task.
func (c *Client) UpdateTask(ctx context.Context, taskID int, changes map[string]any) (*TaskResult, error) {
	payload, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("board: encode changes: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/api/v1/boards/task/"+strconv.Itoa(taskID), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	var result TaskResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	c.logger.Info("task updated", "task_id", taskID, "fields", len(changes))
	return &result, nil
}

// TaskDetail fetches the full detail of one task.
func (c *Client) TaskDetail(ctx context.Context, taskID int) (*TaskResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/boards/item/task?id="+strconv.Itoa(taskID), nil)
	if err != nil {
		return nil, err
	}
	var result TaskResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	if result.Data == nil {
		return nil, ErrTaskNotFound
	}
	return &result, nil
}

// AddComment attaches a comment to a task. HTML content is allowed upstream.
func (c *Client) AddComment(ctx context.Context, taskID int, content string) (*CommentResult, error) {
	payload, err := json.Marshal(map[string]any{
		"taskid":  taskID,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("board: encode comment: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/boards/comment", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	var result CommentResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TasksByColumn fetches one page of tasks from the given column.
func (c *Client) TasksByColumn(ctx context.Context, columnID, page int) (*ColumnPage, error) {
	if page <= 0 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("column", strconv.Itoa(columnID))
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/boards/items/ByPageAndColumn?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var result ColumnPage
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchFilters narrow a task search.
type SearchFilters struct {
	Statuses   []string
	AssignedTo string
}

// SearchTasks fetches candidate tasks and filters them by term and filters.
// The board has no dedicated search endpoint, so this pulls the first page of
// the given columns and matches locally.
func (c *Client) SearchTasks(ctx context.Context, term string, filters SearchFilters, columns []int, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	term = strings.ToLower(strings.TrimSpace(term))

	// Columns are independent; fetch them concurrently and keep results in
	// column order so output stays deterministic.
	pages := make([]*ColumnPage, len(columns))
	g, gctx := errgroup.WithContext(ctx)
	for i, column := range columns {
		i, column := i, column
		g.Go(func() error {
			page, err := c.TasksByColumn(gctx, column, 1)
			if err != nil {
				c.logger.Warn("column fetch failed during search", "column", column, "error", err)
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()

	matched := make([]Task, 0, limit)
	for _, page := range pages {
		if page == nil {
			continue
		}
		for _, task := range page.Data {
			if len(matched) >= limit {
				break
			}
			if term != "" &&
				!strings.Contains(strings.ToLower(task.Name), term) &&
				!strings.Contains(strings.ToLower(task.Description), term) {
				continue
			}
			if len(filters.Statuses) > 0 && !containsString(filters.Statuses, task.Status) {
				continue
			}
			if filters.AssignedTo != "" && !strings.Contains(task.AssignedUser, filters.AssignedTo) {
				continue
			}
			matched = append(matched, task)
		}
	}
	return &SearchResult{Success: true, Data: matched, Total: len(matched)}, nil
}

// BoardStats fetches board-wide counters.
func (c *Client) BoardStats(ctx context.Context) (*Stats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/boards/stats", nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Success bool  `json:"success"`
		Data    Stats `json:"estadisticas"`
	}
	if err := c.doJSON(req, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// Ping checks whether the board API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/boards/items/ByPageAndColumn?page=1&column=1", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("board: ping returned status %d", resp.StatusCode)
	}
	return nil
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
