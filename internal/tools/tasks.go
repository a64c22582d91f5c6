package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/onbotgo/mcp-onbotgo/internal/analyzer"
	"github.com/onbotgo/mcp-onbotgo/internal/board"
	"github.com/onbotgo/mcp-onbotgo/internal/directory"
	"github.com/onbotgo/mcp-onbotgo/internal/validate"
)

const suggestedTitleMaxLen = 80

// BoardAPI is the slice of the task-board client the managers need.
type BoardAPI interface {
	CreateTask(ctx context.Context, task map[string]any) (*board.TaskResult, error)
	UpdateTask(ctx context.Context, taskID int, changes map[string]any) (*board.TaskResult, error)
	TaskDetail(ctx context.Context, taskID int) (*board.TaskResult, error)
	AddComment(ctx context.Context, taskID int, content string) (*board.CommentResult, error)
	SearchTasks(ctx context.Context, term string, filters board.SearchFilters, columns []int, limit int) (*board.SearchResult, error)
	BoardStats(ctx context.Context) (*board.Stats, error)
}

// DirectoryAPI is the slice of the client-directory client the managers need.
type DirectoryAPI interface {
	SearchClients(ctx context.Context, params directory.SearchParams) (*directory.SearchResult, error)
	ClientByID(ctx context.Context, clientID string) (*directory.ClientInfo, error)
	SearchByTerm(ctx context.Context, term string, limit int) []directory.ClientInfo
}

// TaskManager implements the task-centric tools: smart creation, search and
// contextual updates.
type TaskManager struct {
	analyzer      *analyzer.Analyzer
	board         BoardAPI
	directory     DirectoryAPI
	logger        *slog.Logger
	searchColumns []int
}

// NewTaskManager constructs a task manager. directory may be nil when client
// detection is disabled. searchColumns are the board columns scanned by
// semantic search.
func NewTaskManager(a *analyzer.Analyzer, boardClient BoardAPI, directoryClient DirectoryAPI, searchColumns []int, logger *slog.Logger) *TaskManager {
	if len(searchColumns) == 0 {
		searchColumns = []int{149, 150}
	}
	return &TaskManager{
		analyzer:      a,
		board:         boardClient,
		directory:     directoryClient,
		logger:        logger,
		searchColumns: searchColumns,
	}
}

// CreateSmartTask analyzes a natural-language description, derives title,
// priority and complexity, and creates the task on the board.
func (m *TaskManager) CreateSmartTask(ctx context.Context, description, projectID string, extra map[string]any) (map[string]any, error) {
	analysis := m.analyzer.AnalyzeDescription(description)
	title := m.analyzer.SuggestTitle(description, suggestedTitleMaxLen)

	payload := map[string]any{
		"name":        title,
		"description": description,
		"projectuid":  projectID,
		"priority":    analysis.Priority,
	}
	if explicit, ok := extra["prioridad"].(string); ok && explicit != "" {
		payload["priority"] = explicit
	}
	if assignee, ok := extra["asignar_a"].(string); ok && assignee != "" {
		payload["assigned_users"] = []any{map[string]any{"uid": assignee}}
	}

	var matchedClients []directory.ClientInfo
	if analysis.ClientMentioned && m.directory != nil {
		if clients := m.analyzer.ExtractEntities(description).Clients; len(clients) > 0 {
			matchedClients = m.directory.SearchByTerm(ctx, clients[0], 3)
			if len(matchedClients) > 0 {
				payload["clientuid"] = matchedClients[0].UID
			}
		}
	}

	result, err := m.board.CreateTask(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	response := map[string]any{
		"success":          true,
		"message":          "Tarea creada exitosamente",
		"titulo_sugerido":  title,
		"tarea":            result.Data,
		"complejidad":      analysis.Complexity,
		"horas_estimadas":  analysis.EstimatedHours,
		"contexto_detectado": map[string]any{
			"cliente_mencionado": analysis.ClientMentioned,
			"prioridad_inferida": analysis.Priority,
			"categoria":          analysis.Category,
			"urgente":            analysis.UrgencyDetected,
		},
	}
	if id, ok := result.Data["id"]; ok {
		response["tarea_id"] = id
	}
	if len(matchedClients) > 0 {
		response["cliente_detectado"] = matchedClients[0]
	}
	m.logger.Info("smart task created", "project_id", projectID, "priority", payload["priority"])
	return response, nil
}

// SearchTasks runs a relevance-ranked search over the configured board
// columns.
func (m *TaskManager) SearchTasks(ctx context.Context, query string, filters board.SearchFilters, limit int) (map[string]any, error) {
	if limit <= 0 {
		limit = 20
	}

	// Fetch broadly, then rank locally by term overlap.
	result, err := m.board.SearchTasks(ctx, "", filters, m.searchColumns, limit*5)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}

	type scored struct {
		task  board.Task
		score float64
	}
	terms := strings.Fields(strings.ToLower(query))
	ranked := make([]scored, 0, len(result.Data))
	for _, task := range result.Data {
		score := relevanceScore(task, terms)
		if len(terms) > 0 && score == 0 {
			continue
		}
		ranked = append(ranked, scored{task: task, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	items := make([]map[string]any, 0, len(ranked))
	for _, entry := range ranked {
		items = append(items, map[string]any{
			"id":          entry.task.ID,
			"titulo":      entry.task.Name,
			"descripcion": entry.task.Description,
			"estado":      entry.task.Status,
			"asignado_a":  entry.task.AssignedUser,
			"relevancia":  entry.score,
		})
	}
	return map[string]any{
		"success":        true,
		"resultados":     items,
		"total":          len(items),
		"query_original": query,
	}, nil
}

// relevanceScore weights name matches double over description matches.
func relevanceScore(task board.Task, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	name := strings.ToLower(task.Name)
	description := strings.ToLower(task.Description)
	score := 0.0
	for _, term := range terms {
		if strings.Contains(name, term) {
			score += 2
		}
		if strings.Contains(description, term) {
			score += 1
		}
	}
	return score / float64(len(terms))
}

// UpdateTaskContextual validates changes against the current task state
// before applying them, optionally posting a summary comment.
func (m *TaskManager) UpdateTaskContextual(ctx context.Context, taskID int, changes map[string]any, autoComment bool) (map[string]any, error) {
	detail, err := m.board.TaskDetail(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("fetch task %d: %w", taskID, err)
	}

	check := validate.ValidateTaskUpdate(changes, detail.Data)
	if !check.Valid {
		return map[string]any{
			"success":    false,
			"message":    "Cambios rechazados por validación",
			"validacion": check,
		}, nil
	}

	if _, err := m.board.UpdateTask(ctx, taskID, changes); err != nil {
		return nil, fmt.Errorf("update task %d: %w", taskID, err)
	}

	commented := false
	if autoComment {
		fields := make([]string, 0, len(changes))
		for field := range changes {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		comment := fmt.Sprintf("Actualización automática: campos modificados (%s)", strings.Join(fields, ", "))
		if _, err := m.board.AddComment(ctx, taskID, comment); err != nil {
			m.logger.Warn("auto comment failed", "task_id", taskID, "error", err)
		} else {
			commented = true
		}
	}

	return map[string]any{
		"success":             true,
		"message":             fmt.Sprintf("Tarea %d actualizada exitosamente", taskID),
		"cambios_aplicados":   changes,
		"comentario_agregado": commented,
		"advertencias":        check.Warnings,
	}, nil
}
