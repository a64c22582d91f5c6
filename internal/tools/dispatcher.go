package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/onbotgo/mcp-onbotgo/internal/board"
)

// ErrUnknownTool is returned when no manager implements the requested tool.
var ErrUnknownTool = errors.New("tools: unknown tool")

// ErrBadArgument is returned when a tool argument has the wrong shape.
var ErrBadArgument = errors.New("tools: bad argument")

// Dispatcher routes tool invocations by name to the owning manager.
type Dispatcher struct {
	tasks     *TaskManager
	clients   *ClientManager
	analytics *AnalyticsManager
	logger    *slog.Logger
}

// NewDispatcher constructs a dispatcher over the three managers.
func NewDispatcher(tasks *TaskManager, clients *ClientManager, analytics *AnalyticsManager, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		tasks:     tasks,
		clients:   clients,
		analytics: analytics,
		logger:    logger,
	}
}

// Call executes tool name with the given arguments. Every invocation gets a
// correlation ID for log tracing.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	correlationID := uuid.NewString()
	logger := d.logger.With("tool", name, "correlation_id", correlationID)
	logger.Info("tool invocation started")

	result, err := d.route(ctx, name, args)
	if err != nil {
		logger.Warn("tool invocation failed", "error", err)
		return nil, err
	}
	if result != nil {
		result["correlation_id"] = correlationID
	}
	logger.Info("tool invocation completed")
	return result, nil
}

func (d *Dispatcher) route(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "crear_tarea_inteligente":
		return d.tasks.CreateSmartTask(ctx, argString(args, "descripcion"), argString(args, "proyecto_id"), args)
	case "buscar_tareas_semantica":
		filters := board.SearchFilters{}
		if raw, ok := args["filtros"].(map[string]any); ok {
			filters.AssignedTo = argString(raw, "asignado_a")
			switch estado := raw["estado"].(type) {
			case string:
				filters.Statuses = []string{estado}
			case []any:
				for _, item := range estado {
					if status, ok := item.(string); ok {
						filters.Statuses = append(filters.Statuses, status)
					}
				}
			}
		}
		return d.tasks.SearchTasks(ctx, argString(args, "query"), filters, argInt(args, "limite", 20))
	case "actualizar_tarea_contextual":
		taskID, ok := intArg(args["tarea_id"])
		if !ok {
			return nil, fmt.Errorf("%w: tarea_id must be an integer", ErrBadArgument)
		}
		changes, ok := args["cambios"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: cambios must be an object", ErrBadArgument)
		}
		return d.tasks.UpdateTaskContextual(ctx, taskID, changes, argBool(args, "comentario_automatico", true))
	case "buscar_cliente_inteligente":
		return d.clients.SearchSmartClient(ctx, argString(args, "query"), argInt(args, "limite", 10))
	case "obtener_historial_cliente":
		return d.clients.ClientHistory(ctx, argString(args, "cliente_id"))
	case "analizar_productividad_equipo":
		return d.analytics.TeamProductivity(ctx,
			argString(args, "periodo"),
			argBool(args, "incluir_predicciones", true),
			argBool(args, "desglosar_por_usuario", true))
	case "detectar_cuellos_botella":
		return d.analytics.DetectBottlenecks(ctx, argString(args, "proyecto_id"), argBool(args, "incluir_recomendaciones", true))
	case "generar_reporte_proyecto":
		return d.analytics.ProjectReport(ctx, argString(args, "proyecto_id"), argString(args, "formato"))
	default:
		// gestionar_usuarios and exportar_datos are cataloged but have no
		// manager yet; they fall through here like any unknown name.
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
}

func argString(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func argBool(args map[string]any, key string, fallback bool) bool {
	if value, ok := args[key].(bool); ok {
		return value
	}
	return fallback
}

func argInt(args map[string]any, key string, fallback int) int {
	if value, ok := intArg(args[key]); ok {
		return value
	}
	return fallback
}

func intArg(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
