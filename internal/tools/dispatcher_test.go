package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onbotgo/mcp-onbotgo/internal/analyzer"
	"github.com/onbotgo/mcp-onbotgo/internal/board"
	"github.com/onbotgo/mcp-onbotgo/internal/directory"
)

func newTestDispatcher(fb *fakeBoard, fd *fakeDirectory) *Dispatcher {
	tasks := NewTaskManager(analyzer.New(testLogger()), fb, fd, nil, testLogger())
	clients := NewClientManager(fd, fb, testLogger())
	analytics := NewAnalyticsManager(fb, nil, testLogger())
	return NewDispatcher(tasks, clients, analytics, testLogger())
}

func TestDispatcher_RoutesAllTools(t *testing.T) {
	fb := newFakeBoard()
	fb.stats = &board.Stats{TotalTasks: 10, CompletedTasks: 9}
	fb.details[1001] = map[string]any{"id": float64(1001), "status": "pendiente", "name": "Tarea demo", "projectuid": "proj-1"}
	fd := &fakeDirectory{clients: []directory.ClientInfo{{UID: "c-1", Name: "TechCorp"}}}
	d := newTestDispatcher(fb, fd)

	calls := []struct {
		tool string
		args map[string]any
	}{
		{"crear_tarea_inteligente", map[string]any{"descripcion": "revisar el dashboard", "proyecto_id": "proj-1"}},
		{"buscar_tareas_semantica", map[string]any{"query": "dashboard"}},
		{"actualizar_tarea_contextual", map[string]any{"tarea_id": float64(1001), "cambios": map[string]any{"status": "en_progreso"}}},
		{"buscar_cliente_inteligente", map[string]any{"query": "techcorp"}},
		{"obtener_historial_cliente", map[string]any{"cliente_id": "c-1"}},
		{"analizar_productividad_equipo", map[string]any{"periodo": "ultimo_mes"}},
		{"detectar_cuellos_botella", map[string]any{}},
		{"generar_reporte_proyecto", map[string]any{"proyecto_id": "proj-1"}},
	}
	for _, call := range calls {
		result, err := d.Call(context.Background(), call.tool, call.args)
		require.NoError(t, err, call.tool)
		assert.NotEmpty(t, result["correlation_id"], call.tool)
	}
}

func TestDispatcher_UnknownTool(t *testing.T) {
	d := newTestDispatcher(newFakeBoard(), &fakeDirectory{})
	_, err := d.Call(context.Background(), "herramienta_inexistente", map[string]any{})
	require.ErrorIs(t, err, ErrUnknownTool)
}

func TestDispatcher_CatalogedButUnimplemented(t *testing.T) {
	d := newTestDispatcher(newFakeBoard(), &fakeDirectory{})
	for _, tool := range []string{"gestionar_usuarios", "exportar_datos"} {
		_, err := d.Call(context.Background(), tool, map[string]any{})
		require.ErrorIs(t, err, ErrUnknownTool, tool)
	}
}

func TestDispatcher_BadArguments(t *testing.T) {
	d := newTestDispatcher(newFakeBoard(), &fakeDirectory{})

	_, err := d.Call(context.Background(), "actualizar_tarea_contextual",
		map[string]any{"tarea_id": "mil", "cambios": map[string]any{}})
	require.ErrorIs(t, err, ErrBadArgument)

	_, err = d.Call(context.Background(), "actualizar_tarea_contextual",
		map[string]any{"tarea_id": float64(1), "cambios": "no-un-objeto"})
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestDispatcher_StatusFilterShapes(t *testing.T) {
	fb := newFakeBoard()
	fb.search = []board.Task{
		{ID: 1, Name: "Tarea uno", Status: "pendiente"},
		{ID: 2, Name: "Tarea dos", Status: "en_progreso"},
	}
	d := newTestDispatcher(fb, &fakeDirectory{})

	result, err := d.Call(context.Background(), "buscar_tareas_semantica",
		map[string]any{"query": "", "filtros": map[string]any{"estado": "pendiente"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result["total"])

	result, err = d.Call(context.Background(), "buscar_tareas_semantica",
		map[string]any{"query": "", "filtros": map[string]any{"estado": []any{"pendiente", "en_progreso"}}})
	require.NoError(t, err)
	assert.Equal(t, 2, result["total"])
}

func TestCatalogCoversDispatchSurface(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 10)

	names := make(map[string]bool, len(catalog))
	for _, def := range catalog {
		names[def.Name] = true
		assert.NotEmpty(t, def.Description, def.Name)
		require.NotNil(t, def.InputSchema, def.Name)
		assert.Equal(t, "object", def.InputSchema["type"], def.Name)
	}
	for _, tool := range []string{
		"crear_tarea_inteligente", "buscar_tareas_semantica", "actualizar_tarea_contextual",
		"buscar_cliente_inteligente", "obtener_historial_cliente", "analizar_productividad_equipo",
		"detectar_cuellos_botella", "generar_reporte_proyecto", "gestionar_usuarios", "exportar_datos",
	} {
		assert.True(t, names[tool], tool)
	}
}
