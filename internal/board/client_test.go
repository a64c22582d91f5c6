package board

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/boards/task", r.URL.Path)
		assert.Equal(t, `{"tenant":"demo"}`, r.Header.Get("mibot_session"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Optimizar dashboard", body["name"])
		assert.Equal(t, "proj-1", body["projectuid"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": 1001},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, `{"tenant":"demo"}`, testLogger())
	result, err := client.CreateTask(context.Background(), map[string]any{
		"name":       "Optimizar dashboard",
		"projectuid": "proj-1",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, float64(1001), result.Data["id"])
}

func TestUpdateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/boards/task/1001", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "en_progreso", body["status"])

		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": 1001}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	result, err := client.UpdateTask(context.Background(), 1001, map[string]any{"status": "en_progreso"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestTaskDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/boards/item/task", r.URL.Path)
		assert.Equal(t, "1001", r.URL.Query().Get("id"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": 1001, "status": "pendiente"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	result, err := client.TaskDetail(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, "pendiente", result.Data["status"])
}

func TestTaskDetail_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	_, err := client.TaskDetail(context.Background(), 9999)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAddComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/boards/comment", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1001), body["taskid"])
		assert.Equal(t, "<p>listo</p>", body["content"])

		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": 55}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	result, err := client.AddComment(context.Background(), 1001, "<p>listo</p>")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestTasksByColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/boards/items/ByPageAndColumn", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "150", r.URL.Query().Get("column"))
		_ = json.NewEncoder(w).Encode(ColumnPage{
			Success: true,
			Data:    []Task{{ID: 1, Name: "Revisar logs"}},
			Total:   1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	page, err := client.TasksByColumn(context.Background(), 150, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Revisar logs", page.Data[0].Name)
}

func TestSearchTasks_FiltersLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ColumnPage{
			Success: true,
			Data: []Task{
				{ID: 1001, Name: "Optimizar dashboard de analytics", Status: "en_progreso", AssignedUser: "Juan Pérez"},
				{ID: 1002, Name: "Revisar logs de error", Status: "pendiente", AssignedUser: "María González"},
			},
			Total: 2,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())

	result, err := client.SearchTasks(context.Background(), "dashboard", SearchFilters{}, []int{150}, 20)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, 1001, result.Data[0].ID)

	result, err = client.SearchTasks(context.Background(), "", SearchFilters{Statuses: []string{"pendiente"}}, []int{150}, 20)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, 1002, result.Data[0].ID)

	result, err = client.SearchTasks(context.Background(), "", SearchFilters{AssignedTo: "Juan"}, []int{150}, 20)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, 1001, result.Data[0].ID)
}

func TestSearchTasks_SkipsFailingColumns(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("column") == "150" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(ColumnPage{
			Success: true,
			Data:    []Task{{ID: 7, Name: "Deploy"}},
			Total:   1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	result, err := client.SearchTasks(context.Background(), "", SearchFilters{}, []int{150, 151}, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, result.Data, 1)
	assert.Equal(t, 7, result.Data[0].ID)
}

func TestBoardStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/boards/stats", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"estadisticas": map[string]any{
				"total_tareas":       127,
				"tareas_completadas": 95,
				"tasa_completacion":  74.8,
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	stats, err := client.BoardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 127, stats.TotalTasks)
	assert.Equal(t, 95, stats.CompletedTasks)
	assert.InDelta(t, 74.8, stats.CompletionRate, 0.001)
}

func TestPing_ToleratesClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	assert.NoError(t, client.Ping(context.Background()))
}
