package directory

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

func TestSearchClients_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/clients/search", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		assert.Equal(t, "acme", r.URL.Query().Get("search"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "ASC", r.URL.Query().Get("order"))
		assert.Equal(t, "name", r.URL.Query().Get("orderField"))
		assert.Equal(t, `{"tenant":"demo"}`, r.Header.Get("mibot_session"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "filters")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResult{
			Success:    true,
			Data:       []ClientInfo{{UID: "c-1", Name: "Acme Corp", Active: true}},
			DataLength: 1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, `{"tenant":"demo"}`, testLogger())
	result, err := client.SearchClients(context.Background(), SearchParams{
		Search:   "acme",
		Active:   true,
		PageSize: 5,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Acme Corp", result.Data[0].Name)
	assert.Equal(t, 1, result.DataLength)
}

func TestSearchClients_DefaultsApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "ASC", r.URL.Query().Get("order"))
		assert.Equal(t, "name", r.URL.Query().Get("orderField"))

		var body struct {
			Filters map[string]any `json:"filters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Filters, "type")
		assert.Contains(t, body.Filters, "stage")

		_ = json.NewEncoder(w).Encode(SearchResult{Success: true, Data: []ClientInfo{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	_, err := client.SearchClients(context.Background(), SearchParams{})
	require.NoError(t, err)
}

func TestSearchClients_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	_, err := client.SearchClients(context.Background(), SearchParams{Search: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClientByID_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v3/clients/c-42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    ClientInfo{UID: "c-42", Name: "Globex", Email: "ops@globex.com", Active: true},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	info, err := client.ClientByID(context.Background(), "c-42")
	require.NoError(t, err)
	assert.Equal(t, "Globex", info.Name)
	assert.Equal(t, "ops@globex.com", info.Email)
}

func TestClientByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	_, err := client.ClientByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrClientNotFound)
}

func TestUserWithClients_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/users/withAllClients/u-7", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": UserProfile{
				UID:   "u-7",
				Email: "dev@onbotgo.com",
				Roles: []string{"developer", "member"},
				Clients: []ClientInfo{
					{UID: "c-1", Name: "Acme Corp", Active: true},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	profile, err := client.UserWithClients(context.Background(), "u-7")
	require.NoError(t, err)
	assert.Equal(t, []string{"developer", "member"}, profile.Roles)
	require.Len(t, profile.Clients, 1)
	assert.Equal(t, "Acme Corp", profile.Clients[0].Name)
}

func TestUserWithClients_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	_, err := client.UserWithClients(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchByTerm_DegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	results := client.SearchByTerm(context.Background(), "acme", 10)
	assert.Empty(t, results)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(SearchResult{Success: true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "{}", testLogger())
	require.NoError(t, client.Ping(context.Background()))
}
