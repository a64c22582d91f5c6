// Package directory talks to the Apiaim client-directory API. It covers
// client search, client lookup and the user-with-clients endpoint used to
// resolve roles at login.
package directory

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
	"time"
)

var (
	// ErrClientNotFound is returned when a client UID does not exist upstream.
	ErrClientNotFound = errors.New("directory: client not found")
	// ErrUserNotFound is returned when a user UID does not exist upstream.
	ErrUserNotFound = errors.New("directory: user not found")
)

// ClientInfo is a single client record as the directory returns it.
type ClientInfo struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Country string `json:"country,omitempty"`
	Type    string `json:"type,omitempty"`
	Stage   string `json:"stage,omitempty"`
	Active  bool   `json:"active"`
}

// UserProfile is the payload of the users/withAllClients endpoint.
type UserProfile struct {
	UID         string       `json:"uid"`
	Email       string       `json:"email"`
	DisplayName string       `json:"display_name,omitempty"`
	Roles       []string     `json:"roles,omitempty"`
	Clients     []ClientInfo `json:"clients,omitempty"`
}

// SearchParams describe a paginated client search.
type SearchParams struct {
	Search     string
	Active     bool
	PageSize   int
	Offset     int
	Order      string
	OrderField string
	Filters    map[string]any
}

// SearchResult is the directory's search envelope.
type SearchResult struct {
	Success    bool         `json:"success"`
	Data       []ClientInfo `json:"data"`
	DataLength int          `json:"dataLength"`
}

type clientEnvelope struct {
	Success bool        `json:"success"`
	Data    *ClientInfo `json:"data"`
}

type userEnvelope struct {
	Success bool         `json:"success"`
	Data    *UserProfile `json:"data"`
}

// Client wraps interactions with the Apiaim directory API.
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

// SearchClients runs a paginated search against the directory. Zero-valued
// paging fields fall back to the upstream defaults.
func (c *Client) SearchClients(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.Order == "" {
		params.Order = "ASC"
	}
	if params.OrderField == "" {
		params.OrderField = "name"
	}
	filters := params.Filters
	if filters == nil {
		filters = map[string]any{"type": []any{}, "stage": []any{}}
	}

	payload, err := json.Marshal(map[string]any{"filters": filters})
	if err != nil {
		return nil, fmt.Errorf("directory: encode search filters: %w", err)
	}

	query := url.Values{}
	query.Set("active", strconv.FormatBool(params.Active))
	query.Set("search", params.Search)
	query.Set("pageSize", strconv.Itoa(params.PageSize))
	query.Set("offset", strconv.Itoa(params.Offset))
	query.Set("order", params.Order)
	query.Set("orderField", params.OrderField)

	req, err := c.newRequest(ctx, http.MethodPost, "/v3/clients/search?"+query.Encode(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("directory: search returned status %d", resp.StatusCode)
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("directory: decode search response: %w", err)
	}
	c.logger.Debug("client search completed", "search", params.Search, "results", len(result.Data))
	return &result, nil
}

// ClientByID fetches a single client by its UID.
func (c *Client) ClientByID(ctx context.Context, clientID string) (*ClientInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v3/clients/"+url.PathEscape(clientID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrClientNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("directory: client lookup returned status %d", resp.StatusCode)
	}

	var envelope clientEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("directory: decode client response: %w", err)
	}
	if envelope.Data == nil {
		return nil, ErrClientNotFound
	}
	return envelope.Data, nil
}

// UserWithClients fetches a user together with every client assigned to them.
func (c *Client) UserWithClients(ctx context.Context, userID string) (*UserProfile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v3/users/withAllClients/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("directory: user lookup returned status %d", resp.StatusCode)
	}

	var envelope userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("directory: decode user response: %w", err)
	}
	if envelope.Data == nil {
		return nil, ErrUserNotFound
	}
	return envelope.Data, nil
}

// SearchByTerm is a convenience wrapper that returns at most limit active
// clients matching term. Lookup failures degrade to an empty slice.
func (c *Client) SearchByTerm(ctx context.Context, term string, limit int) []ClientInfo {
	if limit <= 0 {
		limit = 10
	}
	result, err := c.SearchClients(ctx, SearchParams{Search: term, Active: true, PageSize: limit})
	if err != nil || !result.Success {
		c.logger.Warn("client term search failed", "term", term, "error", err)
		return []ClientInfo{}
	}
	return result.Data
}

// Ping checks whether the directory API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.SearchClients(ctx, SearchParams{Active: true, PageSize: 1})
	return err
}
