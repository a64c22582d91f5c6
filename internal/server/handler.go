// Package server exposes the tool surface over HTTP: login, tool catalog,
// tool invocation and health.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/onbotgo/mcp-onbotgo/internal/auth"
	"github.com/onbotgo/mcp-onbotgo/internal/authz"
	"github.com/onbotgo/mcp-onbotgo/internal/directory"
	"github.com/onbotgo/mcp-onbotgo/internal/tools"
	"github.com/onbotgo/mcp-onbotgo/internal/validate"
)

// HealthKey is the Redis key the connectivity probe writes and /healthz reads.
const HealthKey = "health:backends"

// IdentityVerifier verifies email/password credentials.
type IdentityVerifier interface {
	Authenticate(ctx context.Context, email, password string) (*auth.Identity, error)
}

// RoleSource resolves the roles assigned to a user.
type RoleSource interface {
	UserWithClients(ctx context.Context, userID string) (*directory.UserProfile, error)
}

// ToolCaller executes a named tool.
type ToolCaller interface {
	Call(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

// Handler coordinates the HTTP surface.
type Handler struct {
	logger     *slog.Logger
	issuer     *auth.TokenIssuer
	identity   IdentityVerifier
	roles      RoleSource
	authz      *authz.Manager
	dispatcher ToolCaller
	redis      *redis.Client

	// RatePerMinute caps requests per caller on the tool surface. Zero
	// falls back to 60.
	RatePerMinute int
}

// NewHandler constructs the HTTP handler. roles may be nil; users then get
// the default role. redis may be nil; /healthz then reports no probe data.
func NewHandler(logger *slog.Logger, issuer *auth.TokenIssuer, identity IdentityVerifier, roles RoleSource, authzManager *authz.Manager, dispatcher ToolCaller, redisClient *redis.Client) *Handler {
	return &Handler{
		logger:     logger,
		issuer:     issuer,
		identity:   identity,
		roles:      roles,
		authz:      authzManager,
		dispatcher: dispatcher,
		redis:      redisClient,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, validate.Invalid("malformed request body"))
		return
	}
	if ok, msg := validate.ValidateEmail(req.Email); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, validate.Invalid(msg))
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, validate.Invalid("password is required"))
		return
	}

	identity, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
			return
		}
		h.logger.Error("identity provider failure", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "identity provider unavailable"})
		return
	}

	roleNames := h.lookupRoles(r.Context(), identity.UserID)
	record := h.authz.ResolveUserPermissions(identity.UserID, identity.Email, roleNames)

	token, err := h.issuer.Issue(identity.UserID, identity.Email, identity.DisplayName, roleNames)
	if err != nil {
		h.logger.Error("token issuance failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not issue session token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"token_type": "Bearer",
		"user": map[string]any{
			"uid":          identity.UserID,
			"email":        identity.Email,
			"display_name": identity.DisplayName,
			"roles":        record.Roles,
		},
	})
}

func (h *Handler) lookupRoles(ctx context.Context, userID string) []string {
	if h.roles == nil {
		return nil
	}
	profile, err := h.roles.UserWithClients(ctx, userID)
	if err != nil {
		h.logger.Warn("role lookup failed, using default role", "user_id", userID, "error", err)
		return nil
	}
	return profile.Roles
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools.Catalog()})
}

func (h *Handler) handleInvoke(w http.ResponseWriter, r *http.Request) {
	session, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	toolName := chi.URLParam(r, "name")

	var args map[string]any
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		writeJSON(w, http.StatusBadRequest, validate.Invalid("malformed request body"))
		return
	}
	if args == nil {
		args = map[string]any{}
	}

	sanitized := validate.SanitizeArguments(args)
	check := validate.ValidateToolRequest(toolName, sanitized)
	if !check.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, check)
		return
	}

	record, cached := h.authz.CachedUserPermissions(session.UserID)
	if !cached {
		record = h.authz.ResolveUserPermissions(session.UserID, session.Email, session.Roles)
	}
	if !h.authz.AuthorizeTool(record, toolName) {
		h.logger.Warn("tool access denied", "tool", toolName, "user_id", session.UserID)
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "access denied for tool " + toolName})
		return
	}

	result, err := h.dispatcher.Call(r.Context(), toolName, sanitized)
	if err != nil {
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown tool " + toolName})
		case errors.Is(err, tools.ErrBadArgument):
			writeJSON(w, http.StatusUnprocessableEntity, validate.Invalid(err.Error()))
		default:
			h.logger.Error("tool execution failed", "tool", toolName, "error", err)
			writeJSON(w, http.StatusBadGateway, validate.Invalid("request could not be processed"))
		}
		return
	}
	if len(check.Warnings) > 0 {
		result["advertencias_validacion"] = check.Warnings
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing bearer token"})
		return nil, false
	}
	session, err := h.issuer.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "session token expired"})
		} else {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid session token"})
		}
		return nil, false
	}
	return session, true
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{"status": "ok"}
	if h.redis != nil {
		payload, err := h.redis.Get(r.Context(), HealthKey).Bytes()
		switch {
		case err == nil:
			var backends map[string]any
			if json.Unmarshal(payload, &backends) == nil {
				response["backends"] = backends
				if degraded(backends) {
					response["status"] = "degraded"
				}
			}
		case errors.Is(err, redis.Nil):
			// Probe has not run yet.
		default:
			h.logger.Warn("health key unavailable", "error", err)
		}
	}
	status := http.StatusOK
	if response["status"] == "degraded" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func degraded(backends map[string]any) bool {
	for _, value := range backends {
		if entry, ok := value.(map[string]any); ok {
			if healthy, ok := entry["healthy"].(bool); ok && !healthy {
				return true
			}
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
