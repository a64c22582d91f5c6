package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/onbotgo/mcp-onbotgo/internal/validate"
)

// MountRoutes registers the tool-surface endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limit := h.RatePerMinute
	if limit <= 0 {
		limit = 60
	}
	limiter := httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/healthz", h.handleHealth)
	r.Group(func(gr chi.Router) {
		gr.Use(h.recoverer)
		gr.Use(limiter)
		gr.Post("/auth/login", h.handleLogin)
		gr.Get("/tools", h.handleCatalog)
		gr.Post("/tools/{name}", h.handleInvoke)
	})
}

// recoverer converts panics in the request path into a generic invalid result
// so one bad invocation cannot take the process down.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic while handling request", "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, validate.Invalid("request could not be processed"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if token := r.Header.Get("Authorization"); token != "" {
		return "token:" + token, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
