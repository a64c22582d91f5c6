package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/onbotgo/mcp-onbotgo/internal/jobs"
	"github.com/onbotgo/mcp-onbotgo/internal/server"
)

const defaultProbeTimeout = 10 * time.Second

// Pinger checks connectivity to an upstream backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendStatus is the per-backend probe outcome stored under
// server.HealthKey for /healthz to report.
type BackendStatus struct {
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthProbeJob pings the directory and board backends and records the
// outcome in Redis.
type HealthProbeJob struct {
	directory Pinger
	board     Pinger
	redis     *redis.Client
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
	now       func() time.Time
}

// NewHealthProbeJob constructs the probe. metrics may be nil.
func NewHealthProbeJob(directory, board Pinger, redisClient *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *HealthProbeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthProbeJob{
		directory: directory,
		board:     board,
		redis:     redisClient,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Handle processes TaskTypeHealthProbe tasks. Unreachable backends are
// recorded, not treated as job failures.
func (j *HealthProbeJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("health_probe")

	var payload HealthProbePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	timeout := payload.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	statuses := map[string]BackendStatus{}
	if j.directory != nil {
		statuses["directory"] = j.probe(ctx, "directory", j.directory, timeout)
	}
	if j.board != nil {
		statuses["board"] = j.probe(ctx, "board", j.board, timeout)
	}

	if j.redis != nil {
		data, err := json.Marshal(statuses)
		if err != nil {
			return tracker.End(err)
		}
		if err := j.redis.Set(ctx, server.HealthKey, data, 0).Err(); err != nil {
			j.logger.Warn("store probe result", slog.Any("error", err))
			return tracker.End(err)
		}
	}
	return tracker.End(nil)
}

func (j *HealthProbeJob) probe(ctx context.Context, name string, target Pinger, timeout time.Duration) BackendStatus {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := BackendStatus{Healthy: true, CheckedAt: j.now().UTC()}
	if err := target.Ping(ctx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
		j.logger.Warn("backend unreachable", slog.String("backend", name), slog.Any("error", err))
	}
	j.metrics.SetBackendHealth(name, status.Healthy)
	return status
}
