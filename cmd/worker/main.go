package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/onbotgo/mcp-onbotgo/internal/app"
	"github.com/onbotgo/mcp-onbotgo/internal/board"
	"github.com/onbotgo/mcp-onbotgo/internal/directory"
	jobmetrics "github.com/onbotgo/mcp-onbotgo/internal/jobs"
	"github.com/onbotgo/mcp-onbotgo/internal/platform/cache"
	"github.com/onbotgo/mcp-onbotgo/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	directoryClient := directory.NewClient(cfg.DirectoryBaseURL, cfg.MibotSession, logger)
	boardClient := board.NewClient(cfg.BoardBaseURL, cfg.MibotSession, logger)

	metrics := jobmetrics.NewMetrics(nil)
	probe := jobs.NewHealthProbeJob(directoryClient, boardClient, redisClient, logger, metrics)

	probeTask, err := jobs.NewHealthProbeTask(10 * time.Second)
	if err != nil {
		logger.Error("build probe task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeHealthProbe, Handler: probe.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@every 5m", Task: probeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
