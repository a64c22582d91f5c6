package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/onbotgo/mcp-onbotgo/internal/analyzer"
	"github.com/onbotgo/mcp-onbotgo/internal/app"
	"github.com/onbotgo/mcp-onbotgo/internal/auth"
	"github.com/onbotgo/mcp-onbotgo/internal/authz"
	"github.com/onbotgo/mcp-onbotgo/internal/board"
	"github.com/onbotgo/mcp-onbotgo/internal/directory"
	"github.com/onbotgo/mcp-onbotgo/internal/observability"
	"github.com/onbotgo/mcp-onbotgo/internal/platform/cache"
	"github.com/onbotgo/mcp-onbotgo/internal/server"
	"github.com/onbotgo/mcp-onbotgo/internal/tools"
	"github.com/onbotgo/mcp-onbotgo/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		// The tool surface degrades without Redis: reports are computed
		// every time and /healthz has no probe data.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	issuer, err := auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		logger.Error("init token issuer", slog.Any("error", err))
		os.Exit(1)
	}
	identity := auth.NewIdentityClient(cfg.GoogleAPIKey, logger)

	directoryClient := directory.NewClient(cfg.DirectoryBaseURL, cfg.MibotSession, logger)
	boardClient := board.NewClient(cfg.BoardBaseURL, cfg.MibotSession, logger)

	var authzOpts []authz.Option
	if cfg.TempGrantExtend {
		authzOpts = append(authzOpts, authz.WithExtendedTemporaryExpiry())
	}
	authzManager := authz.NewManager(logger, authzOpts...)

	textAnalyzer := analyzer.New(logger)
	reportCache := tools.NewReportCache(redisClient, cfg.CacheTTL)
	taskManager := tools.NewTaskManager(textAnalyzer, boardClient, directoryClient, cfg.SearchColumns, logger)
	clientManager := tools.NewClientManager(directoryClient, boardClient, logger)
	analyticsManager := tools.NewAnalyticsManager(boardClient, reportCache, logger)
	dispatcher := tools.NewDispatcher(taskManager, clientManager, analyticsManager, logger)

	apiHandler := server.NewHandler(logger, issuer, identity, directoryClient, authzManager, dispatcher, redisClient)
	apiHandler.RatePerMinute = cfg.RatePerMinute

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:     logger,
		Config:     cfg,
		API:        apiHandler,
		JobHandler: jobHandler,
		Metrics:    metrics,
	})

	httpServer := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
