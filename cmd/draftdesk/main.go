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
	"github.com/joho/godotenv"

	"github.com/draftdesk/draftdesk/internal/app"
	"github.com/draftdesk/draftdesk/internal/gateway"
	"github.com/draftdesk/draftdesk/internal/orders"
	"github.com/draftdesk/draftdesk/internal/platform/cache"
	"github.com/draftdesk/draftdesk/internal/platform/db"
	"github.com/draftdesk/draftdesk/internal/reference"
	"github.com/draftdesk/draftdesk/internal/shared"
	"github.com/draftdesk/draftdesk/internal/vouchers"
	"github.com/draftdesk/draftdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reference cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	backend := gateway.NewClient(cfg.BackendURL)
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	voucherRepo := vouchers.NewRepository(pool)
	voucherService := vouchers.NewService(voucherRepo, backend, idempotencyStore, queue.SchedulerFor(jobs.KindVoucher), auditLogger)
	voucherHandler := vouchers.NewHandler(logger, voucherService)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, backend, idempotencyStore, queue.SchedulerFor(jobs.KindOrder), auditLogger)
	orderHandler := orders.NewHandler(logger, orderService)

	var referenceCache *reference.Cache
	if redisClient != nil {
		referenceCache = reference.NewCache(redisClient, cfg.ReferenceTTL)
	}
	referenceService := reference.NewService(backend, referenceCache)
	referenceHandler := reference.NewHandler(logger, referenceService)

	if len(cfg.WarmupTenantIDs) > 0 {
		go func() {
			warmupCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if err := referenceService.Warmup(warmupCtx, cfg.WarmupTenantIDs); err != nil {
				logger.Warn("reference warmup", slog.Any("error", err))
			}
		}()
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		VoucherHandler:   voucherHandler,
		OrderHandler:     orderHandler,
		ReferenceHandler: referenceHandler,
		Pool:             pool,
		Backend:          backend,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
