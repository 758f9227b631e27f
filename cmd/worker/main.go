package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/draftdesk/draftdesk/internal/app"
	"github.com/draftdesk/draftdesk/internal/gateway"
	"github.com/draftdesk/draftdesk/internal/orders"
	"github.com/draftdesk/draftdesk/internal/platform/db"
	"github.com/draftdesk/draftdesk/internal/shared"
	"github.com/draftdesk/draftdesk/internal/vouchers"
	"github.com/draftdesk/draftdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	queue, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	backend := gateway.NewClient(cfg.BackendURL)
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	voucherRepo := vouchers.NewRepository(pool)
	voucherService := vouchers.NewService(voucherRepo, backend, idempotencyStore, queue.SchedulerFor(jobs.KindVoucher), auditLogger)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, backend, idempotencyStore, queue.SchedulerFor(jobs.KindOrder), auditLogger)

	retryJob := jobs.NewSubmitRetryJob(voucherService, orderService, logger)
	sweepJob := &jobs.MaintenanceSweepJob{
		Tokens:        idempotencyStore,
		VoucherDrafts: voucherRepo,
		OrderDrafts:   orderRepo,
		Enqueuer:      queue,
		Logger:        logger,
		MaxTokenAge:   cfg.IdempotencyMaxAge,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDraftSubmit, Handler: retryJob.Handle},
			{Type: jobs.TaskMaintenanceSweep, Handler: sweepJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: jobs.NewMaintenanceSweepTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
