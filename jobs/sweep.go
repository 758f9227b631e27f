package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/draftdesk/draftdesk/internal/orders"
	"github.com/draftdesk/draftdesk/internal/vouchers"
)

const sweepBatchSize = 100

// TokenJanitor prunes expired idempotency claims.
type TokenJanitor interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// MaintenanceSweepJob expires old idempotency keys and re-queues drafts
// left in PENDING_RETRY, e.g. after a worker restart lost their tasks.
type MaintenanceSweepJob struct {
	Tokens        TokenJanitor
	VoucherDrafts vouchers.Repository
	OrderDrafts   orders.Repository
	Enqueuer      *Client
	Logger        *slog.Logger
	MaxTokenAge   time.Duration
}

// Handle processes the periodic maintenance sweep.
func (j *MaintenanceSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("maintenance sweep: handler not configured")
	}
	logger := j.logger()

	maxAge := j.MaxTokenAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	if j.Tokens != nil {
		if err := j.Tokens.Cleanup(ctx, maxAge); err != nil {
			logger.Warn("idempotency cleanup failed", slog.Any("error", err))
		}
	}

	if j.Enqueuer == nil {
		return nil
	}
	requeued := 0
	if j.VoucherDrafts != nil {
		drafts, err := j.VoucherDrafts.ListByStatus(ctx, vouchers.StatusPendingRetry, sweepBatchSize)
		if err != nil {
			return err
		}
		for _, d := range drafts {
			if err := j.Enqueuer.EnqueueSubmitRetry(ctx, KindVoucher, d.ID); err != nil {
				return err
			}
			requeued++
		}
	}
	if j.OrderDrafts != nil {
		drafts, err := j.OrderDrafts.ListByStatus(ctx, orders.StatusPendingRetry, sweepBatchSize)
		if err != nil {
			return err
		}
		for _, d := range drafts {
			if err := j.Enqueuer.EnqueueSubmitRetry(ctx, KindOrder, d.ID); err != nil {
				return err
			}
			requeued++
		}
	}
	if requeued > 0 {
		logger.Info("requeued parked drafts", slog.Int("count", requeued))
	}
	return nil
}

func (j *MaintenanceSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
