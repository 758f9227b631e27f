package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/draftdesk/draftdesk/internal/gateway"
	"github.com/draftdesk/draftdesk/internal/orders"
	"github.com/draftdesk/draftdesk/internal/shared"
	"github.com/draftdesk/draftdesk/internal/vouchers"
)

// SubmitRetryJob redelivers parked drafts to the books backend.
type SubmitRetryJob struct {
	Vouchers *vouchers.Service
	Orders   *orders.Service
	Logger   *slog.Logger
}

// NewSubmitRetryJob wires dependencies for the retry handler.
func NewSubmitRetryJob(voucherSvc *vouchers.Service, orderSvc *orders.Service, logger *slog.Logger) *SubmitRetryJob {
	return &SubmitRetryJob{Vouchers: voucherSvc, Orders: orderSvc, Logger: logger}
}

// Handle processes draft submit retry tasks. Transport failures are
// returned so Asynq backs off and retries; terminal outcomes stop the
// retry chain.
func (j *SubmitRetryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("submit retry: handler not configured")
	}
	var payload SubmitRetryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	logger := j.logger().With(slog.String("kind", payload.Kind), slog.Int64("draft_id", payload.DraftID))

	var err error
	switch payload.Kind {
	case KindVoucher:
		_, _, err = j.Vouchers.Submit(ctx, payload.DraftID, 0)
	case KindOrder:
		_, _, err = j.Orders.Submit(ctx, payload.DraftID, 0)
	default:
		return asynq.SkipRetry
	}

	switch {
	case err == nil:
		logger.Info("draft submitted on retry")
		return nil
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrDraftSubmitted),
		errors.Is(err, shared.ErrIdempotencyConflict):
		// Deleted or already delivered since the task was queued.
		return nil
	case errors.Is(err, gateway.ErrRejected):
		logger.Warn("backend rejected retried draft", slog.Any("error", err))
		return fmt.Errorf("draft rejected: %v: %w", err, asynq.SkipRetry)
	default:
		logger.Warn("retry failed, backing off", slog.Any("error", err))
		return err
	}
}

func (j *SubmitRetryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
