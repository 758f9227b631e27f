package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDraftSubmit retries delivery of a parked draft to the backend.
	TaskDraftSubmit = "draft:submit"
	// TaskMaintenanceSweep prunes expired idempotency keys and re-queues
	// drafts stuck in PENDING_RETRY.
	TaskMaintenanceSweep = "maintenance:sweep"
)

// Draft kinds routed by the submit retry handler.
const (
	KindVoucher = "voucher"
	KindOrder   = "order"
)

// SubmitRetryPayload identifies the draft to resubmit.
type SubmitRetryPayload struct {
	Kind    string `json:"kind"`
	DraftID int64  `json:"draft_id"`
}

// NewSubmitRetryTask constructs a submit retry task. The task id is
// derived from the draft so repeated enqueues collapse into one.
func NewSubmitRetryTask(payload SubmitRetryPayload) (*asynq.Task, []asynq.Option, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.TaskID(fmt.Sprintf("%s:%s:%d", TaskDraftSubmit, payload.Kind, payload.DraftID)),
		asynq.MaxRetry(10),
	}
	return asynq.NewTask(TaskDraftSubmit, data), opts, nil
}

// NewMaintenanceSweepTask constructs the periodic sweep task.
func NewMaintenanceSweepTask() *asynq.Task {
	return asynq.NewTask(TaskMaintenanceSweep, nil)
}
