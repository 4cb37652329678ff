package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/listing-api/internal/service"
)

// NewTriggerTask builds a task that is never retried: the engine is not
// idempotent, and a failed delivery has already been compensated.
func NewTriggerTask(job service.TriggerJob) (*asynq.Task, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTriggerWorkflow, payload, asynq.MaxRetry(0)), nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, job service.TriggerJob) error {
	task, err := NewTriggerTask(job)
	if err != nil {
		return err
	}

	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	slog.Info("trigger task enqueued", "post_id", job.PostID, "reason", job.Reason, "task_id", info.ID)
	return nil
}
