package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/listing-api/internal/service"
)

func (w *Worker) HandleTriggerTask(ctx context.Context, task *asynq.Task) error {
	var job service.TriggerJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("invalid trigger payload: %v: %w", err, asynq.SkipRetry)
	}

	return w.wf.Run(ctx, job)
}
