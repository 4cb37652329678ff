package queue

import (
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/listing-api/internal/service"
)

const TaskTypeTriggerWorkflow = "workflow:trigger"

// Dispatcher enqueues trigger jobs on Redis for the asynq worker.
type Dispatcher struct {
	client *asynq.Client
}

func NewDispatcher(client *asynq.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

type Worker struct {
	wf service.WorkflowService
}

func NewWorker(wf service.WorkflowService) *Worker {
	return &Worker{wf: wf}
}

// Register wires the worker's handlers into mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeTriggerWorkflow, w.HandleTriggerTask)
}
