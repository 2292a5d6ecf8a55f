package tasks

import (
	"time"

	"mindease/models"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const TypeReconcileBooking = "booking:reconcile"

// ReconcileQueue is the asynq queue booking retries run on.
const ReconcileQueue = "reconcile"

// NewReconcileTask builds the retry task for an incident. The task id is
// derived from the incident so a retry is never queued twice at once.
func NewReconcileTask(incidentID string, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.ReconcilePayload{IncidentID: incidentID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcileBooking, b)
	opts := []asynq.Option{
		asynq.TaskID("reconcile:" + incidentID),
		asynq.Queue(ReconcileQueue),
		asynq.MaxRetry(0),
		asynq.ProcessIn(delay),
	}
	return task, opts, nil
}

// ParseReconcilePayload decodes a task payload.
func ParseReconcilePayload(task *asynq.Task) (models.ReconcilePayload, error) {
	var p models.ReconcilePayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
