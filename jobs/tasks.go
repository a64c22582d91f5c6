package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeHealthProbe is the task type for the backend connectivity probe.
	TaskTypeHealthProbe = "backends:probe"
)

// HealthProbePayload configures a single probe run.
type HealthProbePayload struct {
	Timeout time.Duration `json:"timeout"`
}

// NewHealthProbeTask constructs an Asynq task for the connectivity probe.
func NewHealthProbeTask(timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(HealthProbePayload{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeHealthProbe, data), nil
}
