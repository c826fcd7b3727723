// Package scheduler runs deferred work through asynq: follow-up reminders
// enqueued by the schedules module and processed by the worker binary.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskFollowUpReminder = "schedules.reminder"

type FollowUpReminderPayload struct {
	ScheduleUUID string `json:"scheduleUuid"`
}

func NewFollowUpReminderTask(payload FollowUpReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpReminder, data), nil
}

func ParseFollowUpReminderPayload(task *asynq.Task) (FollowUpReminderPayload, error) {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpReminderPayload{}, err
	}
	return payload, nil
}
