package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskFollowupReminder = "followups.reminder"

// FollowupReminderPayload identifies the follow-up a reminder task is for.
// The due time rides along so the worker can tell a stale task from a
// rescheduled one.
type FollowupReminderPayload struct {
	FollowupID string `json:"followupId"`
	LeadID     string `json:"leadId"`
	DueAt      string `json:"dueAt"`
}

func NewFollowupReminderTask(payload FollowupReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowupReminder, data), nil
}

func ParseFollowupReminderPayload(task *asynq.Task) (FollowupReminderPayload, error) {
	var payload FollowupReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowupReminderPayload{}, err
	}
	return payload, nil
}
