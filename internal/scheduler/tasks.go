// Package scheduler queues and consumes asynchronous delivery work over
// Redis via asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskNotificationDeliver = "notifications.deliver"

// NotificationDeliverPayload identifies one lead notification to deliver.
type NotificationDeliverPayload struct {
	NotificationID string `json:"notificationId"`
}

func NewNotificationDeliverTask(payload NotificationDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDeliver, data), nil
}

func ParseNotificationDeliverPayload(task *asynq.Task) (NotificationDeliverPayload, error) {
	var payload NotificationDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationDeliverPayload{}, err
	}
	return payload, nil
}
