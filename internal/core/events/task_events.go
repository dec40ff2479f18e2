package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskClaimedEvent       = "task.claimed"
	TaskStatusChangedEvent = "task.status_changed"
)

// NewTaskClaimed is published once per task, by the first successful claim.
func NewTaskClaimed(taskID, employeeID int64, taskTitle, employeeName string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TaskClaimedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"task_id":       taskID,
			"task_title":    taskTitle,
			"employee_id":   employeeID,
			"employee_name": employeeName,
		},
	}
}

func NewTaskStatusChanged(taskID int64, taskTitle, oldStatus, newStatus string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TaskStatusChangedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"task_id":    taskID,
			"task_title": taskTitle,
			"old_status": oldStatus,
			"new_status": newStatus,
		},
	}
}
