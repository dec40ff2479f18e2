package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Yaroslav326/TaskManagement/internal/core/events"
)

// Directory resolves who should hear about a task event.
type Directory interface {
	CustomerEmailForTask(ctx context.Context, taskID int64) (string, error)
}

// Service turns task events into mail notifications. Handlers run on the
// event bus, off the request path; a failed delivery is logged and dropped.
type Service struct {
	mailer    Mailer
	directory Directory
	logger    *slog.Logger
}

func NewService(mailer Mailer, directory Directory, logger *slog.Logger) *Service {
	return &Service{mailer: mailer, directory: directory, logger: logger}
}

// Register subscribes the notification handlers on the bus.
func (s *Service) Register(bus *events.EventBus) {
	bus.Subscribe(events.TaskClaimedEvent, s.HandleTaskClaimed)
	bus.Subscribe(events.TaskStatusChangedEvent, s.HandleTaskStatusChanged)
}

// HandleTaskClaimed mails the task's customer that someone took the task.
// The claim event fires once per task, so the customer hears exactly once.
func (s *Service) HandleTaskClaimed(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for event %s", event.EventID())
	}

	taskID, _ := data["task_id"].(int64)
	taskTitle, _ := data["task_title"].(string)
	employeeName, _ := data["employee_name"].(string)

	to, err := s.directory.CustomerEmailForTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient for task %d: %w", taskID, err)
	}

	subject := fmt.Sprintf("Task %q was taken", taskTitle)
	body := fmt.Sprintf("%s is now working on your task %q.", employeeName, taskTitle)

	return s.mailer.Send(ctx, to, subject, body)
}

// HandleTaskStatusChanged mails the customer on every status transition.
func (s *Service) HandleTaskStatusChanged(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for event %s", event.EventID())
	}

	taskID, _ := data["task_id"].(int64)
	taskTitle, _ := data["task_title"].(string)
	newStatus, _ := data["new_status"].(string)

	to, err := s.directory.CustomerEmailForTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient for task %d: %w", taskID, err)
	}

	subject := fmt.Sprintf("Task %q moved to %s", taskTitle, newStatus)
	body := fmt.Sprintf("Your task %q is now %s.", taskTitle, newStatus)

	return s.mailer.Send(ctx, to, subject, body)
}
