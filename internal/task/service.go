package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/auth"
	"github.com/Yaroslav326/TaskManagement/internal/core/events"
	"github.com/Yaroslav326/TaskManagement/internal/user"
)

// Repository defines the data access methods for tasks and subtasks.
type Repository interface {
	CreateTask(t *Task) error
	GetTaskByID(id int64) (*Task, error)
	UpdateTask(t *Task) error
	DeleteTask(id int64) error
	ListForUser(userID int64, filter ListFilter) ([]Task, error)

	// ClaimTask sets the employee on an unclaimed task. It reports whether
	// this call won the claim; a false result with nil error means another
	// principal got there first.
	ClaimTask(taskID, employeeID int64) (bool, error)

	CreateSubtask(st *Subtask) error
	GetSubtaskByID(id int64) (*Subtask, error)
	UpdateSubtask(st *Subtask) error
	DeleteSubtask(id int64) error

	UserByID(id int64) (*user.User, error)
}

type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

// CreateTask creates an unclaimed task owned by the caller.
func (s *Service) CreateTask(customerID int64, dto CreateTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t := &Task{
		Title:      dto.Title,
		Status:     StatusTodo,
		DateStart:  time.Now().UTC(),
		CustomerID: customerID,
		Remark:     dto.Remark,
	}

	if err := s.repo.CreateTask(t); err != nil {
		s.logger.Error("failed to create task", "error", err, "customer_id", customerID)
		return nil, err
	}

	s.logger.Info("task created", "task_id", t.ID, "customer_id", customerID)
	return t, nil
}

// ListTasks returns the caller's tasks (created or claimed by them), with
// optional status and date-window filters, ordered todo, in_progress, done.
func (s *Service) ListTasks(userID int64, filter ListFilter) ([]Task, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, ValidationError{Msg: "invalid status filter"}
	}
	return s.repo.ListForUser(userID, filter)
}

// GetTask returns a single task with its subtasks.
func (s *Service) GetTask(taskID int64) (*Task, error) {
	t, err := s.repo.GetTaskByID(taskID)
	if err != nil {
		return nil, internal.ErrTaskNotFound.WithCause(err)
	}
	return t, nil
}

// EditTask updates the task's title and remark.
func (s *Service) EditTask(taskID int64, dto EditTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetTaskByID(taskID)
	if err != nil {
		return nil, internal.ErrTaskNotFound.WithCause(err)
	}

	t.Title = dto.Title
	if dto.Remark == "" {
		t.Remark = nil
	} else {
		t.Remark = &dto.Remark
	}

	if err := s.repo.UpdateTask(t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus moves the task to a new status. Reaching done stamps the
// end date; leaving done clears it.
func (s *Service) UpdateStatus(taskID int64, dto UpdateStatusDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetTaskByID(taskID)
	if err != nil {
		return nil, internal.ErrTaskNotFound.WithCause(err)
	}

	oldStatus := t.Status
	t.Status = dto.Status
	if dto.Status == StatusDone {
		now := time.Now().UTC()
		t.DateEnd = &now
	} else {
		t.DateEnd = nil
	}

	if err := s.repo.UpdateTask(t); err != nil {
		return nil, err
	}

	if oldStatus != t.Status {
		if err := s.bus.Publish(context.Background(), events.NewTaskStatusChanged(t.ID, t.Title, oldStatus, t.Status)); err != nil {
			s.logger.Error("failed to publish status change", "error", err, "task_id", t.ID)
		}
	}

	return t, nil
}

// DeleteTask removes the task; its subtasks go with it.
func (s *Service) DeleteTask(taskID int64) error {
	if _, err := s.repo.GetTaskByID(taskID); err != nil {
		return internal.ErrTaskNotFound.WithCause(err)
	}
	return s.repo.DeleteTask(taskID)
}

// TakeTask claims an unclaimed task for the caller. First claim wins: when
// the task already has an assignee the call is a silent no-op that reports
// the existing assignee. The claim event fires only for the winning call.
func (s *Service) TakeTask(taskID int64, employee *auth.User) (*TakeTaskResponse, error) {
	t, err := s.repo.GetTaskByID(taskID)
	if err != nil {
		return nil, internal.ErrTaskNotFound.WithCause(err)
	}

	if t.IsClaimed() {
		return s.assigneeOf(t)
	}

	won, err := s.repo.ClaimTask(taskID, employee.ID)
	if err != nil {
		return nil, err
	}

	if !won {
		// lost the race, report whoever got it
		t, err = s.repo.GetTaskByID(taskID)
		if err != nil {
			return nil, internal.ErrTaskNotFound.WithCause(err)
		}
		return s.assigneeOf(t)
	}

	s.logger.Info("task claimed", "task_id", taskID, "employee_id", employee.ID)
	if err := s.bus.Publish(context.Background(), events.NewTaskClaimed(taskID, employee.ID, t.Title, employee.DisplayName())); err != nil {
		s.logger.Error("failed to publish claim", "error", err, "task_id", taskID)
	}

	return &TakeTaskResponse{TaskID: taskID, Employee: employee.DisplayName()}, nil
}

func (s *Service) assigneeOf(t *Task) (*TakeTaskResponse, error) {
	assignee, err := s.repo.UserByID(*t.EmployeeID)
	if err != nil {
		return nil, err
	}
	return &TakeTaskResponse{
		TaskID:         t.ID,
		Employee:       assignee.DisplayName(),
		AlreadyClaimed: true,
	}, nil
}

// CreateSubtask adds a subtask to an existing task.
func (s *Service) CreateSubtask(taskID int64, dto CreateSubtaskDTO) (*Subtask, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetTaskByID(taskID); err != nil {
		return nil, internal.ErrTaskNotFound.WithCause(err)
	}

	st := &Subtask{TaskID: taskID, Title: dto.Title}
	if err := s.repo.CreateSubtask(st); err != nil {
		return nil, err
	}
	return st, nil
}

// EditSubtask renames a subtask.
func (s *Service) EditSubtask(subtaskID int64, dto EditSubtaskDTO) (*Subtask, error) {
	if dto.Title == "" {
		return nil, ValidationError{Msg: "title is required"}
	}

	st, err := s.repo.GetSubtaskByID(subtaskID)
	if err != nil {
		return nil, internal.ErrSubtaskNotFound.WithCause(err)
	}

	st.Title = dto.Title
	if err := s.repo.UpdateSubtask(st); err != nil {
		return nil, err
	}
	return st, nil
}

// ToggleSubtask marks a subtask accomplished or not.
func (s *Service) ToggleSubtask(subtaskID int64, dto ToggleSubtaskDTO) (*Subtask, error) {
	st, err := s.repo.GetSubtaskByID(subtaskID)
	if err != nil {
		return nil, internal.ErrSubtaskNotFound.WithCause(err)
	}

	st.IsAccomplished = dto.IsCompleted
	if err := s.repo.UpdateSubtask(st); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteSubtask removes a subtask.
func (s *Service) DeleteSubtask(subtaskID int64) error {
	if _, err := s.repo.GetSubtaskByID(subtaskID); err != nil {
		return internal.ErrSubtaskNotFound.WithCause(err)
	}
	return s.repo.DeleteSubtask(subtaskID)
}
