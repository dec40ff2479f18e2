package postgres

import (
	"errors"

	"github.com/Yaroslav326/TaskManagement/internal/task"
	"github.com/Yaroslav326/TaskManagement/internal/user"
	"gorm.io/gorm"
)

const statusOrder = "CASE status WHEN 'todo' THEN 0 WHEN 'in_progress' THEN 1 WHEN 'done' THEN 2 ELSE 3 END"

// TaskRepository implements the task.Repository interface using GORM
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.Repository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) CreateTask(t *task.Task) error {
	return r.db.Create(t).Error
}

func (r *TaskRepository) GetTaskByID(id int64) (*task.Task, error) {
	var t task.Task
	err := r.db.Preload("Subtasks").Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("task not found")
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) UpdateTask(t *task.Task) error {
	return r.db.Omit("Subtasks", "Customer", "Employee").Save(t).Error
}

// DeleteTask removes the task and its subtasks.
func (r *TaskRepository) DeleteTask(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&task.Subtask{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task.Task{}, id).Error
	})
}

func (r *TaskRepository) ListForUser(userID int64, filter task.ListFilter) ([]task.Task, error) {
	q := r.db.Preload("Subtasks").
		Where("customer_id = ? OR employee_id = ?", userID, userID)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StartDate != "" {
		q = q.Where("date_start >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("date_start <= ?", filter.EndDate)
	}

	var tasks []task.Task
	err := q.Order(statusOrder).Order("id ASC").Find(&tasks).Error
	return tasks, err
}

// ClaimTask assigns the employee only when no assignee is set yet. The
// conditional update makes concurrent claims race-safe: exactly one caller
// sees a row affected.
func (r *TaskRepository) ClaimTask(taskID, employeeID int64) (bool, error) {
	res := r.db.Model(&task.Task{}).
		Where("id = ? AND employee_id IS NULL", taskID).
		Update("employee_id", employeeID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *TaskRepository) CreateSubtask(st *task.Subtask) error {
	return r.db.Create(st).Error
}

func (r *TaskRepository) GetSubtaskByID(id int64) (*task.Subtask, error) {
	var st task.Subtask
	err := r.db.Where("id = ?", id).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("subtask not found")
		}
		return nil, err
	}
	return &st, nil
}

func (r *TaskRepository) UpdateSubtask(st *task.Subtask) error {
	return r.db.Save(st).Error
}

func (r *TaskRepository) DeleteSubtask(id int64) error {
	return r.db.Delete(&task.Subtask{}, id).Error
}

func (r *TaskRepository) UserByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &u, nil
}
