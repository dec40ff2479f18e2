package task

import (
	"time"

	"github.com/Yaroslav326/TaskManagement/internal/user"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task is created customer-owned; the employee field is set at most once,
// by the first successful claim.
type Task struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	DateStart  time.Time  `json:"date_start"`
	DateEnd    *time.Time `json:"date_end,omitempty"`
	CustomerID int64      `json:"customer_id"`
	EmployeeID *int64     `json:"employee_id,omitempty"`
	Remark     *string    `json:"remark,omitempty"`

	Customer *user.User `json:"-" gorm:"foreignKey:CustomerID"`
	Employee *user.User `json:"-" gorm:"foreignKey:EmployeeID"`
	Subtasks []Subtask  `json:"subtasks,omitempty" gorm:"foreignKey:TaskID"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) IsClaimed() bool {
	return t.EmployeeID != nil
}

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Subtask struct {
	ID             int64   `json:"id" gorm:"primaryKey"`
	TaskID         int64   `json:"task_id"`
	Title          string  `json:"title"`
	IsAccomplished bool    `json:"is_accomplished"`
	Remark         *string `json:"remark,omitempty"`
}

func (Subtask) TableName() string { return "subtasks" }
