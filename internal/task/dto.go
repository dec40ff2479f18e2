package task

import "strings"

type CreateTaskDTO struct {
	Title  string  `json:"title"`
	Remark *string `json:"remark,omitempty"`
}

type EditTaskDTO struct {
	Title  string `json:"title"`
	Remark string `json:"remark"`
}

type UpdateStatusDTO struct {
	Status string `json:"new_status"`
}

// ListFilter narrows the caller's task listing.
type ListFilter struct {
	Status    string `json:"status,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type CreateSubtaskDTO struct {
	Title string `json:"subtask_title"`
}

type EditSubtaskDTO struct {
	Title string `json:"title"`
}

type ToggleSubtaskDTO struct {
	IsCompleted bool `json:"is_completed"`
}

// TakeTaskResponse reports the task's assignee after a claim attempt. When
// the task was already claimed the existing assignee is returned and the
// call is a no-op.
type TakeTaskResponse struct {
	TaskID         int64  `json:"task_id"`
	Employee       string `json:"employee"`
	AlreadyClaimed bool   `json:"already_claimed"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateTaskDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Msg: "title is required"}
	}
	return nil
}

func (d EditTaskDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Msg: "title is required"}
	}
	return nil
}

func (d UpdateStatusDTO) Validate() error {
	if !ValidStatus(d.Status) {
		return ValidationError{Msg: "invalid status"}
	}
	return nil
}

func (d CreateSubtaskDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Msg: "subtask title is required"}
	}
	return nil
}
