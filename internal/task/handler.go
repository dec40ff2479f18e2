package task

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Yaroslav326/TaskManagement/internal/auth"
	"github.com/Yaroslav326/TaskManagement/internal/transport"
	"github.com/Yaroslav326/TaskManagement/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateTask(customerID int64, dto CreateTaskDTO) (*Task, error)
	ListTasks(userID int64, filter ListFilter) ([]Task, error)
	GetTask(taskID int64) (*Task, error)
	EditTask(taskID int64, dto EditTaskDTO) (*Task, error)
	UpdateStatus(taskID int64, dto UpdateStatusDTO) (*Task, error)
	DeleteTask(taskID int64) error
	TakeTask(taskID int64, employee *auth.User) (*TakeTaskResponse, error)
	CreateSubtask(taskID int64, dto CreateSubtaskDTO) (*Subtask, error)
	EditSubtask(subtaskID int64, dto EditSubtaskDTO) (*Subtask, error)
	ToggleSubtask(subtaskID int64, dto ToggleSubtaskDTO) (*Subtask, error)
	DeleteSubtask(subtaskID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return principal, true
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.CreateTask(principal.ID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	filter := ListFilter{
		Status:    r.URL.Query().Get("status"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	tasks, err := h.Service.ListTasks(principal.ID, filter)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	taskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.Service.GetTask(taskID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) EditTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	taskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto EditTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.EditTask(taskID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	taskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.UpdateStatus(taskID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"new_status": t.Status,
	})
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	taskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteTask(taskID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) TakeTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	taskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.Service.TakeTask(taskID, principal)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	taskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto CreateSubtaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, err := h.Service.CreateSubtask(taskID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, st)
}

func (h *Handler) EditSubtask(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	subtaskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto EditSubtaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, err := h.Service.EditSubtask(subtaskID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	subtaskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto ToggleSubtaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, err := h.Service.ToggleSubtask(subtaskID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"is_completed": st.IsAccomplished,
	})
}

func (h *Handler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	subtaskID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteSubtask(subtaskID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	if _, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.HandleServiceError(w, err)
}
