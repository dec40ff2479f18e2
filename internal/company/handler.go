package company

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Yaroslav326/TaskManagement/internal/auth"
	"github.com/Yaroslav326/TaskManagement/internal/transport"
	"github.com/Yaroslav326/TaskManagement/internal/user"
	"github.com/Yaroslav326/TaskManagement/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateCompany(ctx context.Context, ownerID int64, dto CreateCompanyDTO) (*Company, error)
	Profile(ctx context.Context, userID int64) (*CompanyView, error)
	EditCompany(ctx context.Context, userID int64, dto EditCompanyDTO) (*Company, error)
	ListDepartments(ctx context.Context, userID int64) ([]DepartmentView, error)
	CreateDepartment(ctx context.Context, userID int64, dto CreateDepartmentDTO) (*Department, error)
	ViewDepartment(ctx context.Context, userID, departmentID int64) ([]user.User, error)
	EditDepartment(ctx context.Context, userID, departmentID int64, dto EditDepartmentDTO) (*Department, error)
	DeleteDepartment(ctx context.Context, userID, departmentID int64) error
	AddPersonnel(ctx context.Context, userID, departmentID int64, dto AddPersonnelDTO) (*user.User, error)
	RemovePersonnel(ctx context.Context, userID, departmentID, targetUserID int64) error
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

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreateCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.CreateCompany(r.Context(), principal.ID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	view, err := h.Service.Profile(r.Context(), principal.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"company": view})
}

func (h *Handler) EditCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto EditCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.EditCompany(r.Context(), principal.ID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	depts, err := h.Service.ListDepartments(r.Context(), principal.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": depts})
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.CreateDepartment(r.Context(), principal.ID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{"department": d})
}

func (h *Handler) ViewDepartment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	departmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	personnel, err := h.Service.ViewDepartment(r.Context(), principal.ID, departmentID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": personnel})
}

func (h *Handler) EditDepartment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	departmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto EditDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.EditDepartment(r.Context(), principal.ID, departmentID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"department": d})
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	departmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteDepartment(r.Context(), principal.ID, departmentID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) AddPersonnel(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	departmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto AddPersonnelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := h.Service.AddPersonnel(r.Context(), principal.ID, departmentID, dto)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user_id": added.ID,
	})
}

func (h *Handler) RemovePersonnel(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	departmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	targetID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.Service.RemovePersonnel(r.Context(), principal.ID, departmentID, targetID); err != nil {
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
