package company

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/user"
)

// Repository defines the data access methods for companies and departments.
type Repository interface {
	CreateCompany(ctx context.Context, c *Company, defaultDept *Department) error
	GetCompanyByID(ctx context.Context, id int64) (*Company, error)
	UpdateCompany(ctx context.Context, c *Company) error

	CreateDepartment(ctx context.Context, d *Department) error
	GetDepartmentByID(ctx context.Context, id int64) (*Department, error)
	UpdateDepartment(ctx context.Context, d *Department) error
	DeleteDepartment(ctx context.Context, id int64) error
	DepartmentsInCompany(ctx context.Context, companyID int64) ([]Department, error)

	DepartmentsFor(ctx context.Context, userID int64) ([]Department, error)
	IsMember(ctx context.Context, departmentID, userID int64) (bool, error)
	AddPersonnel(ctx context.Context, departmentID, userID int64) error
	RemovePersonnel(ctx context.Context, departmentID, userID int64) error
	PersonnelOf(ctx context.Context, departmentID int64) ([]user.User, error)

	UserByEmail(ctx context.Context, email string) (*user.User, error)
	UserByID(ctx context.Context, id int64) (*user.User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// companyIDFor derives the caller's company from its department
// memberships; zero means the principal is not in any company.
func (s *Service) companyIDFor(ctx context.Context, userID int64) (int64, error) {
	depts, err := s.repo.DepartmentsFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(depts) == 0 {
		return 0, nil
	}
	return depts[0].CompanyID, nil
}

// CreateCompany creates a company owned by the caller and auto-creates the
// default management department with the caller as sole personnel. A
// principal already in a company is rejected.
func (s *Service) CreateCompany(ctx context.Context, ownerID int64, dto CreateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.companyIDFor(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check memberships: %w", err)
	}
	if existing != 0 {
		return nil, internal.ErrAlreadyInCompany
	}

	c := &Company{Name: dto.Name, OwnerID: ownerID}
	dept := &Department{Name: DefaultDepartmentName}

	if err := s.repo.CreateCompany(ctx, c, dept); err != nil {
		s.logger.Error("failed to create company", "error", err, "owner_id", ownerID)
		return nil, err
	}

	s.logger.Info("company created",
		"company_id", c.ID,
		"owner_id", ownerID,
		"default_department_id", dept.ID)

	return c, nil
}

// Profile returns the company the caller belongs to, or nil when the
// caller is not in any company.
func (s *Service) Profile(ctx context.Context, userID int64) (*CompanyView, error) {
	companyID, err := s.companyIDFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if companyID == 0 {
		return nil, nil
	}

	c, err := s.repo.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, internal.ErrCompanyNotFound.WithCause(err)
	}

	owner, err := s.repo.UserByID(ctx, c.OwnerID)
	if err != nil {
		return nil, err
	}

	return &CompanyView{ID: c.ID, Name: c.Name, Owner: owner.DisplayName()}, nil
}

// EditCompany renames the caller's company and optionally transfers
// ownership. Only the current owner may edit.
func (s *Service) EditCompany(ctx context.Context, userID int64, dto EditCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	companyID, err := s.companyIDFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if companyID == 0 {
		return nil, internal.ErrCompanyNotFound
	}

	c, err := s.repo.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, internal.ErrCompanyNotFound.WithCause(err)
	}

	if c.OwnerID != userID {
		return nil, internal.ErrForbidden
	}

	c.Name = dto.Name
	if dto.OwnerID != nil {
		if _, err := s.repo.UserByID(ctx, *dto.OwnerID); err != nil {
			return nil, internal.ErrUserNotFound.WithCause(err)
		}
		c.OwnerID = *dto.OwnerID
	}

	if err := s.repo.UpdateCompany(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// ListDepartments returns every department of the caller's company.
func (s *Service) ListDepartments(ctx context.Context, userID int64) ([]DepartmentView, error) {
	companyID, err := s.companyIDFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if companyID == 0 {
		return []DepartmentView{}, nil
	}

	depts, err := s.repo.DepartmentsInCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, internal.ErrCompanyNotFound.WithCause(err)
	}

	views := make([]DepartmentView, 0, len(depts))
	for _, d := range depts {
		views = append(views, DepartmentView{ID: d.ID, Name: d.Name, CompanyName: c.Name})
	}
	return views, nil
}

// CreateDepartment adds a department to the caller's company.
func (s *Service) CreateDepartment(ctx context.Context, userID int64, dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	companyID, err := s.companyIDFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if companyID == 0 {
		return nil, internal.ErrNotMember
	}

	d := &Department{Name: dto.Name, CompanyID: companyID}
	if err := s.repo.CreateDepartment(ctx, d); err != nil {
		s.logger.Error("failed to create department", "error", err, "company_id", companyID)
		return nil, err
	}

	return d, nil
}

// ViewDepartment lists a department's personnel; only members of the same
// company may look.
func (s *Service) ViewDepartment(ctx context.Context, userID, departmentID int64) ([]user.User, error) {
	d, err := s.repo.GetDepartmentByID(ctx, departmentID)
	if err != nil {
		return nil, internal.ErrDepartmentNotFound.WithCause(err)
	}

	companyID, err := s.companyIDFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if companyID == 0 || d.CompanyID != companyID {
		return nil, internal.ErrForbidden
	}

	return s.repo.PersonnelOf(ctx, departmentID)
}

// EditDepartment renames a department of the caller's company.
func (s *Service) EditDepartment(ctx context.Context, userID, departmentID int64, dto EditDepartmentDTO) (*Department, error) {
	if dto.Name == "" {
		return nil, ValidationError{Msg: "name is required"}
	}

	d, err := s.repo.GetDepartmentByID(ctx, departmentID)
	if err != nil {
		return nil, internal.ErrDepartmentNotFound.WithCause(err)
	}

	companyID, err := s.companyIDFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if companyID == 0 || d.CompanyID != companyID {
		return nil, internal.ErrForbidden
	}

	d.Name = dto.Name
	if err := s.repo.UpdateDepartment(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDepartment removes a department; only the company owner may do it.
func (s *Service) DeleteDepartment(ctx context.Context, userID, departmentID int64) error {
	d, err := s.repo.GetDepartmentByID(ctx, departmentID)
	if err != nil {
		return internal.ErrDepartmentNotFound.WithCause(err)
	}

	c, err := s.repo.GetCompanyByID(ctx, d.CompanyID)
	if err != nil {
		return internal.ErrCompanyNotFound.WithCause(err)
	}
	if c.OwnerID != userID {
		return internal.ErrForbidden
	}

	if err := s.repo.DeleteDepartment(ctx, departmentID); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", departmentID)
		return err
	}
	return nil
}

// AddPersonnel adds a principal (looked up by email) to a department of the
// caller's company.
func (s *Service) AddPersonnel(ctx context.Context, userID, departmentID int64, dto AddPersonnelDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetDepartmentByID(ctx, departmentID)
	if err != nil {
		return nil, internal.ErrDepartmentNotFound.WithCause(err)
	}

	companyID, err := s.companyIDFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if companyID == 0 || d.CompanyID != companyID {
		return nil, internal.ErrForbidden
	}

	newPersonnel, err := s.repo.UserByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.ErrUserNotFound.WithCause(err)
	}

	if err := s.repo.AddPersonnel(ctx, departmentID, newPersonnel.ID); err != nil {
		return nil, err
	}

	s.logger.Info("personnel added",
		"department_id", departmentID,
		"user_id", newPersonnel.ID)

	return newPersonnel, nil
}

// RemovePersonnel removes a principal from a department of the caller's
// company.
func (s *Service) RemovePersonnel(ctx context.Context, userID, departmentID, targetUserID int64) error {
	d, err := s.repo.GetDepartmentByID(ctx, departmentID)
	if err != nil {
		return internal.ErrDepartmentNotFound.WithCause(err)
	}

	companyID, err := s.companyIDFor(ctx, userID)
	if err != nil {
		return err
	}
	if companyID == 0 || d.CompanyID != companyID {
		return internal.ErrForbidden
	}

	return s.repo.RemovePersonnel(ctx, departmentID, targetUserID)
}

// DepartmentsFor exposes the caller's memberships; the chat room resolver
// consults this on every connection attempt.
func (s *Service) DepartmentsFor(ctx context.Context, userID int64) ([]Department, error) {
	return s.repo.DepartmentsFor(ctx, userID)
}

// DepartmentByID loads a department for room resolution.
func (s *Service) DepartmentByID(ctx context.Context, id int64) (*Department, error) {
	return s.repo.GetDepartmentByID(ctx, id)
}

// IsMember reports whether the principal is personnel of the department.
func (s *Service) IsMember(ctx context.Context, departmentID, userID int64) (bool, error) {
	return s.repo.IsMember(ctx, departmentID, userID)
}
