package postgres

import (
	"context"
	"errors"

	"github.com/Yaroslav326/TaskManagement/internal/company"
	"github.com/Yaroslav326/TaskManagement/internal/user"
	"gorm.io/gorm"
)

// CompanyRepository implements the company.Repository interface using GORM
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.Repository {
	return &CompanyRepository{db: db}
}

// CreateCompany creates the company together with its default department
// and the owner membership in one transaction.
func (r *CompanyRepository) CreateCompany(ctx context.Context, c *company.Company, defaultDept *company.Department) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		defaultDept.CompanyID = c.ID
		if err := tx.Create(defaultDept).Error; err != nil {
			return err
		}
		member := user.User{ID: c.OwnerID}
		return tx.Model(defaultDept).Association("Personnel").Append(&member)
	})
}

func (r *CompanyRepository) GetCompanyByID(ctx context.Context, id int64) (*company.Company, error) {
	var c company.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("company not found")
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) UpdateCompany(ctx context.Context, c *company.Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CompanyRepository) CreateDepartment(ctx context.Context, d *company.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *CompanyRepository) GetDepartmentByID(ctx context.Context, id int64) (*company.Department, error) {
	var d company.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("department not found")
		}
		return nil, err
	}
	return &d, nil
}

func (r *CompanyRepository) UpdateDepartment(ctx context.Context, d *company.Department) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// DeleteDepartment clears the personnel associations before removing the
// department row.
func (r *CompanyRepository) DeleteDepartment(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := company.Department{ID: id}
		if err := tx.Model(&d).Association("Personnel").Clear(); err != nil {
			return err
		}
		return tx.Delete(&company.Department{}, id).Error
	})
}

func (r *CompanyRepository) DepartmentsInCompany(ctx context.Context, companyID int64) ([]company.Department, error) {
	var depts []company.Department
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&depts).Error
	return depts, err
}

func (r *CompanyRepository) DepartmentsFor(ctx context.Context, userID int64) ([]company.Department, error) {
	var depts []company.Department
	err := r.db.WithContext(ctx).
		Joins("JOIN department_personnel dp ON dp.department_id = departments.id").
		Where("dp.user_id = ?", userID).
		Order("departments.id ASC").
		Find(&depts).Error
	return depts, err
}

func (r *CompanyRepository) IsMember(ctx context.Context, departmentID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("department_personnel").
		Where("department_id = ? AND user_id = ?", departmentID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *CompanyRepository) AddPersonnel(ctx context.Context, departmentID, userID int64) error {
	d := company.Department{ID: departmentID}
	member := user.User{ID: userID}
	return r.db.WithContext(ctx).Model(&d).Association("Personnel").Append(&member)
}

func (r *CompanyRepository) RemovePersonnel(ctx context.Context, departmentID, userID int64) error {
	d := company.Department{ID: departmentID}
	member := user.User{ID: userID}
	return r.db.WithContext(ctx).Model(&d).Association("Personnel").Delete(&member)
}

func (r *CompanyRepository) PersonnelOf(ctx context.Context, departmentID int64) ([]user.User, error) {
	var members []user.User
	d := company.Department{ID: departmentID}
	err := r.db.WithContext(ctx).Model(&d).Association("Personnel").Find(&members)
	return members, err
}

func (r *CompanyRepository) UserByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &u, nil
}

func (r *CompanyRepository) UserByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &u, nil
}
