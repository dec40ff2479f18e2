package company

import (
	"github.com/Yaroslav326/TaskManagement/internal/user"
)

// DefaultDepartmentName is the management department auto-created with
// every company, with the owner as its sole personnel.
const DefaultDepartmentName = "Аппарат управления"

type Company struct {
	ID      int64      `json:"id" gorm:"primaryKey"`
	Name    string     `json:"name"`
	OwnerID int64      `json:"owner_id"`
	Owner   *user.User `json:"-" gorm:"foreignKey:OwnerID"`
}

func (Company) TableName() string { return "companies" }

// Department belongs to exactly one company. A principal's company is
// derived from the departments it is personnel of; membership in more than
// one company is rejected at creation time, not at the data layer.
type Department struct {
	ID        int64       `json:"id" gorm:"primaryKey"`
	Name      string      `json:"name"`
	CompanyID int64       `json:"company_id"`
	Company   *Company    `json:"-" gorm:"foreignKey:CompanyID"`
	Personnel []user.User `json:"-" gorm:"many2many:department_personnel;"`
}

func (Department) TableName() string { return "departments" }
