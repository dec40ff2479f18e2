package company

import "strings"

type CreateCompanyDTO struct {
	Name string `json:"name"`
}

type EditCompanyDTO struct {
	Name    string `json:"name"`
	OwnerID *int64 `json:"owner_id,omitempty"`
}

type CreateDepartmentDTO struct {
	Name string `json:"name"`
}

type EditDepartmentDTO struct {
	Name string `json:"name"`
}

type AddPersonnelDTO struct {
	Email string `json:"email"`
}

// DepartmentView is the transport shape for department listings.
type DepartmentView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

type CompanyView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateCompanyDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "company name is required"}
	}
	return nil
}

func (d EditCompanyDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}

func (d CreateDepartmentDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "department name is required"}
	}
	return nil
}

func (d AddPersonnelDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return ValidationError{Msg: "email is required"}
	}
	return nil
}
