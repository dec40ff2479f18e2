package user

import "strings"

// UpdateAccountDTO carries profile edits. Password is optional: empty means
// keep the current credential.
type UpdateAccountDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d UpdateAccountDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return ValidationError{Msg: "a valid email is required"}
	}
	if d.Password != "" && len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	return nil
}
