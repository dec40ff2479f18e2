package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeEmptyMessage     ErrorCode = "EMPTY_MESSAGE"
	ErrCodeMessageTooLong   ErrorCode = "MESSAGE_TOO_LONG"

	ErrCodeMissingToken     ErrorCode = "MISSING_TOKEN"
	ErrCodeMalformedToken   ErrorCode = "MALFORMED_TOKEN"
	ErrCodeTokenExpired     ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"

	ErrCodeNotMember    ErrorCode = "NOT_MEMBER"
	ErrCodeRoomNotFound ErrorCode = "ROOM_NOT_FOUND"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeInvalidRoom  ErrorCode = "INVALID_ROOM"

	ErrCodeTaskNotFound       ErrorCode = "TASK_NOT_FOUND"
	ErrCodeSubtaskNotFound    ErrorCode = "SUBTASK_NOT_FOUND"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeCompanyNotFound    ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"

	ErrCodeAlreadyInCompany   ErrorCode = "ALREADY_IN_COMPANY"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
)

type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches by error code, so a sentinel compares equal to its WithCause
// clones.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrMissingToken     = NewUnauthorizedError("Authorization required", ErrCodeMissingToken)
	ErrMalformedToken   = NewUnauthorizedError("Invalid token", ErrCodeMalformedToken)
	ErrTokenExpired     = NewUnauthorizedError("Token expired", ErrCodeTokenExpired)
	ErrInvalidSignature = NewUnauthorizedError("Invalid token signature", ErrCodeInvalidSignature)

	ErrNotMember    = NewForbiddenError("User is not assigned to any company", ErrCodeNotMember)
	ErrRoomNotFound = NewNotFoundError("Room not found", ErrCodeRoomNotFound)
	ErrForbidden    = NewForbiddenError("Permission denied", ErrCodeForbidden)
	ErrInvalidRoom  = NewValidationError("Invalid room name", ErrCodeInvalidRoom)

	ErrEmptyMessage   = NewValidationError("Message must not be empty", ErrCodeEmptyMessage)
	ErrMessageTooLong = NewValidationError("Message exceeds maximum length", ErrCodeMessageTooLong)

	ErrTaskNotFound       = NewNotFoundError("Task not found", ErrCodeTaskNotFound)
	ErrSubtaskNotFound    = NewNotFoundError("Subtask not found", ErrCodeSubtaskNotFound)
	ErrDepartmentNotFound = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrCompanyNotFound    = NewNotFoundError("Company not found", ErrCodeCompanyNotFound)
	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)

	ErrAlreadyInCompany   = NewConflictError("You are already in a company", ErrCodeAlreadyInCompany)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrEmailTaken         = NewConflictError("User with this email already exists", ErrCodeEmailTaken)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType `json:"type"`
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
	})
}
