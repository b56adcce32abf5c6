package utils

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Error codes surfaced to callers
const (
	ErrValidation    = "VALIDATION_ERROR"
	ErrNotFound      = "NOT_FOUND"
	ErrInvalidParent = "INVALID_PARENT"
	ErrConflict      = "CONFLICT"
	ErrUnauthorized  = "UNAUTHORIZED"
	ErrForbidden     = "FORBIDDEN"
	ErrDatabase      = "DATABASE_ERROR"
)

func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewNotFoundError(kind string, id uint) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found: %d", kind, id),
	}
}

func NewInvalidParentError(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrInvalidParent,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewForbiddenError(reason string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: "Forbidden: " + reason,
	}
}

// NewDatabaseError wraps a storage failure with the operation that hit it.
func NewDatabaseError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrDatabase,
		Message: "database error",
		Origin:  errors.Wrap(err, op),
	}
}

// CodeOf returns the AppError code anywhere in err's chain, or ErrDatabase
// for any other non-nil error.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrDatabase
}

func IsErrorCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// PublicMessage is the message safe to show a client. Storage details stay in logs.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != ErrDatabase {
		return appErr.Message
	}
	return "internal server error"
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrValidation, ErrInvalidParent:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus maps any error to the status its code implies.
func HTTPStatus(err error) int {
	return AppErrorToHTTPStatus(CodeOf(err))
}
