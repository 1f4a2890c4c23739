package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound           = new(ErrCodeNotFound, "resource not found")
	ErrValidation         = new(ErrCodeValidation, "validation error")
	ErrTemplate           = new(ErrCodeTemplate, "template error")
	ErrPackageUnavailable = new(ErrCodePackageUnavailable, "package unavailable")
	ErrCompile            = new(ErrCodeCompile, "compile error")
	ErrHTTPClient         = new(ErrCodeHTTPClient, "http client error")
	ErrSystem             = new(ErrCodeSystemError, "system error")
)

const (
	ErrCodeNotFound           = "not_found"
	ErrCodeValidation         = "validation_error"
	ErrCodeTemplate           = "template_error"
	ErrCodePackageUnavailable = "package_unavailable"
	ErrCodeCompile            = "compile_error"
	ErrCodeHTTPClient         = "http_client_error"
	ErrCodeSystemError        = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTemplate checks if an error is a template error
func IsTemplate(err error) bool {
	return errors.Is(err, ErrTemplate)
}

// IsPackageUnavailable checks if an error is a package availability error
func IsPackageUnavailable(err error) bool {
	return errors.Is(err, ErrPackageUnavailable)
}

// IsCompile checks if an error is a compile error
func IsCompile(err error) bool {
	return errors.Is(err, ErrCompile)
}
