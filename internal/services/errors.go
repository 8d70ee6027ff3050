package services

import (
	"errors"
	"fmt"
)

// Error categories. Every domain error wraps exactly one of them so callers
// can branch on the category with errors.Is.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
)

// ServiceError is a domain error with a user-facing message
type ServiceError struct {
	Category error
	Message  string
	Err      error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Category, e.Err}
	}
	return []error{e.Category}
}

func newServiceError(category error, message string) *ServiceError {
	return &ServiceError{Category: category, Message: message}
}

var (
	ErrStudentNotFound        = newServiceError(ErrNotFound, "Student not found")
	ErrAdminNotFound          = newServiceError(ErrNotFound, "Admin not found")
	ErrCourseNotFound         = newServiceError(ErrNotFound, "Course not found")
	ErrModuleNotFound         = newServiceError(ErrNotFound, "Module not found")
	ErrNotEnrolled            = newServiceError(ErrConflict, "Student not enrolled in this course")
	ErrAlreadyEnrolled        = newServiceError(ErrConflict, "Already enrolled in this course")
	ErrModuleAlreadyCompleted = newServiceError(ErrConflict, "Module already completed")
	ErrDuplicateEmail         = newServiceError(ErrConflict, "Student already exists with this email")
	ErrAdminExists            = newServiceError(ErrConflict, "Admin already exists. Use login instead.")
	ErrInvalidCredentials     = newServiceError(ErrUnauthorized, "Invalid email or password")
	ErrAccountInactive        = newServiceError(ErrUnauthorized, "Account is deactivated")
	ErrInvalidToken           = newServiceError(ErrUnauthorized, "Not authorized, token failed")
	ErrIdentityNotFound       = newServiceError(ErrUnauthorized, "Not authorized, user not found")
	ErrAnalyticsForbidden     = newServiceError(ErrForbidden, "Not authorized to view analytics")
	ErrStudentsForbidden      = newServiceError(ErrForbidden, "Not authorized to manage students")
)

// ErrorMessage returns the user-facing message of a ServiceError, or fallback
func ErrorMessage(err error, fallback string) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return fallback
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
