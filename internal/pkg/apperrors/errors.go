package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Infrastructure errors
	ErrDatabase = errors.New("database error")
)

// Student Errors
var (
	ErrStudentNotFound               = errors.New("student not found")
	ErrEnrollmentNumberAlreadyExists = errors.New("enrollment number already exists")
	ErrInactiveStudent               = errors.New("student is not active")
)

// Course Errors
var (
	ErrCourseNotFound       = errors.New("course not found")
	ErrCourseCodeExists     = errors.New("course code already exists")
	ErrCourseHasRelations   = errors.New("course has dependent courses or enrollments and cannot be deleted")
	ErrCycleDetected        = errors.New("prerequisite would create a cycle")
	ErrCorruptPrerequisites = errors.New("stored prerequisites contain a cycle")
	ErrPrerequisitesNotMet  = errors.New("prerequisites not met")
	ErrNotEnrolled          = errors.New("student is not enrolled in course")
)

// Professor Errors
var (
	ErrProfessorNotFound           = errors.New("professor not found")
	ErrEmployeeNumberAlreadyExists = errors.New("employee number already exists")
	ErrProfessorHasAssignedCourses = errors.New("professor has assigned courses and cannot be deleted")
)

// Person Errors
var (
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying the offending field.
func NewValidationError(field, message string) error {
	return NewCustomError(ErrValidationFailed, message).
		WithDetails(map[string]interface{}{"field": field})
}

// Database wraps an infrastructure failure. Both ErrDatabase and the driver error
// stay reachable through errors.Is / errors.As.
func Database(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrDatabase, err)
}

// IsNotFound reports whether err is any of the not-found conditions.
func IsNotFound(err error) bool {
	return Is(err, ErrResourceNotFound, ErrStudentNotFound, ErrCourseNotFound, ErrProfessorNotFound, ErrNotEnrolled)
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
