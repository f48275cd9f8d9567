package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/academia/internal/app/models/dto"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/auth"
	"github.com/yigit/academia/internal/pkg/logger"
)

// errorMapping ties a sentinel error to its HTTP status and response code
type errorMapping struct {
	err     error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first sentinel matched by errors.Is wins.
// Domain errors come before the generic conflict and not-found sentinels.
var errorMappings = []errorMapping{
	{apperrors.ErrPrerequisitesNotMet, http.StatusUnprocessableEntity, dto.ErrorCodePrerequisitesNotMet, "Prerequisites not met"},
	{apperrors.ErrInactiveStudent, http.StatusUnprocessableEntity, dto.ErrorCodeInactiveStudent, "Student is not active"},
	{apperrors.ErrCycleDetected, http.StatusConflict, dto.ErrorCodeCycleDetected, "Prerequisite would create a cycle"},

	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found"},
	{apperrors.ErrProfessorNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Professor not found"},
	{apperrors.ErrNotEnrolled, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student is not enrolled in course"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrCourseCodeExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Course code already exists"},
	{apperrors.ErrEnrollmentNumberAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Enrollment number already exists"},
	{apperrors.ErrEmployeeNumberAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Employee number already exists"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrCourseHasRelations, http.StatusConflict, dto.ErrorCodeConflict, "Course has dependent courses or enrollments"},
	{apperrors.ErrProfessorHasAssignedCourses, http.StatusConflict, dto.ErrorCodeConflict, "Professor has assigned courses"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{auth.ErrExpiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{auth.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	{apperrors.ErrDatabase, http.StatusServiceUnavailable, dto.ErrorCodeDatabaseError, "Database unavailable"},
}

// ErrorDetailFor maps err to an HTTP status and response body detail
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, m.message)
		// Infrastructure messages carry driver text and stay out of the body
		if m.status >= http.StatusInternalServerError {
			return m.status, detail
		}

		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			detail.Message = custom.Error()
			if len(custom.Details) > 0 {
				detail = detail.WithDetails(custom.Details)
				if field, ok := custom.Details["field"].(string); ok {
					detail = detail.WithField(field)
				}
			}
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		detail = detail.WithSeverity(dto.ErrorSeverityCritical)
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("requestId", c.GetString(RequestIDKey)).
			Int("status", status).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// HandleBindingError responds 400 for a request body or query that failed binding
func HandleBindingError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
