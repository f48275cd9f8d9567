package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/academia/internal/app/models/dto"
	"github.com/yigit/academia/internal/pkg/logger"
	"github.com/yigit/academia/internal/pkg/validation"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags used in request DTOs to gin's validator:
// coursecode and enrollmentnumber. A failed registration panics, since every
// DTO carrying those tags would otherwise be rejected at request time.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.Warn().Msg("Gin validator engine is not go-playground/validator, domain tags not registered")
			return
		}
		if err := registerDomainValidations(v); err != nil {
			logger.Error().Err(err).Msg("Failed to register request validators")
			panic(err)
		}
	})
}

func registerDomainValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("coursecode", func(fl validator.FieldLevel) bool {
		code := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
		return validation.CompiledPatterns.CourseCode.MatchString(code)
	}); err != nil {
		return fmt.Errorf("registering coursecode: %w", err)
	}
	if err := v.RegisterValidation("enrollmentnumber", func(fl validator.FieldLevel) bool {
		return validation.CompiledPatterns.EnrollmentNumber.MatchString(strings.TrimSpace(fl.Field().String()))
	}); err != nil {
		return fmt.Errorf("registering enrollmentnumber: %w", err)
	}
	return nil
}

// BindJSON binds and validates the request body into obj. On failure it writes
// a 400 response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleBindingError(c, err)
		return false
	}
	return true
}

// ParseIDParam reads a positive int64 path parameter. On failure it writes a
// 400 response and returns false.
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive integer")
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
