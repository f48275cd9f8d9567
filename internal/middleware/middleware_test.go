package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/app/models/dto"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body
}

func TestErrorDetailFor_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"student not found", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"generic not found", apperrors.NewResourceNotFoundError("user not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"not enrolled", apperrors.NewCustomError(apperrors.ErrNotEnrolled, "x"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"validation", apperrors.NewValidationError("courseIds", "too many"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"prerequisites", apperrors.NewCustomError(apperrors.ErrPrerequisitesNotMet, "x"), http.StatusUnprocessableEntity, dto.ErrorCodePrerequisitesNotMet},
		{"inactive", apperrors.ErrInactiveStudent, http.StatusUnprocessableEntity, dto.ErrorCodeInactiveStudent},
		{"cycle", apperrors.NewCustomError(apperrors.ErrCycleDetected, "x"), http.StatusConflict, dto.ErrorCodeCycleDetected},
		{"stale version", apperrors.NewCustomError(apperrors.ErrConflict, "x"), http.StatusConflict, dto.ErrorCodeConflict},
		{"duplicate code", apperrors.ErrCourseCodeExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"course in use", apperrors.ErrCourseHasRelations, http.StatusConflict, dto.ErrorCodeConflict},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"expired token", fmt.Errorf("validate: %w", auth.ErrExpiredToken), http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"database", apperrors.Database("op", errors.New("conn refused")), http.StatusServiceUnavailable, dto.ErrorCodeDatabaseError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, detail := ErrorDetailFor(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, detail.Code)
		})
	}
}

func TestErrorDetailFor_CarriesCustomMessageAndDetails(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrPrerequisitesNotMet, "prerequisites not met for course CALC2").
		WithDetails(map[string]interface{}{"courseId": int64(2), "missing": []int64{1}})

	_, detail := ErrorDetailFor(err)
	assert.Equal(t, "prerequisites not met for course CALC2", detail.Message)
	assert.Equal(t, map[string]interface{}{"courseId": int64(2), "missing": []int64{1}}, detail.Details)

	_, detail = ErrorDetailFor(apperrors.NewValidationError("courseIds", "at most 20 courses per request"))
	assert.Equal(t, "courseIds", detail.Field)
}

func TestErrorDetailFor_HidesInfrastructureText(t *testing.T) {
	_, detail := ErrorDetailFor(apperrors.Database("StudentRepository.GetByID", errors.New("password authentication failed")))
	assert.NotContains(t, detail.Message, "password")
	assert.Nil(t, detail.Details)
}

func TestHandleAPIError_WritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/students/9", nil)

	HandleAPIError(c, apperrors.ErrStudentNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, body.Error.Code)
	assert.True(t, c.IsAborted())
}

func newAuthRouter(t *testing.T, roles ...models.RoleType) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "academia",
	})
	m := NewAuthMiddleware(jwtService)

	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": Actor(c), "userId": c.GetInt64(UserIDKey)})
	})
	r.GET("/protected", handlers...)
	return r, jwtService
}

func TestJWTAuth(t *testing.T) {
	r, jwtService := newAuthRouter(t)
	token, _, err := jwtService.GenerateAccessToken(&models.User{ID: 4, Username: "registrar", RoleType: models.RoleRegistrar})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		code   dto.ErrorCode
	}{
		{"missing header", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"no bearer prefix", token, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"valid", "Bearer " + token, http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.status, w.Code)
			if tc.code != "" {
				assert.Equal(t, tc.code, decodeError(t, w).Error.Code)
				return
			}
			assert.JSONEq(t, `{"actor":"registrar","userId":4}`, w.Body.String())
		})
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	r, _ := newAuthRouter(t)
	expired := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: -time.Minute, TokenIssuer: "academia"})
	token, _, err := expired.GenerateAccessToken(&models.User{ID: 1, Username: "admin", RoleType: models.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Error.Code)
}

func TestRoleRequired(t *testing.T) {
	r, jwtService := newAuthRouter(t, models.RoleAdmin)

	for role, want := range map[models.RoleType]int{
		models.RoleAdmin:     http.StatusOK,
		models.RoleRegistrar: http.StatusForbidden,
	} {
		token, _, err := jwtService.GenerateAccessToken(&models.User{ID: 1, Username: "u", RoleType: role})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, string(role))
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf strings.Builder
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zerolog.New(&buf)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Contains(t, buf.String(), generated)
	assert.Contains(t, buf.String(), `"status":204`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "caller-id", w.Header().Get(RequestIDHeader))
}

func TestRegisterDomainValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerDomainValidations(v))

	assert.NoError(t, v.Var("calc1", "coursecode"))
	assert.Error(t, v.Var("bad code!", "coursecode"))
	assert.NoError(t, v.Var("20230001", "enrollmentnumber"))
	assert.Error(t, v.Var("A1", "enrollmentnumber"))

	assert.NotPanics(t, RegisterValidators)
}

func TestBindJSONAndParseIDParam(t *testing.T) {
	RegisterValidators()

	r := gin.New()
	r.POST("/courses/:id", func(c *gin.Context) {
		id, ok := ParseIDParam(c, "id")
		if !ok {
			return
		}
		var req dto.CreateCourseRequest
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "code": req.Code})
	})

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("/courses/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decodeError(t, w).Error.Field)

	w = post("/courses/0", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post("/courses/1", `{"name":"Calculus","code":"calc 2!","credits":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, w).Error.Code)

	w = post("/courses/1", `{"name":"Calculus","code":"calc2","credits":5}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"code":"calc2"}`, w.Body.String())
}
