package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/app/models/dto"
	"github.com/yigit/academia/internal/app/services"
	"github.com/yigit/academia/internal/middleware"
	"github.com/yigit/academia/internal/pkg/helpers"
)

// StudentController handles student records and their enrollments
type StudentController struct {
	studentService    services.StudentService
	enrollmentService services.EnrollmentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, enrollmentService services.EnrollmentService) *StudentController {
	return &StudentController{
		studentService:    studentService,
		enrollmentService: enrollmentService,
	}
}

// CreateStudent handles student creation
// @Summary Create a new student
// @Description Creates an ACTIVE student. The caller is recorded as creator.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse} "Student created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 409 {object} dto.ErrorResponse "Enrollment number or email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student := &models.Student{
		Person:           req.ToPerson(),
		EnrollmentNumber: req.EnrollmentNumber,
	}
	if err := c.studentService.CreateStudent(ctx, student, middleware.Actor(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.FromStudent(student)))
}

// ListStudents lists students page by page
// @Summary List students
// @Description Lists students ordered by id, optionally filtered by status
// @Tags students
// @Produce json
// @Param status query string false "Filter by status" Enums(ACTIVE, INACTIVE)
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse} "Students retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid status filter or page window"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	window, err := helpers.BindPageQuery(ctx)
	if err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	filter := models.StudentFilter{Offset: window.Offset(), Limit: window.Limit()}
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		s := models.StudentStatus(strings.ToUpper(status))
		filter.Status = &s
	}

	students, total, err := c.studentService.ListStudents(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.StudentListResponse{
		Students:       dto.FromStudents(students),
		PaginationInfo: window.Info(total),
	}))
}

// GetStudentByID retrieves a student by ID
// @Summary Get student details
// @Tags students
// @Produce json
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID format"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudentByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromStudent(student)))
}

// GetStudentByEnrollmentNumber retrieves a student by enrollment number
// @Summary Find a student by enrollment number
// @Tags students
// @Produce json
// @Param number path string true "Enrollment number"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/enrollment-number/{number} [get]
func (c *StudentController) GetStudentByEnrollmentNumber(ctx *gin.Context) {
	student, err := c.studentService.GetStudentByEnrollmentNumber(ctx, ctx.Param("number"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromStudent(student)))
}

// UpdateStudent updates an existing student
// @Summary Update a student
// @Description Replaces personal data and enrollment number. version must match the stored record.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param request body dto.UpdateStudentRequest true "Updated student information"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Stale version or duplicate enrollment number"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student := &models.Student{
		ID:               id,
		Version:          req.Version,
		Person:           req.ToPerson(),
		EnrollmentNumber: req.EnrollmentNumber,
	}
	if err := c.studentService.UpdateStudent(ctx, student, middleware.Actor(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromStudent(student)))
}

// DeactivateStudent marks a student INACTIVE
// @Summary Deactivate a student
// @Description Sets the status to INACTIVE and records the caller, date and reason
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param request body dto.DeactivateStudentRequest true "Deactivation reason"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student deactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student already inactive"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/deactivate [post]
func (c *StudentController) DeactivateStudent(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.DeactivateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.DeactivateStudent(ctx, id, req.Reason, middleware.Actor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromStudent(student)))
}

// GetStudentWithLock reads a student under a row lock
// @Summary Get a student with a pessimistic lock
// @Description Reads the student with SELECT ... FOR UPDATE inside a short transaction
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/lock [get]
func (c *StudentController) GetStudentWithLock(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudentWithLock(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromStudent(student)))
}

// GetStudentCourses lists the courses a student is enrolled in
// @Summary List a student's courses
// @Tags students
// @Produce json
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Courses retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/courses [get]
func (c *StudentController) GetStudentCourses(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	courses, err := c.studentService.GetStudentCourses(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourses(courses)))
}

// Enroll enrolls a student in a batch of courses
// @Summary Enroll a student in courses
// @Description All-or-nothing: every course must exist and every prerequisite must already be
// @Description held by the student before the call. Courses already held are skipped.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param request body dto.EnrollRequest true "Course IDs"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrollment applied"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 422 {object} dto.ErrorResponse "Prerequisites not met or student inactive"
// @Failure 503 {object} dto.ErrorResponse "Database unavailable"
// @Router /students/{id}/enrollments [post]
func (c *StudentController) Enroll(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.EnrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.enrollmentService.Enroll(ctx, id, req.CourseIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	added := result.Added
	if added == nil {
		added = []int64{}
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.EnrollmentResponse{
		StudentID:       result.StudentID,
		EnrolledCourses: result.EnrolledCourseIDs,
		Added:           added,
	}))
}

// Unenroll removes one course from a student
// @Summary Unenroll a student from a course
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param courseId path int true "Course ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Enrollment removed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student not enrolled in course"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/enrollments/{courseId} [delete]
func (c *StudentController) Unenroll(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	courseID, ok := middleware.ParseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.enrollmentService.Unenroll(ctx, id, courseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Enrollment removed"}))
}
