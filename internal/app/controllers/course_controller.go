package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/app/models/dto"
	"github.com/yigit/academia/internal/app/services"
	"github.com/yigit/academia/internal/middleware"
)

// CourseController handles the course catalog and its prerequisite graph
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

// CreateCourse handles course creation
// @Summary Create a new course
// @Description Creates a course, optionally with an assigned professor and initial prerequisites
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse} "Course created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Professor or prerequisite course not found"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course := &models.Course{
		Name:        req.Name,
		Code:        req.Code,
		Credits:     req.Credits,
		ProfessorID: req.ProfessorID,
	}
	if err := c.courseService.CreateCourse(ctx, course, req.PrerequisiteIDs); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.FromCourse(course)))
}

// GetCourseByID retrieves a course by ID
// @Summary Get course details
// @Tags courses
// @Produce json
// @Param id path int true "Course ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID format"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourseByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.courseService.GetCourseByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourse(course)))
}

// GetAllCourses retrieves all courses
// @Summary Get all courses
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Courses retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *CourseController) GetAllCourses(ctx *gin.Context) {
	courses, err := c.courseService.GetAllCourses(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourses(courses)))
}

// UpdateCourse updates an existing course
// @Summary Update a course
// @Description Updates name, code and credits. version must match the stored record.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID" Format(int64) minimum(1)
// @Param request body dto.UpdateCourseRequest true "Updated course information"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Stale version or duplicate code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course := &models.Course{
		ID:      id,
		Version: req.Version,
		Name:    req.Name,
		Code:    req.Code,
		Credits: req.Credits,
	}
	if err := c.courseService.UpdateCourse(ctx, course); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	updated, err := c.courseService.GetCourseByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourse(updated)))
}

// DeleteCourse deletes a course
// @Summary Delete a course
// @Description A course that is a prerequisite of another course or has enrollments cannot be deleted
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Course deleted successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Course has dependent courses or enrollments"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.courseService.DeleteCourse(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Course deleted successfully"}))
}

// AssignProfessor sets or clears the course's professor
// @Summary Assign a professor to a course
// @Description A null professorId clears the assignment
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID" Format(int64) minimum(1)
// @Param request body dto.AssignProfessorRequest true "Professor ID or null"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Professor assignment updated"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course or professor not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/professor [put]
func (c *CourseController) AssignProfessor(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignProfessorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.AssignProfessor(ctx, id, req.ProfessorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourse(course)))
}

// AddPrerequisite adds a prerequisite edge
// @Summary Add a prerequisite to a course
// @Description Rejected with 409 when the edge would close a cycle. Adding an existing edge is a no-op.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID" Format(int64) minimum(1)
// @Param prerequisiteId path int true "Prerequisite course ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Prerequisite added"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Cycle detected"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/prerequisites/{prerequisiteId} [post]
func (c *CourseController) AddPrerequisite(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	prerequisiteID, ok := middleware.ParseIDParam(ctx, "prerequisiteId")
	if !ok {
		return
	}

	course, err := c.courseService.AddPrerequisite(ctx, id, prerequisiteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourse(course)))
}

// RemovePrerequisite removes a prerequisite edge
// @Summary Remove a prerequisite from a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID" Format(int64) minimum(1)
// @Param prerequisiteId path int true "Prerequisite course ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Prerequisite removed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course or edge not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/prerequisites/{prerequisiteId} [delete]
func (c *CourseController) RemovePrerequisite(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	prerequisiteID, ok := middleware.ParseIDParam(ctx, "prerequisiteId")
	if !ok {
		return
	}

	course, err := c.courseService.RemovePrerequisite(ctx, id, prerequisiteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourse(course)))
}

// GetPrerequisites lists a course's prerequisites
// @Summary List prerequisites of a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID" Format(int64) minimum(1)
// @Param transitive query bool false "Include indirect prerequisites"
// @Success 200 {object} dto.APIResponse{data=dto.PrerequisitesResponse} "Prerequisites retrieved"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/prerequisites [get]
func (c *CourseController) GetPrerequisites(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	transitive, _ := strconv.ParseBool(ctx.DefaultQuery("transitive", "false"))

	ids, err := c.courseService.GetPrerequisites(ctx, id, transitive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PrerequisitesResponse{
		CourseID:        id,
		Transitive:      transitive,
		PrerequisiteIDs: ids,
	}))
}

// CheckCycle reports whether an edge would create a cycle
// @Summary Check whether a prerequisite would create a cycle
// @Description Read-only. Non-positive ids answer false; equal ids answer true.
// @Tags courses
// @Produce json
// @Param courseId query int true "Course that would gain the prerequisite"
// @Param prerequisiteId query int true "Candidate prerequisite"
// @Success 200 {object} dto.APIResponse{data=dto.CycleCheckResponse} "Cycle check result"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID format"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/cycle-check [get]
func (c *CourseController) CheckCycle(ctx *gin.Context) {
	courseID, err := strconv.ParseInt(ctx.Query("courseId"), 10, 64)
	if err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	prerequisiteID, err := strconv.ParseInt(ctx.Query("prerequisiteId"), 10, 64)
	if err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	wouldCycle, err := c.courseService.WouldCreateCycle(ctx, courseID, prerequisiteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.CycleCheckResponse{
		CourseID:         courseID,
		PrerequisiteID:   prerequisiteID,
		WouldCreateCycle: wouldCycle,
	}))
}
