package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/app/models/dto"
	"github.com/yigit/academia/internal/app/services"
	"github.com/yigit/academia/internal/middleware"
)

// ProfessorController handles professor-related operations
type ProfessorController struct {
	professorService services.ProfessorService
}

// NewProfessorController creates a new ProfessorController
func NewProfessorController(professorService services.ProfessorService) *ProfessorController {
	return &ProfessorController{
		professorService: professorService,
	}
}

func professorFromRequest(req dto.ProfessorRequest) *models.Professor {
	return &models.Professor{
		Person:         req.ToPerson(),
		EmployeeNumber: req.EmployeeNumber,
		Department:     req.Department,
		Version:        req.Version,
	}
}

// CreateProfessor handles professor creation
// @Summary Create a new professor
// @Tags professors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProfessorRequest true "Professor information"
// @Success 201 {object} dto.APIResponse{data=dto.ProfessorResponse} "Professor created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 409 {object} dto.ErrorResponse "Employee number or email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors [post]
func (c *ProfessorController) CreateProfessor(ctx *gin.Context) {
	var req dto.ProfessorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	professor := professorFromRequest(req)
	if err := c.professorService.CreateProfessor(ctx, professor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.FromProfessor(professor)))
}

// GetProfessorByID retrieves a professor by ID
// @Summary Get professor details
// @Tags professors
// @Produce json
// @Param id path int true "Professor ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ProfessorResponse} "Professor retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid professor ID format"
// @Failure 404 {object} dto.ErrorResponse "Professor not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors/{id} [get]
func (c *ProfessorController) GetProfessorByID(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	professor, err := c.professorService.GetProfessorByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromProfessor(professor)))
}

// GetAllProfessors retrieves all professors
// @Summary Get all professors
// @Tags professors
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.ProfessorResponse} "Professors retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors [get]
func (c *ProfessorController) GetAllProfessors(ctx *gin.Context) {
	professors, err := c.professorService.GetAllProfessors(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromProfessors(professors)))
}

// UpdateProfessor updates an existing professor
// @Summary Update a professor
// @Description Replaces the professor's data. version must match the stored record.
// @Tags professors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Professor ID" Format(int64) minimum(1)
// @Param request body dto.ProfessorRequest true "Updated professor information"
// @Success 200 {object} dto.APIResponse{data=dto.ProfessorResponse} "Professor updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Professor not found"
// @Failure 409 {object} dto.ErrorResponse "Stale version or duplicate employee number"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors/{id} [put]
func (c *ProfessorController) UpdateProfessor(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ProfessorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	professor := professorFromRequest(req)
	professor.ID = id
	if err := c.professorService.UpdateProfessor(ctx, professor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromProfessor(professor)))
}

// DeleteProfessor deletes a professor
// @Summary Delete a professor
// @Description A professor still assigned to courses cannot be deleted
// @Tags professors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Professor ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Professor deleted successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Professor not found"
// @Failure 409 {object} dto.ErrorResponse "Professor has assigned courses"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors/{id} [delete]
func (c *ProfessorController) DeleteProfessor(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.professorService.DeleteProfessor(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Professor deleted successfully"}))
}
