package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
)

// ProfessorService defines the interface for professor record operations
type ProfessorService interface {
	CreateProfessor(ctx context.Context, professor *models.Professor) error
	GetProfessorByID(ctx context.Context, id int64) (*models.Professor, error)
	GetAllProfessors(ctx context.Context) ([]*models.Professor, error)
	UpdateProfessor(ctx context.Context, professor *models.Professor) error
	DeleteProfessor(ctx context.Context, id int64) error
}

// professorServiceImpl implements the ProfessorService interface
type professorServiceImpl struct {
	professorRepo ProfessorRepository
}

// NewProfessorService creates a new professor service instance
func NewProfessorService(professorRepo ProfessorRepository) ProfessorService {
	return &professorServiceImpl{professorRepo: professorRepo}
}

// validateProfessor validates professor data before database operations
func (s *professorServiceImpl) validateProfessor(professor *models.Professor) error {
	if professor == nil {
		return fmt.Errorf("%w: professor is nil", apperrors.ErrValidationFailed)
	}
	if err := validatePerson(&professor.Person); err != nil {
		return err
	}

	professor.EmployeeNumber = strings.TrimSpace(professor.EmployeeNumber)
	if professor.EmployeeNumber == "" {
		return apperrors.NewValidationError("employeeNumber", "employee number is required")
	}

	professor.Department = strings.TrimSpace(professor.Department)
	if professor.Department == "" {
		return apperrors.NewValidationError("department", "department is required")
	}
	return nil
}

// CreateProfessor creates a new professor
func (s *professorServiceImpl) CreateProfessor(ctx context.Context, professor *models.Professor) error {
	if err := s.validateProfessor(professor); err != nil {
		return err
	}
	return s.professorRepo.Create(ctx, professor)
}

// GetProfessorByID retrieves a professor by ID
func (s *professorServiceImpl) GetProfessorByID(ctx context.Context, id int64) (*models.Professor, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	return s.professorRepo.GetByID(ctx, id)
}

// GetAllProfessors retrieves all professors
func (s *professorServiceImpl) GetAllProfessors(ctx context.Context) ([]*models.Professor, error) {
	return s.professorRepo.GetAll(ctx)
}

// UpdateProfessor updates a professor. professor.Version must match the stored row.
func (s *professorServiceImpl) UpdateProfessor(ctx context.Context, professor *models.Professor) error {
	if err := s.validateProfessor(professor); err != nil {
		return err
	}
	if err := validateID("id", professor.ID); err != nil {
		return err
	}
	if professor.Version <= 0 {
		return apperrors.NewValidationError("version", "version is required")
	}
	return s.professorRepo.Update(ctx, professor)
}

// DeleteProfessor deletes a professor that has no assigned courses
func (s *professorServiceImpl) DeleteProfessor(ctx context.Context, id int64) error {
	if err := validateID("id", id); err != nil {
		return err
	}

	if _, err := s.professorRepo.GetByID(ctx, id); err != nil {
		return err
	}

	assigned, err := s.professorRepo.HasAssignedCourses(ctx, id)
	if err != nil {
		return err
	}
	if assigned {
		return apperrors.ErrProfessorHasAssignedCourses
	}

	return s.professorRepo.Delete(ctx, id)
}
