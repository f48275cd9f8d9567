package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/prereqgraph"
	"github.com/yigit/academia/internal/pkg/validation"
)

// CourseService defines the interface for course catalog operations
type CourseService interface {
	CreateCourse(ctx context.Context, course *models.Course, prerequisiteIDs []int64) error
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	GetAllCourses(ctx context.Context) ([]*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id int64) error
	AssignProfessor(ctx context.Context, courseID int64, professorID *int64) (*models.Course, error)

	AddPrerequisite(ctx context.Context, courseID, prerequisiteID int64) (*models.Course, error)
	RemovePrerequisite(ctx context.Context, courseID, prerequisiteID int64) (*models.Course, error)
	GetPrerequisites(ctx context.Context, courseID int64, transitive bool) ([]int64, error)
	WouldCreateCycle(ctx context.Context, courseID, candidateID int64) (bool, error)
	VerifyPrerequisiteGraph(ctx context.Context) error
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	courseRepo    CourseRepository
	professorRepo ProfessorRepository
	txManager     TxManager
}

// NewCourseService creates a new course service instance
func NewCourseService(courseRepo CourseRepository, professorRepo ProfessorRepository, txManager TxManager) CourseService {
	return &courseServiceImpl{
		courseRepo:    courseRepo,
		professorRepo: professorRepo,
		txManager:     txManager,
	}
}

// validateCourse validates course data before database operations
func (s *courseServiceImpl) validateCourse(course *models.Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", apperrors.ErrValidationFailed)
	}

	course.Name = strings.TrimSpace(course.Name)
	course.Code = strings.ToUpper(strings.TrimSpace(course.Code))

	if !validation.NewStringValidation(course.Name).WithMaxLength(validation.CourseNameMaxLength).Validate() {
		return apperrors.NewValidationError("name", "name is required and must be at most 100 characters")
	}
	if !validation.NewStringValidation(course.Code).WithPattern(validation.CompiledPatterns.CourseCode).Validate() {
		return apperrors.NewValidationError("code", "code must be 2-20 uppercase letters, digits or dashes")
	}
	if !validation.NewNumericValidation(course.Credits).WithMin(validation.CreditsMin).WithMax(validation.CreditsMax).Validate() {
		return apperrors.NewValidationError("credits", "credits must be between 1 and 30")
	}
	if course.ProfessorID != nil && *course.ProfessorID <= 0 {
		return apperrors.NewValidationError("professorId", "professor ID must be positive")
	}
	return nil
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError(field, field+" must be positive")
	}
	return nil
}

// CreateCourse creates a course and its initial prerequisite edges in one transaction
func (s *courseServiceImpl) CreateCourse(ctx context.Context, course *models.Course, prerequisiteIDs []int64) error {
	if err := s.validateCourse(course); err != nil {
		return err
	}
	for _, id := range prerequisiteIDs {
		if err := validateID("prerequisiteIds", id); err != nil {
			return err
		}
	}
	prerequisiteIDs = uniqueInOrder(prerequisiteIDs)

	return s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		if course.ProfessorID != nil {
			if _, err := repos.Professors.GetByID(ctx, *course.ProfessorID); err != nil {
				return err
			}
		}

		if err := repos.Courses.Create(ctx, course); err != nil {
			return err
		}
		if len(prerequisiteIDs) == 0 {
			course.PrerequisiteIDs = []int64{}
			course.PrerequisiteOf = []int64{}
			return nil
		}

		if err := repos.Courses.LockPrerequisiteGraph(ctx); err != nil {
			return err
		}
		prereqs, err := repos.Courses.GetByIDs(ctx, prerequisiteIDs)
		if err != nil {
			return err
		}
		edges, err := repos.Courses.PrerequisiteEdges(ctx)
		if err != nil {
			return err
		}
		graph := prereqgraph.FromEdges(edges)

		for _, prereqID := range prerequisiteIDs {
			if _, ok := prereqs[prereqID]; !ok {
				return apperrors.NewCustomError(apperrors.ErrCourseNotFound,
					fmt.Sprintf("prerequisite course %d not found", prereqID)).
					WithDetails(map[string]interface{}{"courseId": prereqID})
			}
			if graph.WouldCreateCycle(course.ID, prereqID) {
				return cycleError(course.ID, prereqID)
			}
			if err := repos.Courses.AddPrerequisite(ctx, course.ID, prereqID); err != nil {
				return err
			}
			graph.AddEdge(course.ID, prereqID)
		}

		course.PrerequisiteIDs = sortedIDs(graph.Prerequisites(course.ID))
		course.PrerequisiteOf = []int64{}
		return nil
	})
}

// GetCourseByID retrieves a course with its assigned professor
func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if course.ProfessorID != nil {
		professor, err := s.professorRepo.GetByID(ctx, *course.ProfessorID)
		if err == nil {
			course.Professor = professor
		} else if !errors.Is(err, apperrors.ErrProfessorNotFound) {
			return nil, err
		}
	}

	return course, nil
}

// GetAllCourses retrieves all courses
func (s *courseServiceImpl) GetAllCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.GetAll(ctx)
}

// UpdateCourse updates name, code and credits. course.Version must match the stored row.
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, course *models.Course) error {
	if err := s.validateCourse(course); err != nil {
		return err
	}
	if err := validateID("id", course.ID); err != nil {
		return err
	}

	return s.courseRepo.Update(ctx, course)
}

// DeleteCourse deletes a course that no other course requires and no student holds
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id int64) error {
	if err := validateID("id", id); err != nil {
		return err
	}

	return s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		if err := repos.Courses.LockPrerequisiteGraph(ctx); err != nil {
			return err
		}
		if _, err := repos.Courses.LockByID(ctx, id); err != nil {
			return err
		}

		hasDependents, err := repos.Courses.HasDependents(ctx, id)
		if err != nil {
			return err
		}
		if hasDependents {
			return apperrors.ErrCourseHasRelations
		}

		return repos.Courses.Delete(ctx, id)
	})
}

// AssignProfessor sets or clears (professorID == nil) the course's assigned professor
func (s *courseServiceImpl) AssignProfessor(ctx context.Context, courseID int64, professorID *int64) (*models.Course, error) {
	if err := validateID("id", courseID); err != nil {
		return nil, err
	}
	if professorID != nil {
		if err := validateID("professorId", *professorID); err != nil {
			return nil, err
		}
	}

	var updated *models.Course
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		course, err := repos.Courses.LockByID(ctx, courseID)
		if err != nil {
			return err
		}

		if professorID != nil {
			professor, err := repos.Professors.GetByID(ctx, *professorID)
			if err != nil {
				return err
			}
			course.Professor = professor
		}

		if err := repos.Courses.SetProfessor(ctx, courseID, professorID); err != nil {
			return err
		}
		course.ProfessorID = professorID
		updated = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddPrerequisite adds the courseID -> prerequisiteID edge after a cycle check.
// Prerequisite edits take a transaction-scoped graph lock so two concurrent
// edits cannot both pass the check and jointly close a cycle.
func (s *courseServiceImpl) AddPrerequisite(ctx context.Context, courseID, prerequisiteID int64) (*models.Course, error) {
	if err := validateID("id", courseID); err != nil {
		return nil, err
	}
	if err := validateID("prerequisiteId", prerequisiteID); err != nil {
		return nil, err
	}

	var updated *models.Course
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		if err := repos.Courses.LockPrerequisiteGraph(ctx); err != nil {
			return err
		}
		course, err := repos.Courses.LockByID(ctx, courseID)
		if err != nil {
			return err
		}
		if _, err := repos.Courses.GetByID(ctx, prerequisiteID); err != nil {
			return err
		}

		edges, err := repos.Courses.PrerequisiteEdges(ctx)
		if err != nil {
			return err
		}
		graph := prereqgraph.FromEdges(edges)

		if graph.WouldCreateCycle(courseID, prerequisiteID) {
			return cycleError(courseID, prerequisiteID)
		}

		alreadyPresent := false
		for _, id := range graph.Prerequisites(courseID) {
			if id == prerequisiteID {
				alreadyPresent = true
				break
			}
		}
		if !alreadyPresent {
			if err := repos.Courses.AddPrerequisite(ctx, courseID, prerequisiteID); err != nil {
				return err
			}
			graph.AddEdge(courseID, prerequisiteID)
		}

		course.PrerequisiteIDs = sortedIDs(graph.Prerequisites(courseID))
		updated = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemovePrerequisite deletes the courseID -> prerequisiteID edge
func (s *courseServiceImpl) RemovePrerequisite(ctx context.Context, courseID, prerequisiteID int64) (*models.Course, error) {
	if err := validateID("id", courseID); err != nil {
		return nil, err
	}
	if err := validateID("prerequisiteId", prerequisiteID); err != nil {
		return nil, err
	}

	var updated *models.Course
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		if err := repos.Courses.LockPrerequisiteGraph(ctx); err != nil {
			return err
		}
		if _, err := repos.Courses.LockByID(ctx, courseID); err != nil {
			return err
		}
		if err := repos.Courses.RemovePrerequisite(ctx, courseID, prerequisiteID); err != nil {
			return err
		}

		course, err := repos.Courses.GetByID(ctx, courseID)
		if err != nil {
			return err
		}
		updated = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetPrerequisites returns direct prerequisites, or every transitive one when
// transitive is set
func (s *courseServiceImpl) GetPrerequisites(ctx context.Context, courseID int64, transitive bool) ([]int64, error) {
	if err := validateID("id", courseID); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !transitive {
		return course.PrerequisiteIDs, nil
	}

	edges, err := s.courseRepo.PrerequisiteEdges(ctx)
	if err != nil {
		return nil, err
	}
	return prereqgraph.FromEdges(edges).TransitivePrerequisites(courseID), nil
}

// WouldCreateCycle answers the cycle question against the current catalog
// without writing anything
func (s *courseServiceImpl) WouldCreateCycle(ctx context.Context, courseID, candidateID int64) (bool, error) {
	if courseID <= 0 || candidateID <= 0 {
		return false, nil
	}
	if courseID == candidateID {
		return true, nil
	}

	edges, err := s.courseRepo.PrerequisiteEdges(ctx)
	if err != nil {
		return false, err
	}
	return prereqgraph.FromEdges(edges).WouldCreateCycle(courseID, candidateID), nil
}

// VerifyPrerequisiteGraph fails when the stored prerequisite relation is already
// cyclic. Admission control assumes an acyclic catalog.
func (s *courseServiceImpl) VerifyPrerequisiteGraph(ctx context.Context) error {
	edges, err := s.courseRepo.PrerequisiteEdges(ctx)
	if err != nil {
		return err
	}
	if prereqgraph.FromEdges(edges).HasCycle() {
		return apperrors.NewCustomError(apperrors.ErrCorruptPrerequisites,
			fmt.Sprintf("stored prerequisites contain a cycle (%d edges)", len(edges)))
	}
	return nil
}

func cycleError(courseID, prerequisiteID int64) error {
	return apperrors.NewCustomError(apperrors.ErrCycleDetected,
		fmt.Sprintf("adding course %d as a prerequisite of course %d would create a cycle", prerequisiteID, courseID)).
		WithDetails(map[string]interface{}{"courseId": courseID, "prerequisiteId": prerequisiteID})
}

func sortedIDs(ids []int64) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
