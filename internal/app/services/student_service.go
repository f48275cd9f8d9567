package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/validation"
)

// StudentService defines the interface for student record operations
type StudentService interface {
	CreateStudent(ctx context.Context, student *models.Student, actor string) error
	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
	GetStudentByEnrollmentNumber(ctx context.Context, enrollmentNumber string) (*models.Student, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error)
	UpdateStudent(ctx context.Context, student *models.Student, actor string) error
	DeactivateStudent(ctx context.Context, id int64, reason, actor string) (*models.Student, error)
	GetStudentWithLock(ctx context.Context, id int64) (*models.Student, error)
	GetStudentCourses(ctx context.Context, id int64) ([]*models.Course, error)
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	studentRepo StudentRepository
	courseRepo  CourseRepository
	txManager   TxManager
}

// NewStudentService creates a new student service instance
func NewStudentService(studentRepo StudentRepository, courseRepo CourseRepository, txManager TxManager) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		txManager:   txManager,
	}
}

// validatePerson normalizes and validates the embedded personal data
func validatePerson(p *models.Person) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	if !validation.IsValidPersonName(p.FirstName) {
		return apperrors.NewValidationError("firstName", "first name must be between 3 and 50 characters")
	}
	if !validation.IsValidPersonName(p.LastName) {
		return apperrors.NewValidationError("lastName", "last name must be between 3 and 50 characters")
	}
	if !validation.IsValidEmail(p.Email) {
		return apperrors.NewValidationError("email", "email is not valid")
	}
	if p.BirthDate.IsZero() {
		return apperrors.NewValidationError("birthDate", "birth date is required")
	}
	if p.BirthDate.After(time.Now()) {
		return apperrors.NewValidationError("birthDate", "birth date cannot be in the future")
	}
	return nil
}

// validateStudent validates student data before database operations
func (s *studentServiceImpl) validateStudent(student *models.Student) error {
	if student == nil {
		return fmt.Errorf("%w: student is nil", apperrors.ErrValidationFailed)
	}
	if err := validatePerson(&student.Person); err != nil {
		return err
	}

	student.EnrollmentNumber = strings.TrimSpace(student.EnrollmentNumber)
	if !validation.NewStringValidation(student.EnrollmentNumber).WithPattern(validation.CompiledPatterns.EnrollmentNumber).Validate() {
		return apperrors.NewValidationError("enrollmentNumber", "enrollment number must be 6 to 12 digits")
	}
	return nil
}

// CreateStudent registers a new active student
func (s *studentServiceImpl) CreateStudent(ctx context.Context, student *models.Student, actor string) error {
	if err := s.validateStudent(student); err != nil {
		return err
	}

	student.Status = models.StudentStatusActive
	student.CreatedBy = actor
	student.ModifiedBy = nil
	student.ModifiedAt = nil
	student.DeactivatedBy = nil
	student.DeactivatedAt = nil
	student.DeactivationReason = nil
	student.EnrolledCourseIDs = []int64{}

	return s.studentRepo.Create(ctx, student)
}

// GetStudentByID retrieves a student with the ids of their enrolled courses
func (s *studentServiceImpl) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachEnrollments(ctx, s.studentRepo, student)
}

// GetStudentByEnrollmentNumber retrieves a student by enrollment number
func (s *studentServiceImpl) GetStudentByEnrollmentNumber(ctx context.Context, enrollmentNumber string) (*models.Student, error) {
	enrollmentNumber = strings.TrimSpace(enrollmentNumber)
	if enrollmentNumber == "" {
		return nil, apperrors.NewValidationError("enrollmentNumber", "enrollment number is required")
	}

	student, err := s.studentRepo.GetByEnrollmentNumber(ctx, enrollmentNumber)
	if err != nil {
		return nil, err
	}
	return s.attachEnrollments(ctx, s.studentRepo, student)
}

// ListStudents returns one page of students and the total matching count
func (s *studentServiceImpl) ListStudents(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	if filter.Status != nil && *filter.Status != models.StudentStatusActive && *filter.Status != models.StudentStatusInactive {
		return nil, 0, apperrors.NewValidationError("status", "status must be ACTIVE or INACTIVE")
	}
	return s.studentRepo.List(ctx, filter)
}

// UpdateStudent replaces a student's personal data and enrollment number.
// student.Version must match the stored row or ErrConflict is returned.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, student *models.Student, actor string) error {
	if err := s.validateStudent(student); err != nil {
		return err
	}
	if err := validateID("id", student.ID); err != nil {
		return err
	}
	if student.Version <= 0 {
		return apperrors.NewValidationError("version", "version is required")
	}

	return s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		current, err := repos.Students.GetByIDForUpdate(ctx, student.ID)
		if err != nil {
			return err
		}
		if current.Version != student.Version {
			return staleVersionError("student", student.ID, student.Version, current.Version)
		}

		now := time.Now().UTC()
		student.Status = current.Status
		student.CreatedBy = current.CreatedBy
		student.CreatedAt = current.CreatedAt
		student.DeactivatedBy = current.DeactivatedBy
		student.DeactivatedAt = current.DeactivatedAt
		student.DeactivationReason = current.DeactivationReason
		student.ModifiedBy = &actor
		student.ModifiedAt = &now

		if err := repos.Students.Update(ctx, student); err != nil {
			return err
		}
		_, err = s.attachEnrollments(ctx, repos.Students, student)
		return err
	})
}

// DeactivateStudent marks an active student INACTIVE and records who did it and why
func (s *studentServiceImpl) DeactivateStudent(ctx context.Context, id int64, reason, actor string) (*models.Student, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("reason", "deactivation reason is required")
	}

	var deactivated *models.Student
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		student, err := repos.Students.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !student.IsActive() {
			return apperrors.NewConflictError(fmt.Sprintf("student %d is already inactive", id))
		}

		now := time.Now().UTC()
		student.Status = models.StudentStatusInactive
		student.DeactivatedBy = &actor
		student.DeactivatedAt = &now
		student.DeactivationReason = &reason
		student.ModifiedBy = &actor
		student.ModifiedAt = &now

		if err := repos.Students.Update(ctx, student); err != nil {
			return err
		}
		deactivated, err = s.attachEnrollments(ctx, repos.Students, student)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deactivated, nil
}

// GetStudentWithLock reads a student under a row lock inside a short transaction
func (s *studentServiceImpl) GetStudentWithLock(ctx context.Context, id int64) (*models.Student, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}

	var locked *models.Student
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		student, err := repos.Students.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		locked, err = s.attachEnrollments(ctx, repos.Students, student)
		return err
	})
	if err != nil {
		return nil, err
	}
	return locked, nil
}

// GetStudentCourses returns the courses a student is enrolled in, ordered by id
func (s *studentServiceImpl) GetStudentCourses(ctx context.Context, id int64) ([]*models.Course, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	if _, err := s.studentRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	ids, err := s.studentRepo.EnrolledCourseIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Course{}, nil
	}

	byID, err := s.courseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	courses := make([]*models.Course, 0, len(byID))
	for _, course := range byID {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (s *studentServiceImpl) attachEnrollments(ctx context.Context, repo StudentRepository, student *models.Student) (*models.Student, error) {
	ids, err := repo.EnrolledCourseIDs(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	student.EnrolledCourseIDs = sortedIDs(ids)
	return student, nil
}

func staleVersionError(resource string, id, given, current int64) error {
	return apperrors.NewCustomError(apperrors.ErrConflict,
		fmt.Sprintf("%s %d was modified concurrently", resource, id)).
		WithDetails(map[string]interface{}{"version": given, "currentVersion": current})
}
