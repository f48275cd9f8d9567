package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/academia/internal/pkg/apperrors"
)

// DefaultMaxEnrollmentBatch bounds the number of course IDs accepted per enroll call
const DefaultMaxEnrollmentBatch = 20

// EnrollmentService defines admission control for student enrollments
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID int64, courseIDs []int64) (*EnrollmentResult, error)
	Unenroll(ctx context.Context, studentID, courseID int64) error
}

// EnrollmentResult is the student projection returned after an enroll call
type EnrollmentResult struct {
	StudentID         int64
	EnrolledCourseIDs []int64 // sorted ascending
	Added             []int64 // in request order
}

// enrollmentServiceImpl implements the EnrollmentService interface
type enrollmentServiceImpl struct {
	txManager    TxManager
	maxBatchSize int
	logger       zerolog.Logger
}

// NewEnrollmentService creates a new enrollment service instance. maxBatchSize <= 0
// selects DefaultMaxEnrollmentBatch.
func NewEnrollmentService(txManager TxManager, maxBatchSize int, logger zerolog.Logger) EnrollmentService {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxEnrollmentBatch
	}
	return &enrollmentServiceImpl{
		txManager:    txManager,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

// validateRequest checks the shape of an enroll call before touching storage
func (s *enrollmentServiceImpl) validateRequest(studentID int64, courseIDs []int64) error {
	if studentID <= 0 {
		return apperrors.NewValidationError("studentId", "student ID must be positive")
	}
	if len(courseIDs) == 0 {
		return apperrors.NewValidationError("courseIds", "at least one course ID is required")
	}
	if len(courseIDs) > s.maxBatchSize {
		return apperrors.NewValidationError("courseIds",
			fmt.Sprintf("at most %d course IDs can be enrolled per request", s.maxBatchSize))
	}
	for _, id := range courseIDs {
		if id <= 0 {
			return apperrors.NewValidationError("courseIds", "course IDs must be positive")
		}
	}
	return nil
}

// Enroll admits the student to every requested course or to none of them.
// Courses the student already holds, and repeated IDs in the request, are
// skipped. A prerequisite counts as satisfied when the student was enrolled in
// it before this call; courses enrolled by the same call do not count.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, studentID int64, courseIDs []int64) (*EnrollmentResult, error) {
	if err := s.validateRequest(studentID, courseIDs); err != nil {
		return nil, err
	}

	requested := uniqueInOrder(courseIDs)
	var result *EnrollmentResult

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		student, err := repos.Students.GetByIDForUpdate(ctx, studentID)
		if err != nil {
			return err
		}
		if !student.IsActive() {
			return apperrors.NewCustomError(apperrors.ErrInactiveStudent,
				fmt.Sprintf("student %d is not active", studentID)).
				WithDetails(map[string]interface{}{"studentId": studentID, "status": student.Status})
		}

		currentIDs, err := repos.Students.EnrolledCourseIDs(ctx, studentID)
		if err != nil {
			return err
		}
		enrolled := make(map[int64]struct{}, len(currentIDs))
		for _, id := range currentIDs {
			enrolled[id] = struct{}{}
		}

		courses, err := repos.Courses.GetByIDs(ctx, requested)
		if err != nil {
			return err
		}
		for _, id := range requested {
			if _, ok := courses[id]; !ok {
				return apperrors.NewCustomError(apperrors.ErrCourseNotFound,
					fmt.Sprintf("course %d not found", id)).
					WithDetails(map[string]interface{}{"courseId": id})
			}
		}

		toAdd := make([]int64, 0, len(requested))
		for _, id := range requested {
			if _, already := enrolled[id]; already {
				continue
			}
			course := courses[id]
			var missing []int64
			for _, prereqID := range course.PrerequisiteIDs {
				if _, ok := enrolled[prereqID]; !ok {
					missing = append(missing, prereqID)
				}
			}
			if len(missing) > 0 {
				return apperrors.NewCustomError(apperrors.ErrPrerequisitesNotMet,
					fmt.Sprintf("prerequisites not met for course %s", course.Code)).
					WithDetails(map[string]interface{}{
						"courseId":             course.ID,
						"courseCode":           course.Code,
						"missingPrerequisites": missing,
					})
			}
			toAdd = append(toAdd, id)
		}

		if len(toAdd) > 0 {
			if err := repos.Students.AddEnrollments(ctx, studentID, toAdd); err != nil {
				return err
			}
		}

		final := make([]int64, 0, len(enrolled)+len(toAdd))
		for id := range enrolled {
			final = append(final, id)
		}
		final = append(final, toAdd...)

		result = &EnrollmentResult{
			StudentID:         studentID,
			EnrolledCourseIDs: sortedIDs(final),
			Added:             toAdd,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("studentID", studentID).Ints64("courseIDs", courseIDs).Msg("Enrollment rejected")
		return nil, err
	}

	s.logger.Info().Int64("studentID", studentID).Ints64("added", result.Added).Msg("Enrollment applied")
	return result, nil
}

// Unenroll deletes the enrollment edge between the student and the course
func (s *enrollmentServiceImpl) Unenroll(ctx context.Context, studentID, courseID int64) error {
	if studentID <= 0 || courseID <= 0 {
		return apperrors.NewValidationError("id", "student and course IDs must be positive")
	}

	return s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos Repositories) error {
		student, err := repos.Students.GetByIDForUpdate(ctx, studentID)
		if err != nil {
			return err
		}
		student.EnrolledCourseIDs, err = repos.Students.EnrolledCourseIDs(ctx, studentID)
		if err != nil {
			return err
		}
		if !student.IsEnrolledIn(courseID) {
			return apperrors.NewCustomError(apperrors.ErrNotEnrolled,
				fmt.Sprintf("student %d is not enrolled in course %d", studentID, courseID)).
				WithDetails(map[string]interface{}{"studentId": studentID, "courseId": courseID})
		}
		if err := repos.Students.RemoveEnrollment(ctx, studentID, courseID); err != nil {
			return err
		}
		s.logger.Info().Int64("studentID", studentID).Int64("courseID", courseID).Msg("Enrollment removed")
		return nil
	})
}

func uniqueInOrder(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
