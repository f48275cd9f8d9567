package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
)

func newEnrollmentFixture(maxBatch int) (*memStore, EnrollmentService) {
	store := newMemStore()
	svc := NewEnrollmentService(&memTxManager{store: store}, maxBatch, zerolog.Nop())
	return store, svc
}

func TestEnroll_MissingPrerequisiteRejected(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	calc2 := store.seedCourse("CALC2", calc1)
	student := store.seedStudent(models.StudentStatusActive)

	_, err := svc.Enroll(context.Background(), student, []int64{calc2})
	require.ErrorIs(t, err, apperrors.ErrPrerequisitesNotMet)

	var custom *apperrors.CustomError
	require.True(t, errors.As(err, &custom))
	assert.Equal(t, calc2, custom.Details["courseId"])
	assert.Equal(t, "CALC2", custom.Details["courseCode"])
	assert.Equal(t, []int64{calc1}, custom.Details["missingPrerequisites"])
	assert.Empty(t, store.enrolledIDs(student))
}

func TestEnroll_PrerequisiteThenDependent(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	calc2 := store.seedCourse("CALC2", calc1)
	student := store.seedStudent(models.StudentStatusActive)

	result, err := svc.Enroll(context.Background(), student, []int64{calc1})
	require.NoError(t, err)
	assert.Equal(t, []int64{calc1}, result.EnrolledCourseIDs)
	assert.Equal(t, []int64{calc1}, result.Added)

	result, err = svc.Enroll(context.Background(), student, []int64{calc2})
	require.NoError(t, err)
	assert.Equal(t, student, result.StudentID)
	assert.Equal(t, []int64{calc1, calc2}, result.EnrolledCourseIDs)
	assert.Equal(t, []int64{calc1, calc2}, store.enrolledIDs(student))
}

func TestEnroll_UnknownCourseLeavesEnrollmentsUnchanged(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	student := store.seedStudent(models.StudentStatusActive, calc1)
	before := store.enrolledIDs(student)

	_, err := svc.Enroll(context.Background(), student, []int64{999})
	require.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.True(t, apperrors.IsNotFound(err))

	var custom *apperrors.CustomError
	require.True(t, errors.As(err, &custom))
	assert.Equal(t, int64(999), custom.Details["courseId"])

	if diff := cmp.Diff(before, store.enrolledIDs(student)); diff != "" {
		t.Errorf("enrollment set changed (-before +after):\n%s", diff)
	}
}

func TestEnroll_BatchIsAllOrNothing(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	calc2 := store.seedCourse("CALC2", calc1)
	phys := store.seedCourse("PHYS1")
	student := store.seedStudent(models.StudentStatusActive)

	// PHYS1 is admissible but CALC2 is not, so neither is written
	_, err := svc.Enroll(context.Background(), student, []int64{phys, calc2})
	require.ErrorIs(t, err, apperrors.ErrPrerequisitesNotMet)
	assert.Empty(t, store.enrolledIDs(student))

	// an unknown id after valid ones rejects the whole batch too
	_, err = svc.Enroll(context.Background(), student, []int64{phys, calc1, 4242})
	require.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.Empty(t, store.enrolledIDs(student))
}

func TestEnroll_SameBatchDoesNotSatisfyPrerequisite(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	calc2 := store.seedCourse("CALC2", calc1)
	student := store.seedStudent(models.StudentStatusActive)

	_, err := svc.Enroll(context.Background(), student, []int64{calc1, calc2})
	require.ErrorIs(t, err, apperrors.ErrPrerequisitesNotMet)
	assert.Empty(t, store.enrolledIDs(student))
}

func TestEnroll_AlreadyEnrolledAndDuplicatesAreNoOps(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	calc2 := store.seedCourse("CALC2", calc1)
	student := store.seedStudent(models.StudentStatusActive, calc1)

	result, err := svc.Enroll(context.Background(), student, []int64{calc1, calc2, calc2, calc1})
	require.NoError(t, err)
	assert.Equal(t, []int64{calc2}, result.Added)
	assert.Equal(t, []int64{calc1, calc2}, result.EnrolledCourseIDs)

	result, err = svc.Enroll(context.Background(), student, []int64{calc2})
	require.NoError(t, err)
	assert.Empty(t, result.Added)
	assert.Equal(t, []int64{calc1, calc2}, result.EnrolledCourseIDs)
}

func TestEnroll_AlreadyEnrolledCourseSkipsPrerequisiteCheck(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	calc2 := store.seedCourse("CALC2", calc1)
	// enrolled in CALC2 without CALC1, e.g. the prerequisite was added later
	student := store.seedStudent(models.StudentStatusActive, calc2)

	result, err := svc.Enroll(context.Background(), student, []int64{calc2})
	require.NoError(t, err)
	assert.Empty(t, result.Added)
}

func TestEnroll_StudentErrors(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	inactive := store.seedStudent(models.StudentStatusInactive)

	_, err := svc.Enroll(context.Background(), inactive, []int64{calc1})
	require.ErrorIs(t, err, apperrors.ErrInactiveStudent)
	assert.Empty(t, store.enrolledIDs(inactive))

	_, err = svc.Enroll(context.Background(), 9999, []int64{calc1})
	require.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestEnroll_RequestValidation(t *testing.T) {
	store, svc := newEnrollmentFixture(3)
	student := store.seedStudent(models.StudentStatusActive)

	cases := []struct {
		name      string
		studentID int64
		courseIDs []int64
	}{
		{"empty batch", student, nil},
		{"batch over limit", student, []int64{1, 2, 3, 4}},
		{"non-positive course id", student, []int64{1, 0}},
		{"non-positive student id", 0, []int64{1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Enroll(context.Background(), tc.studentID, tc.courseIDs)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
	assert.Zero(t, store.transactions, "validation happens before the transaction starts")
}

func TestEnroll_DatabaseFailureRollsBack(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	a := store.seedCourse("ALG1")
	b := store.seedCourse("BIO1")
	student := store.seedStudent(models.StudentStatusActive)

	dbErr := apperrors.Database("StudentRepository.AddEnrollments", errors.New("connection reset"))
	store.fail["Students.AddEnrollments"] = dbErr

	_, err := svc.Enroll(context.Background(), student, []int64{a, b})
	require.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.Empty(t, store.enrolledIDs(student))
	assert.Equal(t, 1, store.rollbacks)
}

func TestEnroll_LookupFailureIsNotReportedAsNotFound(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	a := store.seedCourse("ALG1")
	student := store.seedStudent(models.StudentStatusActive)
	store.fail["Courses.GetByIDs"] = apperrors.Database("CourseRepository.GetByIDs", errors.New("timeout"))

	_, err := svc.Enroll(context.Background(), student, []int64{a})
	require.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.False(t, apperrors.IsNotFound(err))
}

func TestUnenroll(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	student := store.seedStudent(models.StudentStatusActive, calc1)

	require.NoError(t, svc.Unenroll(context.Background(), student, calc1))
	assert.Empty(t, store.enrolledIDs(student))

	err := svc.Unenroll(context.Background(), student, calc1)
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	err = svc.Unenroll(context.Background(), 9999, calc1)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestUnenroll_NotEnrolledStopsBeforeDelete(t *testing.T) {
	store, svc := newEnrollmentFixture(0)
	calc1 := store.seedCourse("CALC1")
	phys1 := store.seedCourse("PHYS1")
	student := store.seedStudent(models.StudentStatusActive, calc1)
	store.fail["Students.RemoveEnrollment"] = apperrors.Database("RemoveEnrollment", errors.New("unreachable"))

	err := svc.Unenroll(context.Background(), student, phys1)
	require.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	var custom *apperrors.CustomError
	require.True(t, errors.As(err, &custom))
	assert.Equal(t, phys1, custom.Details["courseId"])
	assert.Equal(t, []int64{calc1}, store.enrolledIDs(student))
}
