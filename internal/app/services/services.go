package services

import (
	"context"

	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/prereqgraph"
)

// Services defined in this package:
// - CourseService: course catalog and prerequisite graph edits
// - EnrollmentService: admission control for student enrollments
// - StudentService: student records and their lifecycle
// - ProfessorService: professor records
// - AuthService: staff login

// CourseRepository is the course storage the services depend on.
// Lookups return apperrors.ErrCourseNotFound for unknown IDs.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Course, error)
	GetAll(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
	HasDependents(ctx context.Context, id int64) (bool, error)
	SetProfessor(ctx context.Context, courseID int64, professorID *int64) error

	// LockByID reads the course row with a row lock held until the transaction ends.
	LockByID(ctx context.Context, id int64) (*models.Course, error)
	// LockPrerequisiteGraph serializes prerequisite edits for the current transaction.
	LockPrerequisiteGraph(ctx context.Context) error
	PrerequisiteEdges(ctx context.Context) ([]prereqgraph.Edge, error)
	AddPrerequisite(ctx context.Context, courseID, prerequisiteID int64) error
	RemovePrerequisite(ctx context.Context, courseID, prerequisiteID int64) error
}

// StudentRepository is the student storage the services depend on.
// Lookups return apperrors.ErrStudentNotFound for unknown IDs.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	// GetByIDForUpdate reads the student row with a row lock held until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error)
	GetByEnrollmentNumber(ctx context.Context, enrollmentNumber string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error)
	Update(ctx context.Context, student *models.Student) error
	EnrolledCourseIDs(ctx context.Context, studentID int64) ([]int64, error)
	AddEnrollments(ctx context.Context, studentID int64, courseIDs []int64) error
	RemoveEnrollment(ctx context.Context, studentID, courseID int64) error
}

// ProfessorRepository is the professor storage the services depend on.
type ProfessorRepository interface {
	Create(ctx context.Context, professor *models.Professor) error
	GetByID(ctx context.Context, id int64) (*models.Professor, error)
	GetAll(ctx context.Context) ([]*models.Professor, error)
	Update(ctx context.Context, professor *models.Professor) error
	Delete(ctx context.Context, id int64) error
	HasAssignedCourses(ctx context.Context, id int64) (bool, error)
}

// UserRepository is the staff account storage used by AuthService.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
}

// Repositories groups the repositories bound to one transaction.
type Repositories struct {
	Courses    CourseRepository
	Students   StudentRepository
	Professors ProfessorRepository
}

// TxManager runs fn inside a single database transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
