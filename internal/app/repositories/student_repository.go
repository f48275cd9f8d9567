package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/dberrors"
	"github.com/yigit/academia/internal/pkg/logger"
)

// StudentRepository handles database operations for students and their enrollments
type StudentRepository struct {
	db DBTX
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) selectStudentQuery() squirrel.SelectBuilder {
	return squirrel.Select(
		"id", "version", "first_name", "last_name", "email", "birth_date",
		"enrollment_number", "status", "created_by", "created_at",
		"modified_by", "modified_at", "deactivated_by", "deactivated_at", "deactivation_reason",
	).From("students").
		PlaceholderFormat(squirrel.Dollar)
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.Version, &s.FirstName, &s.LastName, &s.Email, &s.BirthDate,
		&s.EnrollmentNumber, &s.Status, &s.CreatedBy, &s.CreatedAt,
		&s.ModifiedBy, &s.ModifiedAt, &s.DeactivatedBy, &s.DeactivatedAt, &s.DeactivationReason,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) getOne(ctx context.Context, op string, builder squirrel.SelectBuilder) (*models.Student, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building student query SQL")
		return nil, apperrors.Database(op, err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("op", op).Msg("Error scanning student")
		return nil, apperrors.Database(op, err)
	}
	return student, nil
}

// mapStudentWriteError translates constraint violations on the students table
func mapStudentWriteError(op string, err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, dberrors.StudentsEnrollmentNumberKey):
		return apperrors.ErrEnrollmentNumberAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, dberrors.StudentsEmailKey):
		return apperrors.ErrEmailAlreadyExists
	default:
		return apperrors.Database(op, err)
	}
}

// Create inserts a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const op = "StudentRepository.Create"

	sqlStr, args, err := squirrel.Insert("students").
		Columns("first_name", "last_name", "email", "birth_date", "enrollment_number", "status", "created_by").
		Values(student.FirstName, student.LastName, student.Email, student.BirthDate,
			student.EnrollmentNumber, student.Status, student.CreatedBy).
		Suffix("RETURNING id, version, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return apperrors.Database(op, err)
	}

	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&student.ID, &student.Version, &student.CreatedAt)
	if err != nil {
		mapped := mapStudentWriteError(op, err)
		if errors.Is(mapped, apperrors.ErrDatabase) {
			logger.Error().Err(err).Str("enrollmentNumber", student.EnrollmentNumber).Msg("Error executing create student query")
		}
		return mapped
	}
	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, "StudentRepository.GetByID", r.selectStudentQuery().Where(squirrel.Eq{"id": id}))
}

// GetByIDForUpdate retrieves a student and holds its row lock until the
// surrounding transaction ends. It must run on a pgx.Tx.
func (r *StudentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, "StudentRepository.GetByIDForUpdate",
		r.selectStudentQuery().Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

// GetByEnrollmentNumber retrieves a student by enrollment number
func (r *StudentRepository) GetByEnrollmentNumber(ctx context.Context, enrollmentNumber string) (*models.Student, error) {
	return r.getOne(ctx, "StudentRepository.GetByEnrollmentNumber",
		r.selectStudentQuery().Where(squirrel.Eq{"enrollment_number": enrollmentNumber}))
}

// List retrieves one page of students ordered by id, plus the total number of
// students matching the filter
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	const op = "StudentRepository.List"

	sqlBuilder := r.selectStudentQuery()
	countBuilder := squirrel.Select("count(*)").From("students").PlaceholderFormat(squirrel.Dollar)

	if filter.Status != nil {
		sqlBuilder = sqlBuilder.Where(squirrel.Eq{"status": *filter.Status})
		countBuilder = countBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	countSql, countArgs, err := countBuilder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count query SQL")
		return nil, 0, apperrors.Database(op, err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing student count query")
		return nil, 0, apperrors.Database(op, err)
	}
	if total == 0 {
		return []*models.Student{}, 0, nil
	}

	sqlBuilder = sqlBuilder.OrderBy("id").Offset(filter.Offset)
	if filter.Limit > 0 {
		sqlBuilder = sqlBuilder.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := sqlBuilder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, 0, apperrors.Database(op, err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, apperrors.Database(op, err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, 0, apperrors.Database(op, err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Database(op, err)
	}

	return students, total, nil
}

// Update writes every mutable column if student.Version is still current.
// On success student.Version holds the new version.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const op = "StudentRepository.Update"

	sqlStr, args, err := squirrel.Update("students").
		Set("first_name", student.FirstName).
		Set("last_name", student.LastName).
		Set("email", student.Email).
		Set("birth_date", student.BirthDate).
		Set("enrollment_number", student.EnrollmentNumber).
		Set("status", student.Status).
		Set("modified_by", student.ModifiedBy).
		Set("modified_at", student.ModifiedAt).
		Set("deactivated_by", student.DeactivatedBy).
		Set("deactivated_at", student.DeactivatedAt).
		Set("deactivation_reason", student.DeactivationReason).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": student.ID, "version": student.Version}).
		Suffix("RETURNING version").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update student SQL")
		return apperrors.Database(op, err)
	}

	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&student.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missingOrStale(ctx, student.ID, student.Version)
		}
		mapped := mapStudentWriteError(op, err)
		if errors.Is(mapped, apperrors.ErrDatabase) {
			logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error executing update student query")
		}
		return mapped
	}
	return nil
}

func (r *StudentRepository) missingOrStale(ctx context.Context, id, version int64) error {
	var current int64
	err := r.db.QueryRow(ctx, "SELECT version FROM students WHERE id = $1", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudentNotFound
		}
		return apperrors.Database("StudentRepository.missingOrStale", err)
	}
	return apperrors.NewCustomError(apperrors.ErrConflict,
		fmt.Sprintf("student %d was modified concurrently", id)).
		WithDetails(map[string]interface{}{"version": version, "currentVersion": current})
}

// EnrolledCourseIDs returns the ids of the courses the student is enrolled in, ascending
func (r *StudentRepository) EnrolledCourseIDs(ctx context.Context, studentID int64) ([]int64, error) {
	const op = "StudentRepository.EnrolledCourseIDs"

	rows, err := r.db.Query(ctx, "SELECT course_id FROM student_courses WHERE student_id = $1 ORDER BY course_id", studentID)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error loading enrollments")
		return nil, apperrors.Database(op, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, apperrors.Database(op, err)
	}
	return ids, nil
}

// AddEnrollments inserts one enrollment edge per course id in a single statement
func (r *StudentRepository) AddEnrollments(ctx context.Context, studentID int64, courseIDs []int64) error {
	const op = "StudentRepository.AddEnrollments"
	if len(courseIDs) == 0 {
		return nil
	}

	builder := squirrel.Insert("student_courses").
		Columns("student_id", "course_id").
		Suffix("ON CONFLICT DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)
	for _, courseID := range courseIDs {
		builder = builder.Values(studentID, courseID)
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building add enrollments SQL")
		return apperrors.Database(op, err)
	}

	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		// a course deleted after admission checked it
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewCustomError(apperrors.ErrCourseNotFound, "course not found")
		}
		logger.Error().Err(err).Int64("studentID", studentID).Ints64("courseIDs", courseIDs).Msg("Error inserting enrollments")
		return apperrors.Database(op, err)
	}
	return nil
}

// RemoveEnrollment deletes one enrollment edge
func (r *StudentRepository) RemoveEnrollment(ctx context.Context, studentID, courseID int64) error {
	const op = "StudentRepository.RemoveEnrollment"

	sqlStr, args, err := squirrel.Delete("student_courses").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return apperrors.Database(op, err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).Msg("Error removing enrollment")
		return apperrors.Database(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewCustomError(apperrors.ErrNotEnrolled,
			fmt.Sprintf("student %d is not enrolled in course %d", studentID, courseID))
	}
	return nil
}
