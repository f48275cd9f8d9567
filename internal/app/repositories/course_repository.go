package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/dberrors"
	"github.com/yigit/academia/internal/pkg/logger"
	"github.com/yigit/academia/internal/pkg/prereqgraph"
)

// prerequisiteGraphLockKey identifies the transaction-scoped advisory lock
// taken around prerequisite edits
const prerequisiteGraphLockKey int64 = 0x70726572657173 // "prereqs"

// CourseRepository handles database operations for courses and their
// prerequisite edges
type CourseRepository struct {
	db DBTX
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) selectCourseQuery() squirrel.SelectBuilder {
	return squirrel.Select("c.id", "c.version", "c.name", "c.code", "c.credits", "c.professor_id").
		From("courses c").
		PlaceholderFormat(squirrel.Dollar)
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	err := row.Scan(&course.ID, &course.Version, &course.Name, &course.Code, &course.Credits, &course.ProfessorID)
	if err != nil {
		return nil, err
	}
	course.PrerequisiteIDs = []int64{}
	course.PrerequisiteOf = []int64{}
	return &course, nil
}

// getOne runs a single-course query and attaches its prerequisite relations
func (r *CourseRepository) getOne(ctx context.Context, op string, builder squirrel.SelectBuilder) (*models.Course, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building course query SQL")
		return nil, apperrors.Database(op, err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("op", op).Msg("Error scanning course")
		return nil, apperrors.Database(op, err)
	}

	if err := r.attachRelations(ctx, map[int64]*models.Course{course.ID: course}); err != nil {
		return nil, err
	}
	return course, nil
}

// getMany runs a multi-course query and attaches prerequisite relations to every row
func (r *CourseRepository) getMany(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*models.Course, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building course query SQL")
		return nil, apperrors.Database(op, err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error executing course query")
		return nil, apperrors.Database(op, err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	byID := make(map[int64]*models.Course)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			logger.Error().Err(err).Str("op", op).Msg("Error scanning course row")
			return nil, apperrors.Database(op, err)
		}
		courses = append(courses, course)
		byID[course.ID] = course
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(op, err)
	}

	if err := r.attachRelations(ctx, byID); err != nil {
		return nil, err
	}
	return courses, nil
}

// attachRelations fills PrerequisiteIDs and PrerequisiteOf for the given courses
func (r *CourseRepository) attachRelations(ctx context.Context, byID map[int64]*models.Course) error {
	const op = "CourseRepository.attachRelations"
	if len(byID) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	sqlStr, args, err := squirrel.Select("course_id", "prerequisite_id").
		From("course_prerequisites").
		Where(squirrel.Or{squirrel.Eq{"course_id": ids}, squirrel.Eq{"prerequisite_id": ids}}).
		OrderBy("course_id", "prerequisite_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return apperrors.Database(op, err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading course prerequisites")
		return apperrors.Database(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var edge prereqgraph.Edge
		if err := rows.Scan(&edge.CourseID, &edge.PrerequisiteID); err != nil {
			return apperrors.Database(op, err)
		}
		if course, ok := byID[edge.CourseID]; ok {
			course.PrerequisiteIDs = append(course.PrerequisiteIDs, edge.PrerequisiteID)
		}
		if course, ok := byID[edge.PrerequisiteID]; ok {
			course.PrerequisiteOf = append(course.PrerequisiteOf, edge.CourseID)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.Database(op, err)
	}

	for _, course := range byID {
		sort.Slice(course.PrerequisiteOf, func(i, j int) bool { return course.PrerequisiteOf[i] < course.PrerequisiteOf[j] })
	}
	return nil
}

// Create inserts a new course. Prerequisite edges are added separately.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const op = "CourseRepository.Create"

	sqlStr, args, err := squirrel.Insert("courses").
		Columns("name", "code", "credits", "professor_id").
		Values(course.Name, course.Code, course.Credits, course.ProfessorID).
		Suffix("RETURNING id, version").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return apperrors.Database(op, err)
	}

	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&course.ID, &course.Version)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.CoursesCodeKey) {
			return apperrors.ErrCourseCodeExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrProfessorNotFound
		}
		logger.Error().Err(err).Str("code", course.Code).Msg("Error executing create course query")
		return apperrors.Database(op, err)
	}
	return nil
}

// GetByID retrieves a course with its prerequisite relations
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return r.getOne(ctx, "CourseRepository.GetByID", r.selectCourseQuery().Where(squirrel.Eq{"c.id": id}))
}

// LockByID retrieves a course and holds its row lock until the surrounding
// transaction ends. It must run on a pgx.Tx.
func (r *CourseRepository) LockByID(ctx context.Context, id int64) (*models.Course, error) {
	return r.getOne(ctx, "CourseRepository.LockByID",
		r.selectCourseQuery().Where(squirrel.Eq{"c.id": id}).Suffix("FOR UPDATE"))
}

// GetByIDs retrieves the existing courses among ids, keyed by id
func (r *CourseRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Course, error) {
	byID := make(map[int64]*models.Course, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	courses, err := r.getMany(ctx, "CourseRepository.GetByIDs", r.selectCourseQuery().Where(squirrel.Eq{"c.id": ids}))
	if err != nil {
		return nil, err
	}
	for _, course := range courses {
		byID[course.ID] = course
	}
	return byID, nil
}

// GetAll retrieves all courses ordered by id
func (r *CourseRepository) GetAll(ctx context.Context) ([]*models.Course, error) {
	return r.getMany(ctx, "CourseRepository.GetAll", r.selectCourseQuery().OrderBy("c.id"))
}

// Update changes name, code and credits if course.Version is still current.
// On success course.Version holds the new version.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const op = "CourseRepository.Update"

	sqlStr, args, err := squirrel.Update("courses").
		Set("name", course.Name).
		Set("code", course.Code).
		Set("credits", course.Credits).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": course.ID, "version": course.Version}).
		Suffix("RETURNING version").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update course SQL")
		return apperrors.Database(op, err)
	}

	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&course.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missingOrStale(ctx, course.ID, course.Version)
		}
		if dberrors.IsDuplicateConstraintError(err, dberrors.CoursesCodeKey) {
			return apperrors.ErrCourseCodeExists
		}
		logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
		return apperrors.Database(op, err)
	}
	return nil
}

// missingOrStale tells apart a vanished course from a version mismatch after
// a conditional update matched no row
func (r *CourseRepository) missingOrStale(ctx context.Context, id, version int64) error {
	var current int64
	err := r.db.QueryRow(ctx, "SELECT version FROM courses WHERE id = $1", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCourseNotFound
		}
		return apperrors.Database("CourseRepository.missingOrStale", err)
	}
	return apperrors.NewCustomError(apperrors.ErrConflict,
		fmt.Sprintf("course %d was modified concurrently", id)).
		WithDetails(map[string]interface{}{"version": version, "currentVersion": current})
}

// Delete deletes a course by ID
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	const op = "CourseRepository.Delete"

	sqlStr, args, err := squirrel.Delete("courses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return apperrors.Database(op, err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCourseHasRelations
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error deleting course")
		return apperrors.Database(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// HasDependents reports whether another course requires this one or any
// student is enrolled in it
func (r *CourseRepository) HasDependents(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM course_prerequisites WHERE prerequisite_id = $1)
		    OR EXISTS(SELECT 1 FROM student_courses WHERE course_id = $1)`,
		id).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error checking course dependents")
		return false, apperrors.Database("CourseRepository.HasDependents", err)
	}
	return exists, nil
}

// SetProfessor assigns professorID to the course, or clears it when nil
func (r *CourseRepository) SetProfessor(ctx context.Context, courseID int64, professorID *int64) error {
	const op = "CourseRepository.SetProfessor"

	sqlStr, args, err := squirrel.Update("courses").
		Set("professor_id", professorID).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": courseID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return apperrors.Database(op, err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrProfessorNotFound
		}
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error setting course professor")
		return apperrors.Database(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// LockPrerequisiteGraph takes the prerequisite advisory lock for the rest of
// the current transaction. It must run on a pgx.Tx.
func (r *CourseRepository) LockPrerequisiteGraph(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", prerequisiteGraphLockKey); err != nil {
		logger.Error().Err(err).Msg("Error acquiring prerequisite graph lock")
		return apperrors.Database("CourseRepository.LockPrerequisiteGraph", err)
	}
	return nil
}

// PrerequisiteEdges returns every stored course -> prerequisite edge
func (r *CourseRepository) PrerequisiteEdges(ctx context.Context) ([]prereqgraph.Edge, error) {
	const op = "CourseRepository.PrerequisiteEdges"

	rows, err := r.db.Query(ctx, "SELECT course_id, prerequisite_id FROM course_prerequisites ORDER BY course_id, prerequisite_id")
	if err != nil {
		logger.Error().Err(err).Msg("Error loading prerequisite edges")
		return nil, apperrors.Database(op, err)
	}
	defer rows.Close()

	var edges []prereqgraph.Edge
	for rows.Next() {
		var edge prereqgraph.Edge
		if err := rows.Scan(&edge.CourseID, &edge.PrerequisiteID); err != nil {
			return nil, apperrors.Database(op, err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(op, err)
	}
	return edges, nil
}

// AddPrerequisite stores the courseID -> prerequisiteID edge. An existing edge is left as is.
func (r *CourseRepository) AddPrerequisite(ctx context.Context, courseID, prerequisiteID int64) error {
	const op = "CourseRepository.AddPrerequisite"

	sqlStr, args, err := squirrel.Insert("course_prerequisites").
		Columns("course_id", "prerequisite_id").
		Values(courseID, prerequisiteID).
		Suffix("ON CONFLICT DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return apperrors.Database(op, err)
	}

	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", courseID).Int64("prerequisiteID", prerequisiteID).Msg("Error adding prerequisite")
		return apperrors.Database(op, err)
	}
	return nil
}

// RemovePrerequisite deletes the courseID -> prerequisiteID edge
func (r *CourseRepository) RemovePrerequisite(ctx context.Context, courseID, prerequisiteID int64) error {
	const op = "CourseRepository.RemovePrerequisite"

	sqlStr, args, err := squirrel.Delete("course_prerequisites").
		Where(squirrel.Eq{"course_id": courseID, "prerequisite_id": prerequisiteID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return apperrors.Database(op, err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Int64("prerequisiteID", prerequisiteID).Msg("Error removing prerequisite")
		return apperrors.Database(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(
			fmt.Sprintf("course %d is not a prerequisite of course %d", prerequisiteID, courseID))
	}
	return nil
}
