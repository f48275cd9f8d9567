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

// ProfessorRepository handles database operations for professors
type ProfessorRepository struct {
	db DBTX
}

// NewProfessorRepository creates a new professor repository
func NewProfessorRepository(db DBTX) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

func (r *ProfessorRepository) selectProfessorQuery() squirrel.SelectBuilder {
	return squirrel.Select(
		"id", "version", "first_name", "last_name", "email", "birth_date", "employee_number", "department",
	).From("professors").
		PlaceholderFormat(squirrel.Dollar)
}

func scanProfessor(row pgx.Row) (*models.Professor, error) {
	var p models.Professor
	err := row.Scan(&p.ID, &p.Version, &p.FirstName, &p.LastName, &p.Email, &p.BirthDate, &p.EmployeeNumber, &p.Department)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func mapProfessorWriteError(op string, err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, dberrors.ProfessorsEmployeeNumberKey):
		return apperrors.ErrEmployeeNumberAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, dberrors.ProfessorsEmailKey):
		return apperrors.ErrEmailAlreadyExists
	default:
		logger.Error().Err(err).Str("op", op).Msg("Error writing professor")
		return apperrors.Database(op, err)
	}
}

// Create inserts a new professor
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	const op = "ProfessorRepository.Create"

	sqlStr, args, err := squirrel.Insert("professors").
		Columns("first_name", "last_name", "email", "birth_date", "employee_number", "department").
		Values(professor.FirstName, professor.LastName, professor.Email, professor.BirthDate,
			professor.EmployeeNumber, professor.Department).
		Suffix("RETURNING id, version").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return apperrors.Database(op, err)
	}

	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&professor.ID, &professor.Version); err != nil {
		return mapProfessorWriteError(op, err)
	}
	return nil
}

// GetByID retrieves a professor by ID
func (r *ProfessorRepository) GetByID(ctx context.Context, id int64) (*models.Professor, error) {
	const op = "ProfessorRepository.GetByID"

	sqlStr, args, err := r.selectProfessorQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperrors.Database(op, err)
	}

	professor, err := scanProfessor(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfessorNotFound
		}
		logger.Error().Err(err).Int64("professorID", id).Msg("Error retrieving professor")
		return nil, apperrors.Database(op, err)
	}
	return professor, nil
}

// GetAll retrieves all professors ordered by id
func (r *ProfessorRepository) GetAll(ctx context.Context) ([]*models.Professor, error) {
	const op = "ProfessorRepository.GetAll"

	sqlStr, args, err := r.selectProfessorQuery().OrderBy("id").ToSql()
	if err != nil {
		return nil, apperrors.Database(op, err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing professors")
		return nil, apperrors.Database(op, err)
	}
	defer rows.Close()

	professors := []*models.Professor{}
	for rows.Next() {
		professor, err := scanProfessor(rows)
		if err != nil {
			return nil, apperrors.Database(op, err)
		}
		professors = append(professors, professor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(op, err)
	}
	return professors, nil
}

// Update updates a professor if professor.Version is still current.
// On success professor.Version holds the new version.
func (r *ProfessorRepository) Update(ctx context.Context, professor *models.Professor) error {
	const op = "ProfessorRepository.Update"

	sqlStr, args, err := squirrel.Update("professors").
		Set("first_name", professor.FirstName).
		Set("last_name", professor.LastName).
		Set("email", professor.Email).
		Set("birth_date", professor.BirthDate).
		Set("employee_number", professor.EmployeeNumber).
		Set("department", professor.Department).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": professor.ID, "version": professor.Version}).
		Suffix("RETURNING version").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return apperrors.Database(op, err)
	}

	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&professor.Version)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return mapProfessorWriteError(op, err)
	}

	var current int64
	err = r.db.QueryRow(ctx, "SELECT version FROM professors WHERE id = $1", professor.ID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrProfessorNotFound
		}
		return apperrors.Database(op, err)
	}
	return apperrors.NewCustomError(apperrors.ErrConflict,
		fmt.Sprintf("professor %d was modified concurrently", professor.ID)).
		WithDetails(map[string]interface{}{"version": professor.Version, "currentVersion": current})
}

// Delete deletes a professor by ID
func (r *ProfessorRepository) Delete(ctx context.Context, id int64) error {
	const op = "ProfessorRepository.Delete"

	tag, err := r.db.Exec(ctx, "DELETE FROM professors WHERE id = $1", id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrProfessorHasAssignedCourses
		}
		logger.Error().Err(err).Int64("professorID", id).Msg("Error deleting professor")
		return apperrors.Database(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfessorNotFound
	}
	return nil
}

// HasAssignedCourses reports whether any course is assigned to the professor
func (r *ProfessorRepository) HasAssignedCourses(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM courses WHERE professor_id = $1)", id).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("professorID", id).Msg("Error checking assigned courses")
		return false, apperrors.Database("ProfessorRepository.HasAssignedCourses", err)
	}
	return exists, nil
}
