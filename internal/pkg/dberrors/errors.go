package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError
)

// PostgreSQL error codes
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
)

// Constraint names declared in migrations/001_init.sql
const (
	StudentsEnrollmentNumberKey = "students_enrollment_number_key"
	StudentsEmailKey            = "students_email_key"
	ProfessorsEmployeeNumberKey = "professors_employee_number_key"
	ProfessorsEmailKey          = "professors_email_key"
	CoursesCodeKey              = "courses_code_key"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation && pgErr.ConstraintName == constraintName
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == ForeignKeyViolation
}
