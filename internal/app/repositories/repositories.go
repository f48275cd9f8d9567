package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// runs the same queries inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	CourseRepository    *CourseRepository
	StudentRepository   *StudentRepository
	ProfessorRepository *ProfessorRepository
	UserRepository      *UserRepository
}

// NewRepositories initializes all repositories on the given connection
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		CourseRepository:    NewCourseRepository(db),
		StudentRepository:   NewStudentRepository(db),
		ProfessorRepository: NewProfessorRepository(db),
		UserRepository:      NewUserRepository(db),
	}
}
