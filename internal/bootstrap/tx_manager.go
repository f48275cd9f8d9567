package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5"
	appRepos "github.com/yigit/academia/internal/app/repositories"
	appServices "github.com/yigit/academia/internal/app/services"
	"github.com/yigit/academia/internal/db"
)

// pgTxManager binds a fresh set of repositories to each pgx transaction
type pgTxManager struct {
	db *db.PostgresDB
}

func newTxManager(database *db.PostgresDB) appServices.TxManager {
	return &pgTxManager{db: database}
}

// WithinTransaction implements services.TxManager
func (m *pgTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos appServices.Repositories) error) error {
	return m.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, serviceRepositories(appRepos.NewRepositories(tx)))
	})
}

func serviceRepositories(r *appRepos.Repositories) appServices.Repositories {
	return appServices.Repositories{
		Courses:    r.CourseRepository,
		Students:   r.StudentRepository,
		Professors: r.ProfessorRepository,
	}
}
