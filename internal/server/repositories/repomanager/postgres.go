// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/migrations"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Tasks returns a tasks.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewPostgresRepository(db)
}

// Notifications returns a notifications.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
