package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, plus a
// schema migration hook. Services hold a manager and a handle; passing a
// transactional handle yields transactional repositories.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Notifications(db dbx.DBTX) notifications.Repository
}
