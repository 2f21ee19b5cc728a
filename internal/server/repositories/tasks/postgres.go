// Package tasks provides the PostgreSQL-backed task repository.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// defaultLimit bounds unpaginated list requests.
const defaultLimit = 50

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskCols = `id, owner_id, title, description, status, priority, due_date, attachment_key, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (owner_id, title, description, status, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.OwnerID, task.Title, task.Description, task.Status, task.Priority, task.DueDate).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE id = $1`

	return scanTask(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, f Filter) ([]*models.Task, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT ` + taskCols + ` FROM tasks WHERE owner_id = $1`
	args := []any{ownerID}
	if f.Status != "" {
		query += ` AND status = $2`
		args = append(args, f.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, f.Offset)

	return r.list(ctx, query, args...)
}

func (r *PostgresRepository) ListDueBefore(ctx context.Context, deadline time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks
		 WHERE due_date IS NOT NULL AND due_date < $1 AND status <> $2 AND due_notified_at IS NULL
		 ORDER BY due_date
		 `

	return r.list(ctx, query, deadline, models.StatusDone)
}

func (r *PostgresRepository) MarkDueNotified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET due_notified_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, due_date = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + taskCols

	return scanTask(r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority, task.DueDate))
}

func (r *PostgresRepository) SetAttachmentKey(ctx context.Context, id, key string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET attachment_key = $2, updated_at = now() WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.OwnerID, &task.Title, &task.Description, &task.Status,
			&task.Priority, &task.DueDate, &task.AttachmentKey, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func scanTask(row *sql.Row) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description, &task.Status,
		&task.Priority, &task.DueDate, &task.AttachmentKey, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}
