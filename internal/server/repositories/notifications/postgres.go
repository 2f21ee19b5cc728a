// Package notifications provides the PostgreSQL-backed notification repository.
package notifications

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query :=
		`INSERT INTO notifications (user_id, kind, subject, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Kind, n.Subject, n.Body).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	query :=
		`SELECT id, user_id, kind, subject, body, read, created_at FROM notifications
		 WHERE user_id = $1
		 `
	if unreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Subject, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
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

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
