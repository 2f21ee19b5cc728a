// Package users provides the PostgreSQL-backed credential store adapter.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, username, email, password_hash, role, provider_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Username, user.Email, user.PasswordHash, user.Role, user.ProviderID).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, name, username, email, role, provider_id, created_at, updated_at FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, username, email, role, provider_id, created_at, updated_at FROM users
		 WHERE lower(email) = lower($1)
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByEmailWithSecret(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, username, email, password_hash, role, provider_id, created_at, updated_at FROM users
		 WHERE lower(email) = lower($1)
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}

	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users SET name = $2, username = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, username, email, role, provider_id, created_at, updated_at
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, user.ID, user.Name, user.Username))
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return translateError(err)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
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

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query :=
		`SELECT id, name, username, email, role, provider_id, created_at, updated_at FROM users
		 ORDER BY created_at
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Username, &user.Email,
			&user.Role, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Username, &user.Email,
		&user.Role, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}
