package notifications

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("n-1", time.Now())
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+notifications`).
		WithArgs("u-1", "welcome", "Welcome to TaskHub", "hello").
		WillReturnRows(rows)

	n := &models.Notification{UserID: "u-1", Kind: models.NotificationWelcome, Subject: "Welcome to TaskHub", Body: "hello"}
	got, err := repo.Create(context.Background(), n)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "n-1" {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestListByUser_UnreadOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "user_id", "kind", "subject", "body", "read", "created_at"}).
		AddRow("n-1", "u-1", "task_due", "Task due soon", "", false, time.Now())
	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+notifications\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+read\s*=\s*false`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u-1", true)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 1 || got[0].Read {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestMarkRead_ScopedToUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// someone else's notification: zero rows touched
	mock.ExpectExec(`(?s)^UPDATE\s+notifications\s+SET\s+read\s*=\s*true`).
		WithArgs("n-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "intruder", "n-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestDeleteByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+notifications\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteByUser(context.Background(), "u-1"); err != nil {
		t.Fatalf("DeleteByUser error: %v", err)
	}
}
