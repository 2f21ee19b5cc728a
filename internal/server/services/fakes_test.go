package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/users"
)

// Hand-written fakes with overridable function fields. A method whose field
// is left nil panics, which is the desired behavior for calls a test does
// not expect.

type fakeUsersRepo struct {
	CreateFn               func(ctx context.Context, user *models.User) (*models.User, error)
	GetByIDFn              func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFn           func(ctx context.Context, email string) (*models.User, error)
	GetByEmailWithSecretFn func(ctx context.Context, email string) (*models.User, error)
	UpdateFn               func(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePasswordFn       func(ctx context.Context, id, passwordHash string) error
	DeleteFn               func(ctx context.Context, id string) error
	ListFn                 func(ctx context.Context, limit, offset int) ([]*models.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return f.CreateFn(ctx, user)
}
func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.GetByEmailFn(ctx, email)
}
func (f *fakeUsersRepo) GetByEmailWithSecret(ctx context.Context, email string) (*models.User, error) {
	return f.GetByEmailWithSecretFn(ctx, email)
}
func (f *fakeUsersRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	return f.UpdateFn(ctx, user)
}
func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return f.UpdatePasswordFn(ctx, id, passwordHash)
}
func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}
func (f *fakeUsersRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return f.ListFn(ctx, limit, offset)
}

type fakeTasksRepo struct {
	CreateFn           func(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByIDFn          func(ctx context.Context, id string) (*models.Task, error)
	ListByOwnerFn      func(ctx context.Context, ownerID string, f tasks.Filter) ([]*models.Task, error)
	ListDueBeforeFn    func(ctx context.Context, deadline time.Time) ([]*models.Task, error)
	MarkDueNotifiedFn  func(ctx context.Context, id string) error
	UpdateFn           func(ctx context.Context, task *models.Task) (*models.Task, error)
	SetAttachmentKeyFn func(ctx context.Context, id, key string) error
	DeleteFn           func(ctx context.Context, id string) error
	DeleteByOwnerFn    func(ctx context.Context, ownerID string) error
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	return f.CreateFn(ctx, task)
}
func (f *fakeTasksRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeTasksRepo) ListByOwner(ctx context.Context, ownerID string, fl tasks.Filter) ([]*models.Task, error) {
	return f.ListByOwnerFn(ctx, ownerID, fl)
}
func (f *fakeTasksRepo) ListDueBefore(ctx context.Context, deadline time.Time) ([]*models.Task, error) {
	return f.ListDueBeforeFn(ctx, deadline)
}
func (f *fakeTasksRepo) MarkDueNotified(ctx context.Context, id string) error {
	return f.MarkDueNotifiedFn(ctx, id)
}
func (f *fakeTasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	return f.UpdateFn(ctx, task)
}
func (f *fakeTasksRepo) SetAttachmentKey(ctx context.Context, id, key string) error {
	return f.SetAttachmentKeyFn(ctx, id, key)
}
func (f *fakeTasksRepo) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}
func (f *fakeTasksRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	return f.DeleteByOwnerFn(ctx, ownerID)
}

type fakeNotificationsRepo struct {
	mu      sync.Mutex
	created []*models.Notification

	CreateErr    error
	ListByUserFn func(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkReadFn   func(ctx context.Context, userID, id string) error
	DeleteByUserFn func(ctx context.Context, userID string) error
}

func (f *fakeNotificationsRepo) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotificationsRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	return f.ListByUserFn(ctx, userID, unreadOnly)
}
func (f *fakeNotificationsRepo) MarkRead(ctx context.Context, userID, id string) error {
	return f.MarkReadFn(ctx, userID, id)
}
func (f *fakeNotificationsRepo) DeleteByUser(ctx context.Context, userID string) error {
	return f.DeleteByUserFn(ctx, userID)
}

func (f *fakeNotificationsRepo) stored() []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Notification, len(f.created))
	copy(out, f.created)
	return out
}

// fakeManager vends the same fakes regardless of the handle it is given.
type fakeManager struct {
	users         *fakeUsersRepo
	tasks         *fakeTasksRepo
	notifications *fakeNotificationsRepo
}

func (m *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeManager) Tasks(db dbx.DBTX) tasks.Repository                  { return m.tasks }
func (m *fakeManager) Notifications(db dbx.DBTX) notifications.Repository  { return m.notifications }

var _ repomanager.RepositoryManager = (*fakeManager)(nil)

// fakeMailer signals every Send on a channel so tests can wait for the
// background delivery goroutine.
type fakeMailer struct {
	sent chan sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 8)}
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent <- sentMail{to: to, subject: subject, body: body}
	return m.err
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
