package httpapi

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/users"
)

// In-memory repositories backing the handler tests. They mirror the Postgres
// implementations' error contract: common.ErrorNotFound for missing rows and
// common.ErrorAlreadyExists for unique violations.

type memStore struct {
	mu            sync.Mutex
	seq           int
	users         map[string]*models.User
	tasks         map[string]*models.Task
	dueNotified   map[string]bool
	notifications map[string]*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]*models.User{},
		tasks:         map[string]*models.Task{},
		dueNotified:   map[string]bool{},
		notifications: map[string]*models.Notification{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type memUsers struct{ store *memStore }

func (r *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return nil, common.ErrorAlreadyExists
		}
	}

	stored := *user
	stored.ID = r.store.nextID("u")
	stored.CreatedAt = time.Now()
	r.store.users[stored.ID] = &stored

	out := stored
	out.PasswordHash = ""
	return &out, nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	out.PasswordHash = ""
	return &out, nil
}

func (r *memUsers) getByEmail(email string, withSecret bool) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			if !withSecret {
				out.PasswordHash = ""
			}
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByEmail(email, false)
}

func (r *memUsers) GetByEmailWithSecret(ctx context.Context, email string) (*models.User, error) {
	return r.getByEmail(email, true)
}

func (r *memUsers) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.users[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	stored.Name = user.Name
	stored.Username = user.Username

	out := *stored
	out.PasswordHash = ""
	return &out, nil
}

func (r *memUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (r *memUsers) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.store.users, id)
	return nil
}

func (r *memUsers) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := []*models.User{}
	for _, u := range r.store.users {
		c := *u
		c.PasswordHash = ""
		out = append(out, &c)
	}
	return out, nil
}

type memTasks struct{ store *memStore }

func (r *memTasks) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := *task
	stored.ID = r.store.nextID("t")
	stored.CreatedAt = time.Now()
	r.store.tasks[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *memTasks) GetByID(ctx context.Context, id string) (*models.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (r *memTasks) ListByOwner(ctx context.Context, ownerID string, f tasks.Filter) ([]*models.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := []*models.Task{}
	for _, t := range r.store.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r *memTasks) ListDueBefore(ctx context.Context, deadline time.Time) ([]*models.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := []*models.Task{}
	for id, t := range r.store.tasks {
		if t.Status == models.StatusDone || t.DueDate == nil || !t.DueDate.Before(deadline) {
			continue
		}
		if r.store.dueNotified[id] {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r *memTasks) MarkDueNotified(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	r.store.dueNotified[id] = true
	return nil
}

func (r *memTasks) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tasks[task.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	stored := *task
	r.store.tasks[task.ID] = &stored

	out := stored
	return &out, nil
}

func (r *memTasks) SetAttachmentKey(ctx context.Context, id, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.tasks[id]
	if !ok {
		return common.ErrorNotFound
	}
	t.AttachmentKey = key
	return nil
}

func (r *memTasks) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.store.tasks, id)
	return nil
}

func (r *memTasks) DeleteByOwner(ctx context.Context, ownerID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, t := range r.store.tasks {
		if t.OwnerID == ownerID {
			delete(r.store.tasks, id)
		}
	}
	return nil
}

type memNotifications struct{ store *memStore }

func (r *memNotifications) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := *n
	stored.ID = r.store.nextID("n")
	stored.CreatedAt = time.Now()
	r.store.notifications[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *memNotifications) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := []*models.Notification{}
	for _, n := range r.store.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

func (r *memNotifications) MarkRead(ctx context.Context, userID, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n, ok := r.store.notifications[id]
	if !ok || n.UserID != userID {
		return common.ErrorNotFound
	}
	n.Read = true
	return nil
}

func (r *memNotifications) DeleteByUser(ctx context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, n := range r.store.notifications {
		if n.UserID == userID {
			delete(r.store.notifications, id)
		}
	}
	return nil
}

type memManager struct{ store *memStore }

func (m *memManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *memManager) Users(db dbx.DBTX) users.Repository                  { return &memUsers{store: m.store} }
func (m *memManager) Tasks(db dbx.DBTX) tasks.Repository                  { return &memTasks{store: m.store} }
func (m *memManager) Notifications(db dbx.DBTX) notifications.Repository {
	return &memNotifications{store: m.store}
}

var _ repomanager.RepositoryManager = (*memManager)(nil)
