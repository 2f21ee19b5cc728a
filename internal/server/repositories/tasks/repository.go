package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// Filter narrows ListByOwner results. Zero values mean "no constraint";
// Limit falls back to the repository default when 0.
type Filter struct {
	Status string
	Limit  int
	Offset int
}

// Repository persists tasks. "Not found" is common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID string, f Filter) ([]*models.Task, error)
	// ListDueBefore returns unfinished, not-yet-notified tasks across all
	// owners with a due date before the deadline; used by the due-soon
	// notification sweep.
	ListDueBefore(ctx context.Context, deadline time.Time) ([]*models.Task, error)
	// MarkDueNotified records that the due-soon notification for the task
	// went out, excluding it from later ListDueBefore results.
	MarkDueNotified(ctx context.Context, id string) error
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	SetAttachmentKey(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}
