package notifications

import (
	"context"

	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// Repository persists per-user notifications. All reads and mutations are
// scoped by user ID so one user can never touch another user's rows.
type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}
