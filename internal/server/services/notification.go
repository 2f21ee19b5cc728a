package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
)

// emailTimeout bounds a single fire-and-forget delivery attempt.
const emailTimeout = 15 * time.Second

// NotificationService persists notifications and emails them to users.
// Delivery is fire-and-forget: the triggering request never waits for, or
// learns about, email failures.
type NotificationService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	mailer      Mailer
	logger      logging.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db dbx.DBTX, m repomanager.RepositoryManager, mailer Mailer, logger logging.Logger) *NotificationService {
	return &NotificationService{
		db:          db,
		repomanager: m,
		mailer:      mailer,
		logger:      logger.With("component", "notifications"),
	}
}

// Dispatch stores a notification for the user and kicks off email delivery
// in the background. The email goroutine gets its own context so it outlives
// the triggering request; its result is discarded after logging.
func (s *NotificationService) Dispatch(ctx context.Context, userID, email, kind, subject, body string) {
	n := &models.Notification{UserID: userID, Kind: kind, Subject: subject, Body: body}

	if _, err := s.repomanager.Notifications(s.db).Create(ctx, n); err != nil {
		s.logger.Error(ctx, "failed to store notification", "user_id", userID, "kind", kind, "error", err.Error())
		return
	}

	go func() {
		mailCtx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()

		if err := s.mailer.Send(mailCtx, email, subject, body); err != nil {
			s.logger.Warn(mailCtx, "email delivery failed", "user_id", userID, "kind", kind, "error", err.Error())
		}
	}()
}

// List returns the user's notifications, optionally unread only.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	return s.repomanager.Notifications(s.db).ListByUser(ctx, userID, unreadOnly)
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.repomanager.Notifications(s.db).MarkRead(ctx, userID, id)
}

// Clear removes all of the user's notifications.
func (s *NotificationService) Clear(ctx context.Context, userID string) error {
	return s.repomanager.Notifications(s.db).DeleteByUser(ctx, userID)
}
