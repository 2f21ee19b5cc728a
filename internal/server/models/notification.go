package models

import "time"

// Notification kinds.
const (
	NotificationWelcome  = "welcome"
	NotificationTaskDue  = "task_due"
	NotificationPassword = "password_changed"
)

// Notification is a message addressed to a single user. Notifications are
// written fire-and-forget after state changes; delivery by email is best
// effort and never blocks the triggering request.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
