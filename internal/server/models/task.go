package models

import "time"

// Task statuses. The zero value of a new task is StatusTodo.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a unit of work owned by exactly one user. Mutation and deletion
// require the caller to be the owner (or an admin).
type Task struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"ownerId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	AttachmentKey string     `json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
