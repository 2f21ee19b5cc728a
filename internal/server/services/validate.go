package services

import (
	"strings"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// ValidationError carries field-level reasons for a rejected payload.
// It unwraps to common.ErrorValidation so callers can match with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation error"
}

func (e *ValidationError) Unwrap() error {
	return common.ErrorValidation
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// minPasswordLen is the minimum accepted password length in bytes.
const minPasswordLen = 8

// validateRegistration checks a registration payload and returns nil or a
// *ValidationError listing every failed field.
func validateRegistration(name, username, email, password string) error {
	ve := newValidationError()

	if strings.TrimSpace(name) == "" {
		ve.Fields["name"] = "name is required"
	}
	if strings.TrimSpace(username) == "" {
		ve.Fields["username"] = "username is required"
	}
	if !looksLikeEmail(email) {
		ve.Fields["email"] = "a valid email is required"
	}
	if len(password) < minPasswordLen {
		ve.Fields["password"] = "password must be at least 8 characters"
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// validateTask checks a task payload and returns nil or a *ValidationError.
func validateTask(title, status, priority string) error {
	ve := newValidationError()

	if strings.TrimSpace(title) == "" {
		ve.Fields["title"] = "title is required"
	}
	if !models.ValidStatus(status) {
		ve.Fields["status"] = "status must be todo, in_progress or done"
	}
	if !models.ValidPriority(priority) {
		ve.Fields["priority"] = "priority must be low, medium or high"
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func looksLikeEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
