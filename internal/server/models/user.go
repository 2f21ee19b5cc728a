// Package models holds the persistent entity shapes shared by repositories,
// services, and handlers.
package models

import (
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
)

// User is the identity record a request acts as.
//
// PasswordHash is only populated on the login/password-change read path
// (GetByEmailWithSecret); every other read leaves it empty. Users created via
// an external identity provider have an empty hash and a ProviderID instead,
// and cannot authenticate with a password.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	ProviderID   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Projection is the minimal per-request view of a User attached to the
// request context after authentication. It never carries the password hash.
type Projection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Project returns the context-safe view of the user.
func (u *User) Project() *Projection {
	return &Projection{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// IsAdmin reports whether the user passes elevated-privilege checks.
func (p *Projection) IsAdmin() bool { return p.Role == common.RoleAdmin }
