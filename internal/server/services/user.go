// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, password changes, and
// profile CRUD, issuing JWTs on successful authentication.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/auth"
	"github.com/dmitrijs2005/taskhub/internal/server/config"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
)

// UserService provides authentication-related operations:
// - Register: create users and mint a first token
// - Login: verify credentials and mint tokens
// - ChangePassword: verify the current secret and store a new digest
// plus plain profile CRUD for handlers.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        *auth.PasswordHasher
	notifications *NotificationService
	jwtSecret     []byte
	tokenValidity time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
// notifications may be nil; then no welcome/password emails are dispatched.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, notifications *NotificationService) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		hasher:        auth.NewPasswordHasher(cfg.HashCost),
		notifications: notifications,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// Register creates a new user and returns it together with a fresh token.
// A duplicate email or username yields common.ErrorAlreadyExists; the unique
// index decides races, so concurrent registrations end with one winner.
func (s *UserService) Register(ctx context.Context, name, username, email, password string) (*models.User, string, error) {
	if err := validateRegistration(name, username, email, password); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		ve := newValidationError()
		ve.Fields["password"] = err.Error()
		return nil, "", ve
	}

	user := &models.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         common.RoleUser,
	}

	repo := s.repomanager.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", common.ErrorAlreadyExists
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := auth.GenerateToken(created.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	if s.notifications != nil {
		s.notifications.Dispatch(ctx, created.ID, created.Email, models.NotificationWelcome,
			"Welcome to TaskHub", fmt.Sprintf("Hi %s, your account is ready.", created.Name))
	}

	return created, token, nil
}

// Login verifies the provided password against the stored digest and, on
// success, returns the user and a new token. Unknown emails, wrong passwords,
// and provider-backed accounts without a password all collapse into
// common.ErrorUnauthorized so nothing about the account leaks.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmailWithSecret(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	user.PasswordHash = ""
	return user, token, nil
}

// ChangePassword re-hashes and stores a new password after verifying the
// current one. The user is looked up through the secret read path because
// normal reads never carry the digest.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	withSecret, err := repo.GetByEmailWithSecret(ctx, user.Email)
	if err != nil {
		return common.ErrorInternal
	}

	if withSecret.PasswordHash == "" || !s.hasher.Verify(current, withSecret.PasswordHash) {
		return common.ErrorUnauthorized
	}

	if len(next) < minPasswordLen {
		ve := newValidationError()
		ve.Fields["password"] = "password must be at least 8 characters"
		return ve
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return common.ErrorInternal
	}

	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return common.ErrorInternal
	}

	if s.notifications != nil {
		s.notifications.Dispatch(ctx, user.ID, user.Email, models.NotificationPassword,
			"Your password was changed", "If this wasn't you, contact support immediately.")
	}

	return nil
}

// Get returns the user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Update stores profile changes (name, username); a username collision
// surfaces as common.ErrorAlreadyExists.
func (s *UserService) Update(ctx context.Context, user *models.User) (*models.User, error) {
	return s.repomanager.Users(s.db).Update(ctx, user)
}

// Delete removes the user together with their tasks and notifications in a
// single transaction.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Tasks(tx).DeleteByOwner(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Notifications(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
}

// List returns a page of users; limit is clamped to sane bounds.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repomanager.Users(s.db).List(ctx, limit, offset)
}
