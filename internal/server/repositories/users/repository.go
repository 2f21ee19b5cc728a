package users

import (
	"context"

	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// Repository is the credential store adapter. "Not found" is reported as
// common.ErrorNotFound, never as a nil-with-nil result; infrastructure
// failures propagate wrapped.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByEmailWithSecret is the only read path that includes the password
	// hash. It exists solely for login and password-change flows.
	GetByEmailWithSecret(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}
