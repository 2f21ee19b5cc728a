package httpapi

import (
	"context"

	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// ctxKey is unexported so no other package can collide with our context keys.
type ctxKey int

const principalKey ctxKey = iota

// withPrincipal attaches the authenticated user's projection to the context.
func withPrincipal(ctx context.Context, p *models.Projection) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request is anonymous.
func PrincipalFromContext(ctx context.Context) *models.Projection {
	p, _ := ctx.Value(principalKey).(*models.Projection)
	return p
}
