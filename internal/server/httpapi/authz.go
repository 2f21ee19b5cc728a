package httpapi

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/taskhub/internal/common"
)

// OwnerResolver maps a resource id to the id of the user who owns it.
// "No such resource" is common.ErrorNotFound.
type OwnerResolver func(ctx context.Context, resourceID string) (string, error)

// RequireRole admits only principals whose role is in the allowed set.
// An anonymous request gets 401; an authenticated one with the wrong role
// gets 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized access", nil)
				return
			}
			if !slices.Contains(roles, principal.Role) {
				WriteError(w, http.StatusForbidden, CodeForbidden, "Insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner admits the owner of the resource named by the URL parameter,
// or an admin. A resolver failure is never a silent allow: an unknown
// resource is 404 and a store failure is 500.
func RequireOwner(resolve OwnerResolver, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized access", nil)
				return
			}

			ownerID, err := resolve(r.Context(), chi.URLParam(r, param))
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					WriteError(w, http.StatusNotFound, CodeNotFound, "Resource not found", nil)
					return
				}
				WriteError(w, http.StatusInternalServerError, "", "Internal server error", nil)
				return
			}

			if ownerID != principal.ID && !principal.IsAdmin() {
				WriteError(w, http.StatusForbidden, CodeForbidden, "Access forbidden", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
