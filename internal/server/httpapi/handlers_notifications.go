package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	list, err := s.notifications.List(r.Context(), principal.ID, unreadOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, list)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	if err := s.notifications.MarkRead(r.Context(), principal.ID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	if err := s.notifications.Clear(r.Context(), principal.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
