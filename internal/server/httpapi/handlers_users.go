package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type updateProfileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, PrincipalFromContext(r.Context()))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var req updateProfileRequest
	if !decodeJSON(r, &req) {
		WriteError(w, http.StatusBadRequest, CodeValidation, "Invalid request body", nil)
		return
	}

	user, err := s.users.Get(r.Context(), principal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Username != "" {
		user.Username = req.Username
	}

	updated, err := s.users.Update(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, updated.Project())
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var req changePasswordRequest
	if !decodeJSON(r, &req) {
		WriteError(w, http.StatusBadRequest, CodeValidation, "Invalid request body", nil)
		return
	}

	if err := s.users.ChangePassword(r.Context(), principal.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	if err := s.users.Delete(r.Context(), principal.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	s.clearAccessCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, user.Project())
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := s.users.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]any, 0, len(users))
	for _, u := range users {
		out = append(out, u.Project())
	}
	WriteSuccess(w, http.StatusOK, out)
}
