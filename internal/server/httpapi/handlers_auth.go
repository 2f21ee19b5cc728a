package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *models.Projection `json:"user"`
	Token string             `json:"token"`
}

func (s *Server) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokenValidity / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearAccessCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeJSON(r *http.Request, dst any) bool {
	return json.NewDecoder(r.Body).Decode(dst) == nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(r, &req) {
		WriteError(w, http.StatusBadRequest, CodeValidation, "Invalid request body", nil)
		return
	}

	user, token, err := s.users.Register(r.Context(), req.Name, req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.setAccessCookie(w, token)
	WriteSuccess(w, http.StatusCreated, authResponse{User: user.Project(), Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(r, &req) {
		WriteError(w, http.StatusBadRequest, CodeValidation, "Invalid request body", nil)
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.setAccessCookie(w, token)
	WriteSuccess(w, http.StatusOK, authResponse{User: user.Project(), Token: token})
}

// handleLogout clears the cookie. Tokens are not revoked server side; a
// Bearer client simply discards its copy.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAccessCookie(w)
	WriteSuccess(w, http.StatusOK, nil)
}

type sessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	User          *models.Projection `json:"user,omitempty"`
}

// handleSession reports who the caller is. It sits behind OptionalAuth, so
// a missing or bad credential yields an anonymous session instead of a 401.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	WriteSuccess(w, http.StatusOK, sessionResponse{
		Authenticated: principal != nil,
		User:          principal,
	})
}
