package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/taskhub/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskhub/internal/server/services"
)

// taskRequest carries a create or partial-update payload. Description and
// DueDate are pointers so an omitted field stays untouched on PATCH while an
// explicit `"description": ""` clears it.
type taskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

func (req *taskRequest) toInput() services.TaskInput {
	return services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var req taskRequest
	if !decodeJSON(r, &req) {
		WriteError(w, http.StatusBadRequest, CodeValidation, "Invalid request body", nil)
		return
	}

	task, err := s.tasks.Create(r.Context(), principal.ID, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	filter := tasks.Filter{Status: q.Get("status"), Limit: limit, Offset: offset}

	list, err := s.tasks.ListByOwner(r.Context(), principal.ID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, list)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(r, &req) {
		WriteError(w, http.StatusBadRequest, CodeValidation, "Invalid request body", nil)
		return
	}

	task, err := s.tasks.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAttachmentUpload returns a presigned PUT URL the client uploads the
// attachment to.
func (s *Server) handleAttachmentUpload(w http.ResponseWriter, r *http.Request) {
	url, err := s.tasks.AttachmentUploadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]string{"uploadUrl": url})
}

// handleAttachmentDownload returns a presigned GET URL for the stored
// attachment.
func (s *Server) handleAttachmentDownload(w http.ResponseWriter, r *http.Request) {
	url, err := s.tasks.AttachmentDownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]string{"downloadUrl": url})
}
