// Package httpapi implements the HTTP transport: routing, authentication and
// authorization middleware, request handlers, and the JSON response envelope.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/server/services"
)

// Machine-readable error codes carried in the failure envelope.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
)

type successEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Code      string            `json:"code,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// WriteSuccess writes the uniform success envelope.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Status: "success", Data: data})
}

// WriteError writes the uniform failure envelope.
func WriteError(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, errorEnvelope{
		Status:    "error",
		Message:   message,
		Errors:    fields,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

// writeServiceError maps a service or repository error onto the failure
// envelope. Anything unrecognized becomes a generic 500 so internals never
// leak to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, CodeValidation, "Validation failed", ve.Fields)
		return
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		WriteError(w, http.StatusBadRequest, CodeValidation, "Validation failed", nil)
	case errors.Is(err, common.ErrorUnauthorized):
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized access", nil)
	case errors.Is(err, common.ErrorForbidden):
		WriteError(w, http.StatusForbidden, CodeForbidden, "Access forbidden", nil)
	case errors.Is(err, common.ErrorNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, "Resource not found", nil)
	case errors.Is(err, common.ErrorAlreadyExists):
		WriteError(w, http.StatusConflict, CodeConflict, "Resource already exists", nil)
	default:
		WriteError(w, http.StatusInternalServerError, "", "Internal server error", nil)
	}
}
