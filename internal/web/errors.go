package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with whatever the service returned; the typed
// error decides the HTTP status, the technical error is logged with the
// request ID, and the client receives either a JSON body or plain text
// depending on the contract in force for the request.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"recordbook/internal/core"
	"recordbook/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

// respondError maps a service error to an HTTP response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
	)

	msg := ErrorResponse{Error: err.Error(), Message: err.Error()}
	if status == http.StatusInternalServerError || errors.Is(err, core.ErrDuplicateEID) {
		um := core.MapError(err)
		msg = ErrorResponse{
			Error:   um.Message,
			Message: um.Message,
			Action:  um.Action,
			Code:    um.Code,
		}
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(msg)
		return
	}

	http.Error(w, msg.Message, status)
}

// statusFor translates the service error taxonomy into HTTP statuses.
func statusFor(err error) int {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDuplicateEID):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoFields):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// wantsJSON checks if the client should get a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
