// Package handlers provides JSON response helpers shared by domain HTTP handlers.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as a JSON error body. Server errors
// are logged at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// PathUUID parses the named path value as a UUID. A malformed value is
// answered with 400 carrying invalid, and ok is false.
func PathUUID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string, invalid error) (id uuid.UUID, ok bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, invalid)
		return uuid.Nil, false
	}
	return id, true
}

// DecodeJSON decodes the request body into v. A malformed body is answered
// with 400 and ok is false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, v any) (ok bool) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return false
	}
	return true
}
