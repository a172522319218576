package reviews

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/noshow/pkg/handlers"
	"github.com/JaimeStill/noshow/pkg/openapi"
	"github.com/JaimeStill/noshow/pkg/routes"
)

// Handler provides HTTP endpoints for review operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "reviews"),
	}
}

// Routes returns the route group definition for review endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/reviews",
		Tags:   []string{"Reviews"},
		Schemas: map[string]*openapi.Schema{
			"Review":        reviewSchema,
			"SubmitCommand": submitCommandSchema,
			"Evaluation":    evaluationSchema,
			"Summary":       summarySchema,
		},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{noteId}", Handler: h.Submit, Summary: "Submit or replace a review pass", Body: "SubmitCommand"},
			{Method: "GET", Pattern: "/{noteId}", Handler: h.List, Summary: "List the review passes of a note"},
			{Method: "GET", Pattern: "/{noteId}/verdict", Handler: h.Evaluate, Summary: "Evaluate the verdict and status of a note"},
			{Method: "GET", Pattern: "/batch/{batchId}/summary", Handler: h.Summary, Summary: "Count outcomes across a batch"},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, Summary: "Delete a review pass"},
		},
	}
}

// Submit records a reviewer's pass over a note.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	noteID, ok := handlers.PathUUID(w, r, h.logger, "noteId", ErrNoteNotFound)
	if !ok {
		return
	}

	var cmd SubmitCommand
	if !handlers.DecodeJSON(w, r, h.logger, &cmd) {
		return
	}

	rv, err := h.sys.Submit(r.Context(), noteID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rv)
}

// List returns the review passes of a note ordered by pass.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	noteID, ok := handlers.PathUUID(w, r, h.logger, "noteId", ErrNoteNotFound)
	if !ok {
		return
	}

	items, err := h.sys.List(r.Context(), noteID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Evaluate returns a note with its passes, verdict, and status.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	noteID, ok := handlers.PathUUID(w, r, h.logger, "noteId", ErrNoteNotFound)
	if !ok {
		return
	}

	ev, err := h.sys.Evaluate(r.Context(), noteID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ev)
}

// Summary returns outcome counts for every note of a batch.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	batchID, ok := handlers.PathUUID(w, r, h.logger, "batchId", ErrBatchNotFound)
	if !ok {
		return
	}

	sum, err := h.sys.Summary(r.Context(), batchID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sum)
}

// Delete removes a single review pass.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

