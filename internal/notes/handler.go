package notes

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/noshow/pkg/handlers"
	"github.com/JaimeStill/noshow/pkg/openapi"
	"github.com/JaimeStill/noshow/pkg/pagination"
	"github.com/JaimeStill/noshow/pkg/routes"
)

// Handler provides HTTP endpoints for note operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "notes"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for note endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/notes",
		Tags:   []string{"Notes"},
		Schemas: map[string]*openapi.Schema{
			"Note": noteSchema,
		},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Summary: "List classified notes"},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Summary: "Search classified notes", Body: "PageRequest"},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Summary: "Find a note"},
			{Method: "GET", Pattern: "/batch/{batchId}/key/{key}", Handler: h.FindByKey, Summary: "Find a note by its row key"},
			{Method: "POST", Pattern: "/{id}/classify", Handler: h.Classify, Summary: "Reclassify a note with the active registry"},
		},
	}
}

// List returns a paginated list of notes with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, pagination.PageRequestFromQuery(q, h.pagination), FiltersFromQuery(q))
}

// Search accepts a JSON body with pagination and filter criteria and returns matching notes.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !handlers.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	req.PageRequest.Normalize(h.pagination)
	h.list(w, r, req.PageRequest, req.Filters)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, page pagination.PageRequest, filters Filters) {
	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single note by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	if id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound); ok {
		h.respond(w)(h.sys.Find(r.Context(), id))
	}
}

// FindByKey returns the note of a batch carrying the given row key.
func (h *Handler) FindByKey(w http.ResponseWriter, r *http.Request) {
	if batchID, ok := handlers.PathUUID(w, r, h.logger, "batchId", ErrNotFound); ok {
		h.respond(w)(h.sys.FindByKey(r.Context(), batchID, r.PathValue("key")))
	}
}

// Classify re-runs the engine on a stored note.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound); ok {
		h.respond(w)(h.sys.Classify(r.Context(), id))
	}
}

func (h *Handler) respond(w http.ResponseWriter) func(*Note, error) {
	return func(n *Note, err error) {
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, n)
	}
}
