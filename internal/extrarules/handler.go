package extrarules

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/pkg/handlers"
	"github.com/JaimeStill/noshow/pkg/openapi"
	"github.com/JaimeStill/noshow/pkg/pagination"
	"github.com/JaimeStill/noshow/pkg/routes"
)

// Handler provides HTTP endpoints for extra rule operations.
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
		logger:     logger.With("handler", "extrarules"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for extra rule endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/rules",
		Tags:   []string{"Rules"},
		Schemas: map[string]*openapi.Schema{
			"ExtraRule":       extraRuleSchema,
			"RuleCommand":     ruleCommandSchema,
			"ImportCommand":   importCommandSchema,
			"ImportResult":    importResultSchema,
			"ImportLineError": lineErrorSchema,
			"TestCommand":     testCommandSchema,
		},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Summary: "List extra rules"},
			{Method: "GET", Pattern: "/catalog", Handler: h.Catalog, Summary: "Describe the active compiled registry"},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Summary: "Find an extra rule"},
			{Method: "POST", Pattern: "", Handler: h.Create, Summary: "Create an extra rule", Body: "RuleCommand"},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Summary: "Search extra rules", Body: "PageRequest"},
			{Method: "POST", Pattern: "/import", Handler: h.Import, Summary: "Import a quick-add block", Body: "ImportCommand"},
			{Method: "POST", Pattern: "/test", Handler: h.Test, Summary: "Classify a single narrative", Body: "TestCommand"},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, Summary: "Update an extra rule", Body: "RuleCommand"},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, Summary: "Delete an extra rule"},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.Activate, Summary: "Activate an extra rule"},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.Deactivate, Summary: "Deactivate an extra rule"},
		},
	}
}

// List returns a paginated list of extra rules with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, pagination.PageRequestFromQuery(q, h.pagination), FiltersFromQuery(q))
}

// Search accepts a JSON body with pagination and filter criteria and returns matching rules.
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

// Catalog returns every rule of the active registry in match order.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Catalog())
}

// Find returns a single extra rule by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, http.StatusOK, h.sys.Find)
}

// Create processes a JSON body to add an extra rule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if !handlers.DecodeJSON(w, r, h.logger, &cmd) {
		return
	}
	h.respond(w, http.StatusCreated)(h.sys.Create(r.Context(), cmd))
}

// Update processes a JSON body to replace an extra rule's fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound)
	if !ok {
		return
	}
	var cmd UpdateCommand
	if !handlers.DecodeJSON(w, r, h.logger, &cmd) {
		return
	}
	h.respond(w, http.StatusOK)(h.sys.Update(r.Context(), id, cmd))
}

// Delete removes an extra rule by its UUID path parameter.
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

// Import stores the valid rules of a quick-add block and reports rejected lines.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var cmd ImportCommand
	if !handlers.DecodeJSON(w, r, h.logger, &cmd) {
		return
	}
	result, err := h.sys.Import(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Test classifies a narrative against the active registry without storing it.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	var cmd TestCommand
	if !handlers.DecodeJSON(w, r, h.logger, &cmd) {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sys.Test(cmd))
}

// Activate includes an extra rule in the active registry.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, http.StatusOK, h.sys.Activate)
}

// Deactivate removes an extra rule from the active registry without deleting it.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, http.StatusOK, h.sys.Deactivate)
}

func (h *Handler) byID(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	fn func(ctx context.Context, id uuid.UUID) (*ExtraRule, error),
) {
	id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound)
	if !ok {
		return
	}
	h.respond(w, status)(fn(r.Context(), id))
}

// respond writes rule with status, or the mapped error.
func (h *Handler) respond(w http.ResponseWriter, status int) func(*ExtraRule, error) {
	return func(rule *ExtraRule, err error) {
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondJSON(w, status, rule)
	}
}
