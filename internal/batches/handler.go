package batches

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/pkg/formatting"
	"github.com/JaimeStill/noshow/pkg/handlers"
	"github.com/JaimeStill/noshow/pkg/openapi"
	"github.com/JaimeStill/noshow/pkg/pagination"
	"github.com/JaimeStill/noshow/pkg/routes"
)

// Handler provides HTTP endpoints for batch operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "batches"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for batch endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/batches",
		Tags:   []string{"Batches"},
		Schemas: map[string]*openapi.Schema{
			"Batch":       batchSchema,
			"BatchUpload": batchUploadSchema,
		},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Summary: "List uploaded batches"},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Summary: "Find a batch"},
			{Method: "POST", Pattern: "", Handler: h.Upload, Summary: "Upload and classify an export", Body: "BatchUpload", Multipart: true},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Summary: "Search batches", Body: "PageRequest"},
			{Method: "POST", Pattern: "/{id}/reclassify", Handler: h.Reclassify, Summary: "Reclassify every row with the active registry"},
			{Method: "GET", Pattern: "/{id}/export", Handler: h.Export, Summary: "Download the export with the label column"},
			{Method: "GET", Pattern: "/{id}/source", Handler: h.Source, Summary: "Download the original upload"},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, Summary: "Delete a batch and its notes"},
		},
	}
}

// List returns a paginated list of batches with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single batch by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound)
	if !ok {
		return
	}

	b, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, b)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching batches.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !handlers.DecodeJSON(w, r, h.logger, &req) {
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Upload processes a multipart form holding the export file and optional
// narrative_column, trigger_column, key_column, and uploaded_by values.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
				fmt.Errorf("%w: limit is %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 1)))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)
	if !strings.HasPrefix(http.DetectContentType(data), "text/") {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: not a delimited text export", ErrInvalidFile))
		return
	}

	cmd := CreateCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		Columns: Columns{
			Narrative: strings.TrimSpace(r.FormValue("narrative_column")),
			Trigger:   strings.TrimSpace(r.FormValue("trigger_column")),
			Key:       strings.TrimSpace(r.FormValue("key_column")),
		},
	}
	if by := strings.TrimSpace(r.FormValue("uploaded_by")); by != "" {
		cmd.UploadedBy = &by
	}

	b, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, b)
}

// Reclassify re-runs the engine over every stored row of a batch.
func (h *Handler) Reclassify(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound)
	if !ok {
		return
	}

	b, err := h.sys.Reclassify(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, b)
}

// Export writes the original export with the label column appended as a
// CSV attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.sys.Export(r.Context(), id, &buf); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(exportName(id)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("export write failed", "id", id, "error", err)
	}
}

// Source streams the original uploaded file.
func (h *Handler) Source(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathUUID(w, r, h.logger, "id", ErrNotFound)
	if !ok {
		return
	}

	b, rc, err := h.sys.Source(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	contentType := b.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachment(b.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("source stream failed", "id", id, "error", err)
	}
}

// Delete removes a batch, its notes, and its stored file.
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

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func exportName(id uuid.UUID) string {
	return fmt.Sprintf("resultado_no_show_%s.csv", id)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filepath.Base(filename))
}
