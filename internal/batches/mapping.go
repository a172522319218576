package batches

import (
	"net/url"
	"time"

	"github.com/JaimeStill/noshow/pkg/query"
	"github.com/JaimeStill/noshow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "batches", "b").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("delimiter", "Delimiter").
	Project("narrative_column", "NarrativeColumn").
	Project("trigger_column", "TriggerColumn").
	Project("key_column", "KeyColumn").
	Project("row_count", "RowCount").
	Project("status", "Status").
	Project("uploaded_by", "UploadedBy").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

const returning = `id, filename, content_type, size_bytes, storage_key, delimiter,
		narrative_column, trigger_column, key_column, row_count, status,
		uploaded_by, uploaded_at, updated_at`

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for batch queries.
// Filename uses case-insensitive contains matching. UploadedFrom is
// inclusive and UploadedTo exclusive. The rest match exactly.
type Filters struct {
	Status       *string    `json:"status,omitempty"`
	Filename     *string    `json:"filename,omitempty"`
	UploadedBy   *string    `json:"uploaded_by,omitempty"`
	UploadedFrom *time.Time `json:"uploaded_from,omitempty"`
	UploadedTo   *time.Time `json:"uploaded_to,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("UploadedBy", f.UploadedBy).
		WhereFrom("UploadedAt", f.UploadedFrom).
		WhereUntil("UploadedAt", f.UploadedTo)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	if u := values.Get("uploaded_by"); u != "" {
		f.UploadedBy = &u
	}
	f.UploadedFrom = parseTime(values.Get("uploaded_from"))
	f.UploadedTo = parseTime(values.Get("uploaded_to"))

	return f
}

// parseTime accepts RFC 3339 timestamps or plain dates. Anything else is
// ignored.
func parseTime(s string) *time.Time {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func scanBatch(s repository.Scanner) (Batch, error) {
	var b Batch
	err := s.Scan(
		&b.ID,
		&b.Filename,
		&b.ContentType,
		&b.SizeBytes,
		&b.StorageKey,
		&b.Delimiter,
		&b.NarrativeColumn,
		&b.TriggerColumn,
		&b.KeyColumn,
		&b.RowCount,
		&b.Status,
		&b.UploadedBy,
		&b.UploadedAt,
		&b.UpdatedAt,
	)
	return b, err
}
