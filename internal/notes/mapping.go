package notes

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/pkg/query"
	"github.com/JaimeStill/noshow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "notes", "n").
	Project("id", "ID").
	Project("batch_id", "BatchID").
	Project("row_index", "RowIndex").
	Project("row_key", "RowKey").
	Project("narrative", "Narrative").
	Project("trigger_field", "Trigger").
	Project("fields", "Fields").
	Project("cause", "Cause").
	Project("reason", "Reason").
	Project("mask", "Mask").
	Project("template", "Template").
	Project("label", "Label").
	Project("detail", "Detail").
	Project("category", "Category").
	Project("classified_at", "ClassifiedAt")

const returning = `id, batch_id, row_index, row_key, narrative, trigger_field, fields,
		cause, reason, mask, template, label, detail, category, classified_at`

var defaultSort = query.SortField{
	Field: "RowIndex",
}

// Filters contains optional filtering criteria for note queries.
// Reason uses case-insensitive contains matching; the rest match exactly.
type Filters struct {
	BatchID  *uuid.UUID         `json:"batch_id,omitempty"`
	RowKey   *string            `json:"row_key,omitempty"`
	Label    *classify.Label    `json:"label,omitempty"`
	Category *classify.Category `json:"category,omitempty"`
	Reason   *string            `json:"reason,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("BatchID", f.BatchID).
		WhereEquals("RowKey", f.RowKey).
		WhereEquals("Label", f.Label).
		WhereEquals("Category", f.Category).
		WhereContains("Reason", f.Reason)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown labels and categories are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if b := values.Get("batch_id"); b != "" {
		if id, err := uuid.Parse(b); err == nil {
			f.BatchID = &id
		}
	}
	if k := values.Get("row_key"); k != "" {
		f.RowKey = &k
	}
	if l := values.Get("label"); l != "" {
		if label := classify.Label(l); classify.ValidLabel(label) {
			f.Label = &label
		}
	}
	if c := values.Get("category"); c != "" {
		if cat, err := classify.ParseCategory(c); err == nil && cat != "" {
			f.Category = &cat
		}
	}
	if r := values.Get("reason"); r != "" {
		f.Reason = &r
	}

	return f
}

func scanNote(s repository.Scanner) (Note, error) {
	var n Note
	var fieldsRaw []byte

	err := s.Scan(
		&n.ID,
		&n.BatchID,
		&n.RowIndex,
		&n.RowKey,
		&n.Narrative,
		&n.Trigger,
		&fieldsRaw,
		&n.Cause,
		&n.Reason,
		&n.Mask,
		&n.Template,
		&n.Label,
		&n.Detail,
		&n.Category,
		&n.ClassifiedAt,
	)
	if err != nil {
		return n, err
	}

	if len(fieldsRaw) > 0 {
		if err := json.Unmarshal(fieldsRaw, &n.Fields); err != nil {
			return n, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	if n.Fields == nil {
		n.Fields = map[string]string{}
	}

	return n, nil
}
