// Package batches implements the uploaded export domain. A batch is one
// delimited text export: the original file is kept in blob storage and
// every row is classified and stored as a note.
package batches

import (
	"time"

	"github.com/google/uuid"
)

// Batch statuses.
const (
	StatusClassified   = "classified"
	StatusReclassified = "reclassified"
)

// ExportColumn is the header of the label column appended on export.
const ExportColumn = "Classificação No-show"

// Batch is a registered upload with the columns used to classify it.
type Batch struct {
	ID              uuid.UUID `json:"id"`
	Filename        string    `json:"filename"`
	ContentType     string    `json:"content_type"`
	SizeBytes       int64     `json:"size_bytes"`
	StorageKey      string    `json:"storage_key"`
	Delimiter       string    `json:"delimiter"`
	NarrativeColumn string    `json:"narrative_column"`
	TriggerColumn   string    `json:"trigger_column"`
	KeyColumn       string    `json:"key_column"`
	RowCount        int       `json:"row_count"`
	Status          string    `json:"status"`
	UploadedBy      *string   `json:"uploaded_by"`
	UploadedAt      time.Time `json:"uploaded_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Columns names the header cells holding the narrative, the special
// trigger value, and the row key. Empty names fall back to defaults.
type Columns struct {
	Narrative string `json:"narrative_column"`
	Trigger   string `json:"trigger_column"`
	Key       string `json:"key_column"`
}

// Or fills the empty names of c from defaults.
func (c Columns) Or(defaults Columns) Columns {
	if c.Narrative == "" {
		c.Narrative = defaults.Narrative
	}
	if c.Trigger == "" {
		c.Trigger = defaults.Trigger
	}
	if c.Key == "" {
		c.Key = defaults.Key
	}
	return c
}

// CreateCommand carries an uploaded export and its column choices.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Columns     Columns
	UploadedBy  *string
}
