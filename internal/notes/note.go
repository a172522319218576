// Package notes implements the classified closure-note domain. A note is
// one row of an uploaded batch together with the classification the engine
// produced for it.
package notes

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
)

// Note is a stored row and its classification.
type Note struct {
	ID           uuid.UUID         `json:"id"`
	BatchID      uuid.UUID         `json:"batch_id"`
	RowIndex     int               `json:"row_index"`
	RowKey       string            `json:"row_key"`
	Narrative    string            `json:"narrative"`
	Trigger      string            `json:"trigger"`
	Fields       map[string]string `json:"fields"`
	Cause        string            `json:"cause"`
	Reason       string            `json:"reason"`
	Mask         string            `json:"mask"`
	Template     string            `json:"template"`
	Label        classify.Label    `json:"label"`
	Detail       string            `json:"detail"`
	Category     classify.Category `json:"category"`
	ClassifiedAt time.Time         `json:"classified_at"`
}

// Row returns the engine input the note was classified from.
func (n Note) Row() classify.Row {
	return classify.Row{
		Key:       n.RowKey,
		Narrative: n.Narrative,
		Trigger:   n.Trigger,
		Fields:    n.Fields,
	}
}

// Result returns the stored classification.
func (n Note) Result() classify.Result {
	return classify.Result{
		Cause:    n.Cause,
		Reason:   n.Reason,
		Mask:     n.Mask,
		Template: n.Template,
		Label:    n.Label,
		Detail:   n.Detail,
		Category: n.Category,
	}
}
