// Package reviews implements the human review domain. Up to two reviewers
// check each classified note; the verdict and approval status are derived
// from their passes on every read and never stored.
package reviews

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/notes"
	"github.com/JaimeStill/noshow/internal/reconcile"
)

// Review passes.
const (
	FirstPass  = 1
	SecondPass = 2
)

// Review is one reviewer's check of a note.
type Review struct {
	ID         uuid.UUID          `json:"id"`
	NoteID     uuid.UUID          `json:"note_id"`
	BatchID    uuid.UUID          `json:"batch_id"`
	RowKey     string             `json:"row_key"`
	Reviewer   string             `json:"reviewer"`
	Pass       int                `json:"pass"`
	ReasonOK   bool               `json:"reason_ok"`
	MaskOK     bool               `json:"mask_ok"`
	Mask       string             `json:"mask"`
	Category   classify.Category  `json:"category"`
	Decision   reconcile.Decision `json:"decision"`
	Notes      string             `json:"notes"`
	BatchLabel string             `json:"batch_label"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Entry returns the review in the form the reconciliation engine reads.
func (r Review) Entry() reconcile.Pass {
	return reconcile.Pass{
		ReasonOK: r.ReasonOK,
		MaskOK:   r.MaskOK,
		Mask:     r.Mask,
		Category: r.Category,
		Decision: r.Decision,
	}
}

// SubmitCommand carries one reviewer's pass over a note. Decision is only
// kept on the second pass.
type SubmitCommand struct {
	Reviewer   string             `json:"reviewer"`
	Pass       int                `json:"pass"`
	ReasonOK   bool               `json:"reason_ok"`
	MaskOK     bool               `json:"mask_ok"`
	Mask       string             `json:"mask"`
	Category   classify.Category  `json:"category"`
	Decision   reconcile.Decision `json:"decision"`
	Notes      string             `json:"notes"`
	BatchLabel string             `json:"batch_label"`
}

// Normalize trims free text and drops a first-pass decision.
func (c *SubmitCommand) Normalize() {
	c.Reviewer = strings.TrimSpace(c.Reviewer)
	c.Mask = strings.TrimSpace(c.Mask)
	c.Notes = strings.TrimSpace(c.Notes)
	c.BatchLabel = strings.TrimSpace(c.BatchLabel)
	if c.Pass == FirstPass {
		c.Decision = reconcile.DecisionNone
	}
}

// Validate reports whether the command names a reviewer and a known pass.
func (c SubmitCommand) Validate() error {
	if c.Reviewer == "" {
		return fmt.Errorf("%w: reviewer is required", ErrInvalidReview)
	}
	if c.Pass != FirstPass && c.Pass != SecondPass {
		return fmt.Errorf("%w: pass must be 1 or 2", ErrInvalidReview)
	}
	return nil
}

// Evaluation is a note with its review passes and the derived outcome.
type Evaluation struct {
	Note    notes.Note        `json:"note"`
	First   *Review           `json:"first"`
	Second  *Review           `json:"second"`
	Verdict reconcile.Verdict `json:"verdict"`
	Status  reconcile.Status  `json:"status"`
}

// Summary counts the derived outcomes of every note in a batch.
type Summary struct {
	BatchID    uuid.UUID                 `json:"batch_id"`
	Notes      int                       `json:"notes"`
	Reviewed   int                       `json:"reviewed"`
	ByLabel    map[classify.Label]int    `json:"by_label"`
	ByCategory map[classify.Category]int `json:"by_category"`
	ByStatus   map[reconcile.Status]int  `json:"by_status"`
	ByVerdict  map[reconcile.Verdict]int `json:"by_verdict"`
}

func newSummary(batchID uuid.UUID) *Summary {
	return &Summary{
		BatchID:    batchID,
		ByLabel:    map[classify.Label]int{},
		ByCategory: map[classify.Category]int{},
		ByStatus:   map[reconcile.Status]int{},
		ByVerdict:  map[reconcile.Verdict]int{},
	}
}
