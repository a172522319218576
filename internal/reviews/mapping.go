package reviews

import (
	"github.com/JaimeStill/noshow/pkg/query"
	"github.com/JaimeStill/noshow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "reviews", "r").
	Project("id", "ID").
	Project("note_id", "NoteID").
	ProjectFrom("n", "batch_id", "BatchID").
	ProjectFrom("n", "row_key", "RowKey").
	Project("reviewer", "Reviewer").
	Project("pass", "Pass").
	Project("reason_ok", "ReasonOK").
	Project("mask_ok", "MaskOK").
	Project("mask", "Mask").
	Project("category", "Category").
	Project("decision", "Decision").
	Project("notes", "Notes").
	Project("batch_label", "BatchLabel").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "notes", "n", "n.id = r.note_id")

var passOrder = query.SortField{
	Field: "Pass",
}

func scanReview(s repository.Scanner) (Review, error) {
	var r Review
	err := s.Scan(
		&r.ID,
		&r.NoteID,
		&r.BatchID,
		&r.RowKey,
		&r.Reviewer,
		&r.Pass,
		&r.ReasonOK,
		&r.MaskOK,
		&r.Mask,
		&r.Category,
		&r.Decision,
		&r.Notes,
		&r.BatchLabel,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
