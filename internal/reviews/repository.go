package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/notes"
	"github.com/JaimeStill/noshow/internal/reconcile"
	"github.com/JaimeStill/noshow/pkg/query"
	"github.com/JaimeStill/noshow/pkg/repository"
)

type repo struct {
	db                *sql.DB
	notes             notes.System
	requireSecondPass bool
	logger            *slog.Logger
}

// New creates a review repository implementing the System interface.
// requireSecondPass selects the two-reviewer approval flow.
func New(
	db *sql.DB,
	notes notes.System,
	requireSecondPass bool,
	logger *slog.Logger,
) System {
	return &repo{
		db:                db,
		notes:             notes,
		requireSecondPass: requireSecondPass,
		logger:            logger.With("system", "reviews"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

// heldPassQuery locks the reviewer's existing row for the note. A reviewer
// keeps the pass they first submitted; the two passes need two reviewers.
const heldPassQuery = `
	SELECT pass FROM reviews
	WHERE note_id = $1 AND reviewer = $2
	FOR UPDATE`

func (r *repo) Submit(ctx context.Context, noteID uuid.UUID, cmd SubmitCommand) (*Review, error) {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	upsertQ := `
		INSERT INTO reviews(
			note_id, reviewer, pass, reason_ok, mask_ok, mask,
			category, decision, notes, batch_label
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (note_id, reviewer) DO UPDATE SET
			pass = EXCLUDED.pass,
			reason_ok = EXCLUDED.reason_ok,
			mask_ok = EXCLUDED.mask_ok,
			mask = EXCLUDED.mask,
			category = EXCLUDED.category,
			decision = EXCLUDED.decision,
			notes = EXCLUDED.notes,
			batch_label = EXCLUDED.batch_label,
			updated_at = NOW()
		RETURNING id`

	upsertArgs := []any{
		noteID,
		cmd.Reviewer,
		cmd.Pass,
		cmd.ReasonOK,
		cmd.MaskOK,
		cmd.Mask,
		string(cmd.Category),
		string(cmd.Decision),
		cmd.Notes,
		cmd.BatchLabel,
	}

	rv, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Review, error) {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM notes WHERE id = $1)", noteID,
		).Scan(&exists); err != nil {
			return Review{}, fmt.Errorf("check note: %w", err)
		}
		if !exists {
			return Review{}, ErrNoteNotFound
		}

		var held int
		err := tx.QueryRowContext(ctx, heldPassQuery, noteID, cmd.Reviewer).Scan(&held)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return Review{}, fmt.Errorf("check reviewer pass: %w", err)
		case held != cmd.Pass:
			return Review{}, fmt.Errorf(
				"%w: %s already submitted pass %d on this note", ErrInvalidReview, cmd.Reviewer, held,
			)
		}

		var id uuid.UUID
		if err := tx.QueryRowContext(ctx, upsertQ, upsertArgs...).Scan(&id); err != nil {
			return Review{}, err
		}

		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		return repository.QueryOne(ctx, tx, q, args, scanReview)
	})
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) || errors.Is(err, ErrInvalidReview) {
			return nil, err
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("review submitted",
		"id", rv.ID,
		"note_id", rv.NoteID,
		"reviewer", rv.Reviewer,
		"pass", rv.Pass,
	)
	return &rv, nil
}

func (r *repo) List(ctx context.Context, noteID uuid.UUID) ([]Review, error) {
	q, args := query.
		NewBuilder(projection, passOrder).
		WhereEquals("NoteID", noteID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanReview)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	return items, nil
}

func (r *repo) Evaluate(ctx context.Context, noteID uuid.UUID) (*Evaluation, error) {
	note, err := r.notes.Find(ctx, noteID)
	if err != nil {
		if errors.Is(err, notes.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	items, err := r.List(ctx, noteID)
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{Note: *note}
	for i := range items {
		switch items[i].Pass {
		case FirstPass:
			ev.First = &items[i]
		case SecondPass:
			ev.Second = &items[i]
		}
	}

	in := reconcile.Input{Proposed: note.Category}
	if ev.First != nil {
		p := ev.First.Entry()
		in.First = &p
	}
	if ev.Second != nil {
		p := ev.Second.Entry()
		in.Second = &p
	}

	res := reconcile.Evaluate(in, r.requireSecondPass)
	ev.Verdict = res.Verdict
	ev.Status = res.Status
	return ev, nil
}

const summaryQuery = `
	SELECT n.id, n.label, n.category,
		r.pass, r.reason_ok, r.mask_ok, r.mask, r.category, r.decision
	FROM public.notes n
	LEFT JOIN public.reviews r ON r.note_id = n.id
	WHERE n.batch_id = $1
	ORDER BY n.row_index ASC, r.pass ASC`

type summaryRow struct {
	noteID   uuid.UUID
	label    classify.Label
	proposed classify.Category
	pass     sql.NullInt64
	reasonOK sql.NullBool
	maskOK   sql.NullBool
	mask     sql.NullString
	category sql.NullString
	decision sql.NullString
}

func scanSummaryRow(s repository.Scanner) (summaryRow, error) {
	var row summaryRow
	err := s.Scan(
		&row.noteID,
		&row.label,
		&row.proposed,
		&row.pass,
		&row.reasonOK,
		&row.maskOK,
		&row.mask,
		&row.category,
		&row.decision,
	)
	return row, err
}

func (row summaryRow) entry() reconcile.Pass {
	return reconcile.Pass{
		ReasonOK: row.reasonOK.Bool,
		MaskOK:   row.maskOK.Bool,
		Mask:     row.mask.String,
		Category: classify.Category(row.category.String),
		Decision: reconcile.Decision(row.decision.String),
	}
}

func (r *repo) Summary(ctx context.Context, batchID uuid.UUID) (*Summary, error) {
	rows, err := repository.QueryMany(ctx, r.db, summaryQuery, []any{batchID}, scanSummaryRow)
	if err != nil {
		return nil, fmt.Errorf("query batch reviews: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrBatchNotFound
	}

	sum := newSummary(batchID)

	var in reconcile.Input
	var current summaryRow
	flush := func() {
		res := reconcile.Evaluate(in, r.requireSecondPass)
		sum.Notes++
		if in.First != nil {
			sum.Reviewed++
		}
		sum.ByLabel[current.label]++
		sum.ByCategory[current.proposed]++
		sum.ByStatus[res.Status]++
		sum.ByVerdict[res.Verdict]++
	}

	for i, row := range rows {
		if i > 0 && row.noteID != current.noteID {
			flush()
		}
		if i == 0 || row.noteID != current.noteID {
			current = row
			in = reconcile.Input{Proposed: row.proposed}
		}

		if !row.pass.Valid {
			continue
		}
		p := row.entry()
		switch row.pass.Int64 {
		case FirstPass:
			in.First = &p
		case SecondPass:
			in.Second = &p
		}
	}
	flush()

	return sum, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM reviews WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("review deleted", "id", id)
	return nil
}
