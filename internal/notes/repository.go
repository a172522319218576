package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/pkg/pagination"
	"github.com/JaimeStill/noshow/pkg/query"
	"github.com/JaimeStill/noshow/pkg/repository"
)

type repo struct {
	db         *sql.DB
	active     *rules.Active
	settings   classify.Settings
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a note repository implementing the System interface.
// Classification uses whichever registry active holds at call time.
func New(
	db *sql.DB,
	active *rules.Active,
	settings classify.Settings,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		active:     active,
		settings:   settings,
		logger:     logger.With("system", "notes"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Note], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "RowKey", "Narrative", "Reason")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanNote)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Note, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	n, err := repository.QueryOne(ctx, r.db, q, args, scanNote)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &n, nil
}

func (r *repo) FindByKey(ctx context.Context, batchID uuid.UUID, key string) (*Note, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("BatchID", batchID).
		WhereEquals("RowKey", key).
		BuildPage(1, 1)

	n, err := repository.QueryOne(ctx, r.db, q, args, scanNote)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &n, nil
}

func (r *repo) Classify(ctx context.Context, id uuid.UUID) (*Note, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	res := r.settings.For(r.active.Load()).Classify(current.Row())

	q := `
		UPDATE notes
		SET cause = $1, reason = $2, mask = $3, template = $4,
			label = $5, detail = $6, category = $7, classified_at = NOW()
		WHERE id = $8
		RETURNING ` + returning

	args := append(resultArgs(res), id)

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Note, error) {
		return repository.QueryOne(ctx, tx, q, args, scanNote)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("note classified",
		"id", n.ID,
		"batch_id", n.BatchID,
		"label", n.Label,
		"category", n.Category,
	)
	return &n, nil
}

const upsertQuery = `
	INSERT INTO notes(
		batch_id, row_index, row_key, narrative, trigger_field, fields,
		cause, reason, mask, template, label, detail, category
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (batch_id, row_index) DO UPDATE SET
		row_key = EXCLUDED.row_key,
		narrative = EXCLUDED.narrative,
		trigger_field = EXCLUDED.trigger_field,
		fields = EXCLUDED.fields,
		cause = EXCLUDED.cause,
		reason = EXCLUDED.reason,
		mask = EXCLUDED.mask,
		template = EXCLUDED.template,
		label = EXCLUDED.label,
		detail = EXCLUDED.detail,
		category = EXCLUDED.category,
		classified_at = NOW()`

// Write stores rows and their classifications for a batch inside tx.
// Row i is written with row_index i; rewriting a batch replaces its notes.
func Write(
	ctx context.Context,
	tx *sql.Tx,
	batchID uuid.UUID,
	rows []classify.Row,
	results []classify.Result,
) error {
	if len(rows) != len(results) {
		return fmt.Errorf("write notes: %d rows but %d results", len(rows), len(results))
	}

	err := repository.ExecEach(ctx, tx, upsertQuery, len(rows), func(i int) ([]any, error) {
		row := rows[i]
		fields := row.Fields
		if fields == nil {
			fields = map[string]string{}
		}
		fieldsJSON, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("marshal fields of row %d: %w", i, err)
		}
		return append(
			[]any{batchID, i, row.Key, row.Narrative, row.Trigger, fieldsJSON},
			resultArgs(results[i])...,
		), nil
	})
	if err != nil {
		return fmt.Errorf("write notes: %w", err)
	}
	return nil
}

// Rows loads the stored rows of a batch in upload order.
func Rows(ctx context.Context, q repository.Querier, batchID uuid.UUID) ([]Note, error) {
	qs, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("BatchID", batchID).
		Build()

	items, err := repository.QueryMany(ctx, q, qs, args, scanNote)
	if err != nil {
		return nil, fmt.Errorf("query batch notes: %w", err)
	}
	return items, nil
}

func resultArgs(res classify.Result) []any {
	return []any{
		res.Cause,
		res.Reason,
		res.Mask,
		res.Template,
		string(res.Label),
		res.Detail,
		string(res.Category),
	}
}
