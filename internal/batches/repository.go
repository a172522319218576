package batches

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/notes"
	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/pkg/pagination"
	"github.com/JaimeStill/noshow/pkg/query"
	"github.com/JaimeStill/noshow/pkg/repository"
	"github.com/JaimeStill/noshow/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	active     *rules.Active
	settings   classify.Settings
	columns    Columns
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a batch repository implementing the System interface.
// columns supplies the names used when an upload leaves them empty.
func New(
	db *sql.DB,
	store storage.System,
	active *rules.Active,
	settings classify.Settings,
	columns Columns,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		active:     active,
		settings:   settings,
		columns:    columns,
		logger:     logger.With("system", "batches"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Batch], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "NarrativeColumn")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count batches: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanBatch)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Batch, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	b, err := repository.QueryOne(ctx, r.db, q, args, scanBatch)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &b, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Batch, error) {
	table, err := ParseTable(cmd.Data)
	if err != nil {
		return nil, err
	}

	requested := cmd.Columns.Or(r.columns)
	cols, l, err := table.resolve(requested)
	if err != nil {
		return nil, err
	}
	if requested.Trigger != "" && cols.Trigger == "" {
		r.logger.Warn("trigger column not found, ignoring", "column", requested.Trigger)
	}
	if requested.Key != "" && cols.Key == "" {
		r.logger.Warn("key column not found, numbering rows", "column", requested.Key)
	}

	rows := table.rows(l)
	results, err := r.settings.For(r.active.Load()).ClassifyAll(ctx, rows, r.settings.Workers)
	if err != nil {
		return nil, fmt.Errorf("classify rows: %w", err)
	}

	id := uuid.New()
	filename := sanitizeFilename(cmd.Filename)
	key := storage.Key("batches", id.String(), filename)

	obj := storage.Object{
		ContentType: cmd.ContentType,
		Filename:    filename,
		Metadata:    map[string]string{"batch": id.String()},
	}
	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), obj); err != nil {
		return nil, fmt.Errorf("upload batch blob: %w", err)
	}

	q := `
		INSERT INTO batches(
			id, filename, content_type, size_bytes, storage_key, delimiter,
			narrative_column, trigger_column, key_column, row_count, status, uploaded_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + returning

	insertArgs := []any{
		id,
		filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		key,
		string(table.Delimiter),
		cols.Narrative,
		cols.Trigger,
		cols.Key,
		len(rows),
		StatusClassified,
		cmd.UploadedBy,
	}

	b, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Batch, error) {
		b, err := repository.QueryOne(ctx, tx, q, insertArgs, scanBatch)
		if err != nil {
			return Batch{}, err
		}
		if err := notes.Write(ctx, tx, id, rows, results); err != nil {
			return Batch{}, err
		}
		return b, nil
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("batch created",
		"id", b.ID,
		"filename", b.Filename,
		"rows", b.RowCount,
		"narrative_column", b.NarrativeColumn,
	)
	return &b, nil
}

func (r *repo) Reclassify(ctx context.Context, id uuid.UUID) (*Batch, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	stored, err := notes.Rows(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	rows := make([]classify.Row, len(stored))
	for i, n := range stored {
		rows[i] = n.Row()
	}

	results, err := r.settings.For(r.active.Load()).ClassifyAll(ctx, rows, r.settings.Workers)
	if err != nil {
		return nil, fmt.Errorf("classify rows: %w", err)
	}

	q := `
		UPDATE batches SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + returning

	b, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Batch, error) {
		if err := notes.Write(ctx, tx, id, rows, results); err != nil {
			return Batch{}, err
		}
		return repository.QueryOne(ctx, tx, q, []any{StatusReclassified, id}, scanBatch)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("batch reclassified", "id", b.ID, "rows", len(rows))
	return &b, nil
}

func (r *repo) Export(ctx context.Context, id uuid.UUID, w io.Writer) error {
	b, rc, err := r.Source(ctx, id)
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read batch blob: %w", err)
	}

	delim, _ := utf8.DecodeRuneInString(b.Delimiter)
	if delim == utf8.RuneError {
		delim = ','
	}

	table, err := parseTableWith(data, delim)
	if err != nil {
		return err
	}

	stored, err := notes.Rows(ctx, r.db, id)
	if err != nil {
		return err
	}

	labels := make([]string, len(table.Records))
	for _, n := range stored {
		if n.RowIndex >= 0 && n.RowIndex < len(labels) {
			labels[n.RowIndex] = n.Label.Display()
		}
	}

	return table.WriteLabeled(w, labels)
}

func (r *repo) Source(ctx context.Context, id uuid.UUID) (*Batch, io.ReadCloser, error) {
	b, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := r.storage.Download(ctx, b.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download batch blob: %w", err)
	}
	return b, rc, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	b, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM batches WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, b.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", b.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("batch deleted", "id", id)
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == string(filepath.Separator) {
		name = "export.csv"
	}
	return name
}
