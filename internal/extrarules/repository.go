package extrarules

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/pkg/canon"
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

	// rebuildMu serializes rebuilds so the registry installed last is
	// always built from the latest committed rows.
	rebuildMu sync.Mutex
}

// New creates an extra rule repository implementing the System interface.
// Rebuilds are installed into active.
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
		logger:     logger.With("system", "extrarules"),
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
) (*pagination.PageResult[ExtraRule], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Cause", "Reason", "Template")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count extra rules: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanExtraRule)
	if err != nil {
		return nil, fmt.Errorf("query extra rules: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*ExtraRule, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanExtraRule)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*ExtraRule, error) {
	rule := cmd.Rule()
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO extra_rules(cause, reason, template, cause_key, reason_key, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + returning

	key := rule.Key()
	args := []any{rule.Cause, rule.Reason, rule.Template, key.Cause, key.Reason, cmd.CreatedBy}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ExtraRule, error) {
		return repository.QueryOne(ctx, tx, q, args, scanExtraRule)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("extra rule created", "id", e.ID, "cause", e.Cause, "reason", e.Reason)
	r.rebuildAfter(ctx)
	return &e, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*ExtraRule, error) {
	rule := cmd.Rule()
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	q := `
		UPDATE extra_rules
		SET cause = $1, reason = $2, template = $3, cause_key = $4, reason_key = $5
		WHERE id = $6
		RETURNING ` + returning

	key := rule.Key()
	args := []any{rule.Cause, rule.Reason, rule.Template, key.Cause, key.Reason, id}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ExtraRule, error) {
		return repository.QueryOne(ctx, tx, q, args, scanExtraRule)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("extra rule updated", "id", e.ID, "cause", e.Cause, "reason", e.Reason)
	r.rebuildAfter(ctx)
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM extra_rules WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("extra rule deleted", "id", id)
	r.rebuildAfter(ctx)
	return nil
}

func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*ExtraRule, error) {
	return r.setActive(ctx, id, true)
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*ExtraRule, error) {
	return r.setActive(ctx, id, false)
}

func (r *repo) setActive(ctx context.Context, id uuid.UUID, active bool) (*ExtraRule, error) {
	q := `
		UPDATE extra_rules SET active = $1
		WHERE id = $2
		RETURNING ` + returning

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ExtraRule, error) {
		return repository.QueryOne(ctx, tx, q, []any{active, id}, scanExtraRule)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("extra rule toggled", "id", e.ID, "active", e.Active)
	r.rebuildAfter(ctx)
	return &e, nil
}

// Import stores every valid rule of a quick-add block, replacing the
// template of rules that already exist for the same canonical key and
// reactivating them. Rejected lines are returned, not treated as failure.
func (r *repo) Import(ctx context.Context, cmd ImportCommand) (*ImportResult, error) {
	if canon.Space(cmd.Block) == "" {
		return nil, ErrEmptyImport
	}

	parsed, lineErrs := rules.ParseQuick(cmd.Block)
	if lineErrs == nil {
		lineErrs = []rules.LineError{}
	}

	result := &ImportResult{
		Rules:  []ExtraRule{},
		Errors: lineErrs,
	}
	if len(parsed) == 0 {
		return result, nil
	}

	q := `
		INSERT INTO extra_rules(cause, reason, template, cause_key, reason_key, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cause_key, reason_key) DO UPDATE
		SET cause = EXCLUDED.cause,
			reason = EXCLUDED.reason,
			template = EXCLUDED.template,
			active = true
		RETURNING ` + returning

	stored, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]ExtraRule, error) {
		out := make([]ExtraRule, 0, len(parsed))
		for _, rule := range parsed {
			key := rule.Key()
			args := []any{rule.Cause, rule.Reason, rule.Template, key.Cause, key.Reason, cmd.CreatedBy}
			e, err := repository.QueryOne(ctx, tx, q, args, scanExtraRule)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	result.Rules = stored
	r.logger.Info("extra rules imported", "stored", len(stored), "rejected", len(lineErrs))
	r.rebuildAfter(ctx)
	return result, nil
}

func (r *repo) Rebuild(ctx context.Context) (*rules.Registry, error) {
	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	q, args := query.
		NewBuilder(projection, registryOrder...).
		WhereEquals("Active", true).
		Build()

	extras, err := repository.QueryMany(ctx, r.db, q, args, scanExtraRule)
	if err != nil {
		return nil, fmt.Errorf("query active extra rules: %w", err)
	}

	extra := make([]rules.Rule, len(extras))
	for i, e := range extras {
		extra[i] = e.Rule()
	}

	reg, err := rules.BuildCatalog(extra)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	r.active.Swap(reg)
	r.logger.Info("rule registry rebuilt", "rules", reg.Len(), "extra", len(extra))
	return reg, nil
}

func (r *repo) Catalog() []CatalogEntry {
	reg := r.active.Load()
	out := make([]CatalogEntry, 0, reg.Len())
	for e := range reg.All() {
		out = append(out, CatalogEntry{
			Cause:        e.Cause,
			Reason:       e.Reason,
			Template:     e.Template,
			Placeholders: e.Matcher.Placeholders(),
			Pattern:      rules.Pattern(e.Template),
			Fallback:     e.Matcher.Fallback(),
		})
	}
	return out
}

func (r *repo) Test(cmd TestCommand) TestResult {
	reg := r.active.Load()
	res := r.settings.For(reg).Classify(classify.Row{
		Narrative: cmd.Narrative,
		Trigger:   cmd.Trigger,
	})

	out := TestResult{Result: res, Captures: []string{}}
	if rule, ok := reg.Lookup(res.Cause, res.Reason); ok {
		if caps := rule.Matcher.Captures(canon.Space(res.Mask)); caps != nil {
			out.Captures = caps
		}
	}
	return out
}

// rebuildAfter refreshes the registry once a mutation has committed. The
// mutation stands even when the rebuild fails; the registry catches up on
// the next successful rebuild.
func (r *repo) rebuildAfter(ctx context.Context) {
	if _, err := r.Rebuild(ctx); err != nil {
		r.logger.Error("registry rebuild failed, active rules are stale", "error", err)
	}
}
