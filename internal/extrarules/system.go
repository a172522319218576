package extrarules

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/pkg/pagination"
)

// System defines the public contract for extra rule operations. Every
// mutation rebuilds the active registry before returning.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[ExtraRule], error)

	Find(ctx context.Context, id uuid.UUID) (*ExtraRule, error)
	Create(ctx context.Context, cmd CreateCommand) (*ExtraRule, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*ExtraRule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*ExtraRule, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*ExtraRule, error)
	Import(ctx context.Context, cmd ImportCommand) (*ImportResult, error)

	// Rebuild merges the active extra rules into the base catalog and swaps
	// the result into the shared registry. Concurrent rebuilds run one at a
	// time. Mutations rebuild after they commit and report success even when
	// that rebuild fails.
	Rebuild(ctx context.Context) (*rules.Registry, error)

	Catalog() []CatalogEntry
	Test(cmd TestCommand) TestResult
}
