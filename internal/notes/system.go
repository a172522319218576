package notes

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/pkg/pagination"
)

// System defines the public contract for note operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Note], error)

	Find(ctx context.Context, id uuid.UUID) (*Note, error)
	FindByKey(ctx context.Context, batchID uuid.UUID, key string) (*Note, error)

	// Classify re-runs the engine on a stored note with the active registry.
	Classify(ctx context.Context, id uuid.UUID) (*Note, error)
}
