package batches

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/pkg/pagination"
)

// System defines the public contract for batch domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Batch], error)

	Find(ctx context.Context, id uuid.UUID) (*Batch, error)

	// Create stores the file, classifies every row, and persists the notes.
	Create(ctx context.Context, cmd CreateCommand) (*Batch, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Reclassify re-runs every stored row against the active registry.
	Reclassify(ctx context.Context, id uuid.UUID) (*Batch, error)

	// Export writes the original rows with the label column appended.
	Export(ctx context.Context, id uuid.UUID, w io.Writer) error

	// Source streams the original uploaded file. The caller closes the reader.
	Source(ctx context.Context, id uuid.UUID) (*Batch, io.ReadCloser, error)
}
