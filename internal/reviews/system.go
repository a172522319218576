package reviews

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for review operations.
type System interface {
	Handler() *Handler

	// Submit records a reviewer's pass. Resubmitting replaces it.
	Submit(ctx context.Context, noteID uuid.UUID, cmd SubmitCommand) (*Review, error)
	List(ctx context.Context, noteID uuid.UUID) ([]Review, error)
	Evaluate(ctx context.Context, noteID uuid.UUID) (*Evaluation, error)
	Summary(ctx context.Context, batchID uuid.UUID) (*Summary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
