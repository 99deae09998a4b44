package port

import (
	"context"

	"github.com/ybakri/medstock/internal/core/domain"
)

// SupplyRepository owns the canonical mutable supply records. Every
// operation is a single-row, single-statement store access.
type SupplyRepository interface {
	// Create inserts a new supply row and returns its id.
	Create(ctx context.Context, draft domain.SupplyDraft) (int64, error)

	// Get returns the supply or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.Supply, error)

	// UpdateFields applies the non-nil fields of the update.
	UpdateFields(ctx context.Context, id int64, update domain.SupplyUpdate) error

	// Delete removes the supply row.
	Delete(ctx context.Context, id int64) error

	// List returns supplies matching the filter, ordered by name.
	List(ctx context.Context, filter domain.SupplyFilter) ([]domain.Supply, error)

	// SetQuantity overwrites the quantity. Reserved for the inventory
	// service; rejects negative values with domain.ErrInvalidState.
	SetQuantity(ctx context.Context, id int64, quantity int) error
}
