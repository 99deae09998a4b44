package port

import (
	"context"

	"github.com/ybakri/medstock/internal/core/domain"
)

// AtomicStore carries the two-table units the inventory service commits as
// one: the supply mutation and its ledger entry succeed together or not at
// all. There is no observable state where only one table reflects a change.
type AtomicStore interface {
	// InsertSupplyLogged inserts the supply row and, when entry is
	// non-nil, its opening ledger entry, in one transaction. The entry's
	// SupplyID is filled in from the generated id. Returns the new id.
	InsertSupplyLogged(ctx context.Context, draft domain.SupplyDraft, entry *domain.EntryDraft) (int64, error)

	// CompareAndSwapQuantityLogged sets the supply's quantity to
	// entry.QuantityAfter only if it still equals entry.QuantityBefore,
	// appending the entry in the same transaction. Returns
	// domain.ErrConflict when the guard fails (or the row is gone).
	CompareAndSwapQuantityLogged(ctx context.Context, entry domain.EntryDraft) error

	// DeleteSupplyLogged deletes the supply row, guarded on its quantity
	// still being the given value, and appends the closing entry (nil when
	// the quantity was already zero) in the same transaction. Returns
	// domain.ErrConflict when the guard fails.
	DeleteSupplyLogged(ctx context.Context, id int64, quantity int, entry *domain.EntryDraft) error
}
