package port

import (
	"context"
	"time"

	"github.com/ybakri/medstock/internal/core/domain"
)

// TransactionLedger is the append-only audit trail of quantity changes.
// Entries are never updated or deleted individually; only PurgeAll removes
// them, as a destructive administrative action.
type TransactionLedger interface {
	// Append assigns id and timestamp and returns the stored entry.
	// Validation happens upstream; Append only fails on store errors.
	Append(ctx context.Context, draft domain.EntryDraft) (*domain.LedgerEntry, error)

	// ListBySupply returns all entries for a supply, newest first.
	// Works for deleted supplies too: the reference is weak.
	ListBySupply(ctx context.Context, supplyID int64) ([]domain.LedgerEntry, error)

	// ListRecent returns the newest entries across all supplies.
	ListRecent(ctx context.Context, limit int) ([]domain.LedgerEntry, error)

	// ListSince returns entries written within the given duration, newest
	// first.
	ListSince(ctx context.Context, since time.Duration) ([]domain.LedgerEntry, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int, error)

	// PurgeAll clears the whole ledger and returns the number of entries
	// removed. Admin-only; bypasses the inventory service.
	PurgeAll(ctx context.Context) (int64, error)
}
