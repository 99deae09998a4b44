package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ybakri/medstock/internal/core/domain"
)

const insertEntrySQL = `
	INSERT INTO transactions (supply_id, direction, magnitude, quantity_before, quantity_after, reason, actor, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Entries are labelled with the supply name when it still exists; after a
// delete the weak reference resolves to a placeholder instead of an error.
const entryColumns = `
	t.id, t.supply_id, COALESCE(s.name, CONCAT('Supply #', t.supply_id)),
	t.direction, t.magnitude, t.quantity_before, t.quantity_after,
	t.reason, t.actor, t.created_at`

const entryFrom = ` FROM transactions t LEFT JOIN supplies s ON s.id = t.supply_id`

func insertEntry(ctx context.Context, ex execer, draft domain.EntryDraft, ts time.Time) (int64, error) {
	res, err := ex.ExecContext(ctx, insertEntrySQL,
		draft.SupplyID, string(draft.Direction), draft.Magnitude,
		draft.QuantityBefore, draft.QuantityAfter, draft.Reason, draft.Actor, ts,
	)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry id: %w", err)
	}
	return id, nil
}

func (m *MySQLStore) Append(ctx context.Context, draft domain.EntryDraft) (*domain.LedgerEntry, error) {
	ts := time.Now().UTC()
	id, err := insertEntry(ctx, m.db, draft, ts)
	if err != nil {
		return nil, err
	}
	return &domain.LedgerEntry{
		ID:             id,
		SupplyID:       draft.SupplyID,
		Direction:      draft.Direction,
		Magnitude:      draft.Magnitude,
		QuantityBefore: draft.QuantityBefore,
		QuantityAfter:  draft.QuantityAfter,
		Reason:         draft.Reason,
		Actor:          draft.Actor,
		Timestamp:      ts,
	}, nil
}

func (m *MySQLStore) ListBySupply(ctx context.Context, supplyID int64) ([]domain.LedgerEntry, error) {
	return m.queryEntries(ctx, `SELECT`+entryColumns+entryFrom+` WHERE t.supply_id = ? ORDER BY t.id DESC`, supplyID)
}

func (m *MySQLStore) ListRecent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	return m.queryEntries(ctx, `SELECT`+entryColumns+entryFrom+` ORDER BY t.id DESC LIMIT ?`, limit)
}

func (m *MySQLStore) ListSince(ctx context.Context, since time.Duration) ([]domain.LedgerEntry, error) {
	cutoff := time.Now().UTC().Add(-since)
	return m.queryEntries(ctx, `SELECT`+entryColumns+entryFrom+` WHERE t.created_at >= ? ORDER BY t.id DESC`, cutoff)
}

func (m *MySQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return count, nil
}

func (m *MySQLStore) PurgeAll(ctx context.Context) (int64, error) {
	res, err := m.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("purge ledger: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge ledger count: %w", err)
	}
	return rows, nil
}

func (m *MySQLStore) queryEntries(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var (
			e         domain.LedgerEntry
			direction string
		)
		err := rows.Scan(&e.ID, &e.SupplyID, &e.SupplyLabel, &direction, &e.Magnitude,
			&e.QuantityBefore, &e.QuantityAfter, &e.Reason, &e.Actor, &e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Direction = domain.Direction(direction)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	return entries, nil
}
