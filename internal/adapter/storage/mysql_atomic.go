package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ybakri/medstock/internal/core/domain"
)

// The three methods below are the only store operations that touch both
// the supplies and transactions tables. Each runs in one transaction:
// the deferred Rollback is a no-op after a successful Commit.

func (m *MySQLStore) InsertSupplyLogged(ctx context.Context, draft domain.SupplyDraft, entry *domain.EntryDraft) (int64, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := insertSupply(ctx, tx, draft)
	if err != nil {
		return 0, err
	}

	if entry != nil {
		e := *entry
		e.SupplyID = id
		if _, err := insertEntry(ctx, tx, e, time.Now().UTC()); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (m *MySQLStore) CompareAndSwapQuantityLogged(ctx context.Context, entry domain.EntryDraft) error {
	if entry.QuantityAfter < 0 {
		return fmt.Errorf("%w: quantity %d is negative", domain.ErrInvalidState, entry.QuantityAfter)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE supplies
		SET quantity = ?, updated_at = NOW()
		WHERE id = ? AND quantity = ?`,
		entry.QuantityAfter, entry.SupplyID, entry.QuantityBefore,
	)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrConflict
	}

	if _, err := insertEntry(ctx, tx, entry, time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (m *MySQLStore) DeleteSupplyLogged(ctx context.Context, id int64, quantity int, entry *domain.EntryDraft) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if entry != nil {
		if _, err := insertEntry(ctx, tx, *entry, time.Now().UTC()); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM supplies WHERE id = ? AND quantity = ?`, id, quantity)
	if err != nil {
		return fmt.Errorf("delete supply: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		// Gone, or the quantity moved since the caller's read. Either way
		// the caller re-reads and decides.
		return domain.ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
