package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ybakri/medstock/internal/core/domain"
)

const insertSupplySQL = `
	INSERT INTO supplies (name, category, quantity, expiry_date, location, supplier, reorder_threshold)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

func insertSupply(ctx context.Context, ex execer, draft domain.SupplyDraft) (int64, error) {
	res, err := ex.ExecContext(ctx, insertSupplySQL,
		draft.Name, draft.Category, draft.Quantity, expiryArg(draft.ExpiryDate),
		draft.Location, supplierArg(draft.Supplier), draft.ReorderThreshold,
	)
	if err != nil {
		return 0, fmt.Errorf("insert supply: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert supply id: %w", err)
	}
	return id, nil
}

func (m *MySQLStore) Create(ctx context.Context, draft domain.SupplyDraft) (int64, error) {
	return insertSupply(ctx, m.db, draft)
}

func (m *MySQLStore) Get(ctx context.Context, id int64) (*domain.Supply, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+supplyColumns+` FROM supplies WHERE id = ?`, id)

	s, err := scanSupply(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("supply %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query supply: %w", err)
	}
	return s, nil
}

func (m *MySQLStore) UpdateFields(ctx context.Context, id int64, update domain.SupplyUpdate) error {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)

	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *update.Category)
	}
	if update.ExpiryDate != nil {
		sets = append(sets, "expiry_date = ?")
		args = append(args, expiryArg(update.ExpiryDate))
	} else if update.ClearExpiry {
		sets = append(sets, "expiry_date = NULL")
	}
	if update.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *update.Location)
	}
	if update.Supplier != nil {
		sets = append(sets, "supplier = ?")
		args = append(args, supplierArg(*update.Supplier))
	}
	if update.ReorderThreshold != nil {
		sets = append(sets, "reorder_threshold = ?")
		args = append(args, *update.ReorderThreshold)
	}
	if len(sets) == 0 {
		// Nothing to change; still report NotFound for a missing row.
		_, err := m.Get(ctx, id)
		return err
	}

	// updated_at always moves, so rows affected reliably distinguishes a
	// missing row from an identical update.
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	res, err := m.db.ExecContext(ctx, "UPDATE supplies SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update supply: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("supply %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (m *MySQLStore) Delete(ctx context.Context, id int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM supplies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete supply: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("supply %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (m *MySQLStore) List(ctx context.Context, filter domain.SupplyFilter) ([]domain.Supply, error) {
	query := `SELECT ` + supplyColumns + ` FROM supplies`
	where := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		where = append(where, "(name LIKE ? OR category LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	defer rows.Close()

	supplies := make([]domain.Supply, 0)
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		supplies = append(supplies, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	return supplies, nil
}

func (m *MySQLStore) SetQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity < 0 {
		// Last line of defense for the non-negativity invariant.
		return fmt.Errorf("%w: quantity %d is negative", domain.ErrInvalidState, quantity)
	}

	res, err := m.db.ExecContext(ctx, `
		UPDATE supplies SET quantity = ?, updated_at = NOW() WHERE id = ?`, quantity, id)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("supply %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
