package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ybakri/medstock/internal/core/domain"
)

// MySQLStore implements every storage port over one *sql.DB. The supply
// and ledger methods are single-statement; only the atomic units in
// mysql_atomic.go span both tables.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx, so the insert helpers
// can run inside or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const supplyColumns = "id, name, category, quantity, expiry_date, location, supplier, reorder_threshold, created_at, updated_at"

func scanSupply(row rowScanner) (*domain.Supply, error) {
	var (
		s        domain.Supply
		expiry   sql.NullTime
		supplier sql.NullString
	)
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Quantity, &expiry, &s.Location, &supplier, &s.ReorderThreshold, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		t := expiry.Time
		s.ExpiryDate = &t
	}
	s.Supplier = supplier.String
	return &s, nil
}

func expiryArg(expiry *time.Time) any {
	if expiry == nil {
		return nil
	}
	return expiry.Format("2006-01-02")
}

func supplierArg(supplier string) any {
	if strings.TrimSpace(supplier) == "" {
		return nil
	}
	return supplier
}
