package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Authenticate is a single equality lookup against the users table.
func (m *MySQLStore) Authenticate(ctx context.Context, username, password string) (bool, error) {
	var one int
	err := m.db.QueryRowContext(ctx, `
		SELECT 1 FROM users WHERE username = ? AND password = ?`, username, password,
	).Scan(&one)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("authenticate: %w", err)
	}
	return true, nil
}
