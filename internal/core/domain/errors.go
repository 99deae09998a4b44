package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound means the referenced supply (or report) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation would violate an invariant,
	// such as committing a negative quantity.
	ErrInvalidState = errors.New("invalid state")

	// ErrStoreUnavailable means the backing store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConflict means a compare-and-swap write lost to a concurrent
	// writer. The inventory service retries it internally.
	ErrConflict = errors.New("concurrent modification")

	// ErrConsistency means an atomic unit could not be committed as a
	// whole, even after retries. Nothing was applied.
	ErrConsistency = errors.New("atomic unit not committed")
)

// ValidationError reports bad caller input. It is always returned before
// any storage is touched.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}
