package port

import "context"

// AuthGate is the single credential check consumed by the login endpoint.
// No sessions, no tokens.
type AuthGate interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}
