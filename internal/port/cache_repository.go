package port

import "context"

type CacheRepository interface {
	// SetIdempotency sets a key for duplicate-request detection, returns
	// false if the key was already present.
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
