package ports

import (
	"context"
	"time"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenRevocationStore is the cache fast path over store-side invalidation.
// Keys are token digests, never raw token values. Entries expire with the
// token itself, so the cache never outlives the row it shadows.
type TokenRevocationStore interface {
	MarkRevoked(ctx context.Context, tokenDigest string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenDigest string) (bool, error)
}
