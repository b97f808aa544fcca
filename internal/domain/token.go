package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// TokenKind selects one of the three token tables.
type TokenKind string

const (
	TokenKindAccess       TokenKind = "access"
	TokenKindVerification TokenKind = "verification"
	TokenKindRecovery     TokenKind = "recovery"
)

// TokenRecord is one stored opaque-token row. The value carries no decodable
// structure; validity is determined solely by store lookup plus this record's
// state, never by parsing the value.
type TokenRecord struct {
	ID        int64
	AccountID int64
	Value     string
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
}

// Token is a freshly generated value/expiry pair prior to persistence.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

const tokenEntropyBytes = 32

// GenerateToken produces an opaque token from 256 bits of CSPRNG entropy fed
// through SHA-256 and hex-encoded. Uniqueness is never re-checked against the
// store; collision probability is treated as cryptographically negligible.
// Expiry is computed here, at generation time, in UTC.
func GenerateToken(now time.Time, ttl time.Duration) (Token, error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		// No fallback to a weaker source.
		return Token{}, fmt.Errorf("read token entropy: %w", err)
	}
	sum := sha256.Sum256(buf)
	return Token{
		Value:     hex.EncodeToString(sum[:]),
		ExpiresAt: now.UTC().Add(ttl),
	}, nil
}

// TokenValidation is the tri-state classification of a stored token record.
type TokenValidation struct {
	IsValid   bool
	IsExpired bool
}

// ValidateToken classifies a looked-up record against now. It is a pure
// function: no side effects, deterministic for a given (record, now) pair.
//
// Absent record -> invalid. Inactive record -> invalid. Active record whose
// expiry instant has been reached -> expired: the expiry comparison is
// inclusive, expires_at == now already counts as expired, uniformly for all
// three kinds.
func ValidateToken(record *TokenRecord, now time.Time) TokenValidation {
	if record == nil {
		return TokenValidation{}
	}
	if !record.IsActive {
		return TokenValidation{}
	}
	if !record.ExpiresAt.After(now) {
		return TokenValidation{IsExpired: true}
	}
	return TokenValidation{IsValid: true}
}

// Err maps the classification to the domain sentinel a caller should surface.
// Returns nil when the record was accepted.
func (v TokenValidation) Err() error {
	switch {
	case v.IsValid:
		return nil
	case v.IsExpired:
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}
