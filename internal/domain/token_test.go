package domain

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateTokenShape(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token, err := GenerateToken(now, time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if len(token.Value) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(token.Value))
	}
	for _, c := range token.Value {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Fatalf("unexpected character %q in token value", c)
		}
	}
	if !token.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", token.ExpiresAt)
	}
}

func TestGenerateTokenUniqueness(t *testing.T) {
	t.Parallel()

	const draws = 10000
	now := time.Now().UTC()
	seen := make(map[string]struct{}, draws)
	for i := 0; i < draws; i++ {
		token, err := GenerateToken(now, time.Hour)
		if err != nil {
			t.Fatalf("generate token failed: %v", err)
		}
		if _, dup := seen[token.Value]; dup {
			t.Fatalf("duplicate token value after %d draws", i)
		}
		seen[token.Value] = struct{}{}
	}
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		record      *TokenRecord
		wantValid   bool
		wantExpired bool
		wantErr     error
	}{
		{
			name:    "absent record",
			record:  nil,
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "inactive record",
			record:  &TokenRecord{Value: "x", ExpiresAt: now.Add(time.Hour), IsActive: false},
			wantErr: ErrTokenInvalid,
		},
		{
			name:        "expired record",
			record:      &TokenRecord{Value: "x", ExpiresAt: now.Add(-time.Second), IsActive: true},
			wantExpired: true,
			wantErr:     ErrTokenExpired,
		},
		{
			name:        "expiry boundary is inclusive",
			record:      &TokenRecord{Value: "x", ExpiresAt: now, IsActive: true},
			wantExpired: true,
			wantErr:     ErrTokenExpired,
		},
		{
			name:      "active and unexpired",
			record:    &TokenRecord{Value: "x", ExpiresAt: now.Add(time.Nanosecond), IsActive: true},
			wantValid: true,
		},
		{
			// An inactive record that is also past expiry is reported
			// invalid, not expired.
			name:    "inactive wins over expired",
			record:  &TokenRecord{Value: "x", ExpiresAt: now.Add(-time.Hour), IsActive: false},
			wantErr: ErrTokenInvalid,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ValidateToken(tc.record, now)
			if got.IsValid != tc.wantValid || got.IsExpired != tc.wantExpired {
				t.Fatalf("unexpected classification: %+v", got)
			}
			if err := got.Err(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
