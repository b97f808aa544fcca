package unit

import (
	"testing"

	"github.com/kulltaa/masterCondo/internal/domain"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		email     string
		want      string
		wantError bool
	}{
		{name: "valid", email: "user@example.com", want: "user@example.com"},
		{name: "normalized", email: "  User@Example.COM ", want: "user@example.com"},
		{name: "empty", email: "", wantError: true},
		{name: "no domain", email: "user@", wantError: true},
		{name: "plain word", email: "nonsense", wantError: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := domain.ValidateEmail(tc.email)
			if tc.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		username  string
		wantError bool
	}{
		{name: "valid", username: "some_user-1.x"},
		{name: "too short", username: "ab", wantError: true},
		{name: "empty", username: "", wantError: true},
		{name: "illegal chars", username: "bad name!", wantError: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := domain.ValidateUsername(tc.username)
			if tc.wantError && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantError && err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		password     string
		confirmation string
		wantError    bool
	}{
		{name: "valid", password: "supersecret", confirmation: "supersecret"},
		{name: "too short", password: "short", confirmation: "short", wantError: true},
		{name: "empty", password: "", confirmation: "", wantError: true},
		{name: "confirmation mismatch", password: "supersecret", confirmation: "different1", wantError: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := domain.ValidatePassword(tc.password, tc.confirmation)
			if tc.wantError && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantError && err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
		})
	}
}
