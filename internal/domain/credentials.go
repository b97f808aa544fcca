package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

const (
	minPasswordLength = 8
	minUsernameLength = 3
)

var usernamePattern = regexp.MustCompile(`^[0-9a-zA-Z\-_.]+$`)

// ValidateEmail normalizes and checks a registration/login email.
func ValidateEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: \"email\" is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: \"email\" must be a valid email", ErrInvalidInput)
	}
	return trimmed, nil
}

// ValidateUsername enforces the registration username policy.
func ValidateUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "", fmt.Errorf("%w: \"username\" is required", ErrInvalidInput)
	}
	if len(trimmed) < minUsernameLength {
		return "", fmt.Errorf("%w: \"username\" length must be at least %d characters long", ErrInvalidInput, minUsernameLength)
	}
	if !usernamePattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: \"username\" can only contain 0-9, a-z, A-Z, -, _, .", ErrInvalidInput)
	}
	return trimmed, nil
}

// ValidatePassword enforces the baseline password policy shared by the
// registration and recovery flows.
func ValidatePassword(password, confirmation string) error {
	if password == "" {
		return fmt.Errorf("%w: \"password\" is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: \"password\" length must be at least %d characters long", ErrInvalidInput, minPasswordLength)
	}
	if confirmation != password {
		return fmt.Errorf("%w: \"password_confirmation\" must match password", ErrInvalidInput)
	}
	return nil
}
