package domain

import "time"

// Account is the canonical identity aggregate for the user service.
// IsActive starts false and is flipped exactly once by successful email
// verification; the password hash mutates only through the recovery flow.
type Account struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
