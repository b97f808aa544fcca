package application

import "time"

// Config is the application-level tuning passed in by bootstrap.
// TTLs are per token kind; BaseURL feeds the links embedded in emails.
type Config struct {
	BaseURL              string
	AccessTokenTTL       time.Duration
	VerificationTokenTTL time.Duration
	RecoveryTokenTTL     time.Duration
}

type RegisterRequest struct {
	Email                string `json:"email"`
	Username             string `json:"username"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type RegisterResponse struct {
	AccountID   int64  `json:"id"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type VerifyRequest struct {
	Email string
	Token string
}

type RecoverRequest struct {
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type StatusResponse struct {
	AccountID int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	IsActive  bool   `json:"is_active"`
}
