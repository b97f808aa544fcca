package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kulltaa/masterCondo/internal/domain"
	"github.com/kulltaa/masterCondo/internal/ports"
)

// Register creates a new inactive account, issues an email-verification token
// and an access token, and queues the verification email. Repeated
// registrations before verification are rejected on the unique email/username,
// never by any single-outstanding-token rule.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	email, err := domain.ValidateEmail(req.Email)
	if err != nil {
		return RegisterResponse{}, err
	}
	username, err := domain.ValidateUsername(req.Username)
	if err != nil {
		return RegisterResponse{}, err
	}
	if err := domain.ValidatePassword(req.Password, req.PasswordConfirmation); err != nil {
		return RegisterResponse{}, err
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return RegisterResponse{}, fmt.Errorf("%w: email already in use", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return RegisterResponse{}, err
	}
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return RegisterResponse{}, fmt.Errorf("%w: username already in use", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return RegisterResponse{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return RegisterResponse{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	account, err := s.accounts.Create(ctx, ports.CreateAccountParams{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	})
	if err != nil {
		return RegisterResponse{}, err
	}

	verification, err := s.issueToken(ctx, s.verificationTokens, account.ID, s.cfg.VerificationTokenTTL)
	if err != nil {
		return RegisterResponse{}, fmt.Errorf("issue verification token: %w", err)
	}
	access, err := s.issueToken(ctx, s.accessTokens, account.ID, s.cfg.AccessTokenTTL)
	if err != nil {
		return RegisterResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	if err := s.outbox.Enqueue(ctx, s.buildVerificationMail(account.Email, verification.Value, now)); err != nil {
		return RegisterResponse{}, fmt.Errorf("enqueue verification mail: %w", err)
	}

	return RegisterResponse{
		AccountID:   account.ID,
		AccessToken: access.Value,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Login checks the password and issues a fresh access token. Login does not
// depend on the active flag: unverified accounts may log in.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := domain.ValidateEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}
	if req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: \"password\" is required", domain.ErrInvalidInput)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResponse{}, fmt.Errorf("%w: email does not exist", domain.ErrNotFound)
		}
		return LoginResponse{}, err
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	access, err := s.issueToken(ctx, s.accessTokens, account.ID, s.cfg.AccessTokenTTL)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	return LoginResponse{
		AccessToken: access.Value,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Logout deactivates exactly one access token by value and marks its digest
// revoked in the cache so the gate stops honoring it immediately.
func (s *Service) Logout(ctx context.Context, tokenValue string) error {
	tokenValue = strings.TrimSpace(tokenValue)
	if tokenValue == "" {
		return fmt.Errorf("%w: \"token\" is required", domain.ErrInvalidInput)
	}

	record, err := s.accessTokens.FindByValue(ctx, tokenValue)
	if err != nil {
		return err
	}
	if err := domain.ValidateToken(record, s.nowFn()).Err(); err != nil {
		return err
	}

	if err := s.accessTokens.InvalidateByValue(ctx, tokenValue, s.nowFn()); err != nil {
		return err
	}
	_ = s.revocations.MarkRevoked(ctx, tokenDigest(tokenValue), record.ExpiresAt)
	return nil
}

// Authenticate resolves a bearer token value to its owning account. This is
// the delegate behind the HTTP bearer gate: the revocation cache is consulted
// first, then the store record is classified by the validator.
func (s *Service) Authenticate(ctx context.Context, tokenValue string) (domain.Account, error) {
	if revoked, _ := s.revocations.IsRevoked(ctx, tokenDigest(tokenValue)); revoked {
		return domain.Account{}, domain.ErrTokenInvalid
	}

	record, account, err := s.accessTokens.FindByValueWithAccount(ctx, tokenValue)
	if err != nil {
		return domain.Account{}, err
	}
	if err := domain.ValidateToken(record, s.nowFn()).Err(); err != nil {
		return domain.Account{}, err
	}
	return *account, nil
}

// Status reports the account state for an authenticated principal.
func (s *Service) Status(account domain.Account) StatusResponse {
	return StatusResponse{
		AccountID: account.ID,
		Email:     account.Email,
		Username:  account.Username,
		IsActive:  account.IsActive,
	}
}

func (s *Service) issueToken(ctx context.Context, repo ports.TokenRepository, accountID int64, ttl time.Duration) (domain.Token, error) {
	now := s.nowFn()
	token, err := domain.GenerateToken(now, ttl)
	if err != nil {
		return domain.Token{}, err
	}
	if err := repo.Create(ctx, ports.TokenIssueParams{
		AccountID: accountID,
		Value:     token.Value,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: now,
	}); err != nil {
		return domain.Token{}, err
	}
	return token, nil
}
