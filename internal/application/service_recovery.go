package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kulltaa/masterCondo/internal/domain"
)

// Forgot issues a fresh recovery token for a registered email and queues the
// recovery email. Unlike login, the not-registered case is surfaced: this
// endpoint is an existence query, not a credential check.
func (s *Service) Forgot(ctx context.Context, email string) error {
	normalized, err := domain.ValidateEmail(email)
	if err != nil {
		return err
	}

	account, err := s.accounts.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: email has not been registered", domain.ErrNotFound)
		}
		return err
	}

	recovery, err := s.issueToken(ctx, s.recoveryTokens, account.ID, s.cfg.RecoveryTokenTTL)
	if err != nil {
		return fmt.Errorf("issue recovery token: %w", err)
	}

	if err := s.outbox.Enqueue(ctx, s.buildRecoveryMail(account.Email, recovery.Value, s.nowFn())); err != nil {
		return fmt.Errorf("enqueue recovery mail: %w", err)
	}
	return nil
}

// ValidateRecoveryToken classifies a recovery token without consuming it.
// The recovery form calls this before showing the new-password fields.
func (s *Service) ValidateRecoveryToken(ctx context.Context, tokenValue string) error {
	if strings.TrimSpace(tokenValue) == "" {
		return fmt.Errorf("%w: \"token\" is required", domain.ErrInvalidInput)
	}
	record, err := s.recoveryTokens.FindByValue(ctx, tokenValue)
	if err != nil {
		return err
	}
	return domain.ValidateToken(record, s.nowFn()).Err()
}

// Recover consumes a recovery token and resets the password. All outstanding
// access and recovery tokens of the owner are bulk-invalidated; a partial
// failure propagates so the client can retry the whole flow, which is
// idempotent end to end.
func (s *Service) Recover(ctx context.Context, req RecoverRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: \"token\" is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(req.Password, req.PasswordConfirmation); err != nil {
		return err
	}

	record, err := s.recoveryTokens.FindByValue(ctx, req.Token)
	if err != nil {
		return err
	}
	if err := domain.ValidateToken(record, s.nowFn()).Err(); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	if err := s.accounts.UpdatePassword(ctx, record.AccountID, passwordHash, now); err != nil {
		return err
	}
	if err := s.accessTokens.InvalidateByAccount(ctx, record.AccountID, now); err != nil {
		return err
	}
	if err := s.recoveryTokens.InvalidateByAccount(ctx, record.AccountID, now); err != nil {
		return err
	}
	_ = s.revocations.MarkRevoked(ctx, tokenDigest(req.Token), record.ExpiresAt)
	return nil
}
