package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kulltaa/masterCondo/internal/domain"
)

// VerifyEmail validates an email-verification token, binds it to the claimed
// email, and activates the account. Verification tokens are never marked
// consumed: re-verifying an already active account with a still-valid token
// is an idempotent success.
func (s *Service) VerifyEmail(ctx context.Context, req VerifyRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: \"token\" is required", domain.ErrInvalidInput)
	}
	email, err := domain.ValidateEmail(req.Email)
	if err != nil {
		return err
	}

	record, err := s.verificationTokens.FindByValue(ctx, req.Token)
	if err != nil {
		return err
	}
	if err := domain.ValidateToken(record, s.nowFn()).Err(); err != nil {
		return err
	}

	account, err := s.accounts.GetByID(ctx, record.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Token outlived its account; treat as a credential failure.
			return domain.ErrTokenInvalid
		}
		return err
	}

	// The record's owner must match the claimed email; a valid token for a
	// different account does not verify this one.
	if account.Email != email {
		return domain.ErrTokenInvalid
	}

	if account.IsActive {
		return nil
	}
	return s.accounts.Activate(ctx, account.ID, s.nowFn())
}
