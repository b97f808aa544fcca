package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kulltaa/masterCondo/internal/domain"
)

// CreateAccountParams captures registration inputs at persistence time.
type CreateAccountParams struct {
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountRepository defines persistence operations for accounts.
// Email and username uniqueness is enforced at write time; Create returns
// domain.ErrConflict on a duplicate.
type AccountRepository interface {
	Create(ctx context.Context, params CreateAccountParams) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByID(ctx context.Context, accountID int64) (domain.Account, error)
	Activate(ctx context.Context, accountID int64, activatedAt time.Time) error
	UpdatePassword(ctx context.Context, accountID int64, passwordHash string, updatedAt time.Time) error
}

// TokenIssueParams is one new token row. Issue always inserts; outstanding
// tokens for the same account are never updated in place.
type TokenIssueParams struct {
	AccountID int64
	Value     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenRepository is the structurally shared store contract behind the
// access, email-verification and recovery token kinds. Lookups return
// (nil, nil) when no row matches so the validator can classify absence
// separately from store failure.
type TokenRepository interface {
	Create(ctx context.Context, params TokenIssueParams) error
	FindByValue(ctx context.Context, value string) (*domain.TokenRecord, error)
	FindLatestByAccount(ctx context.Context, accountID int64) (*domain.TokenRecord, error)
	// InvalidateByAccount bulk-sets active=false for every row of the owner.
	// Idempotent: repeating it leaves the same end state.
	InvalidateByAccount(ctx context.Context, accountID int64, at time.Time) error
	// InvalidateByValue deactivates exactly one row.
	InvalidateByValue(ctx context.Context, value string, at time.Time) error
}

// AccessTokenRepository adds the joined lookup the bearer gate needs: the
// principal account is resolved in the same logical operation as the token.
type AccessTokenRepository interface {
	TokenRepository
	FindByValueWithAccount(ctx context.Context, value string) (*domain.TokenRecord, *domain.Account, error)
}

// OutboxMail is a rendered email queued for durable delivery.
type OutboxMail struct {
	MailID     uuid.UUID
	MailType   string
	ToAddress  string
	Subject    string
	HTMLBody   string
	OccurredAt time.Time
}

// OutboxMailRecord is the stored outbox state including retry metadata.
type OutboxMailRecord struct {
	MailID       uuid.UUID
	MailType     string
	ToAddress    string
	Subject      string
	HTMLBody     string
	RetryCount   int
	LastError    *string
	CreatedAt    time.Time
	SentAt       *time.Time
	LastErrorAt  *time.Time
	ClaimToken   *string
	ClaimUntil   *time.Time
	DeadLetterAt *time.Time
}

// MailOutboxRepository controls the send-retry workflow for queued emails.
// The claim-token protocol keeps multiple workers from double-sending.
type MailOutboxRepository interface {
	Enqueue(ctx context.Context, mail OutboxMail) error
	ClaimUnsent(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxMailRecord, error)
	MarkSent(ctx context.Context, mailID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, mailID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, mailID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
