package application

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kulltaa/masterCondo/internal/ports"
)

// Service implements the account and token lifecycle use-cases. It is
// stateless between requests; all shared state lives behind the ports.
type Service struct {
	cfg                Config
	accounts           ports.AccountRepository
	accessTokens       ports.AccessTokenRepository
	verificationTokens ports.TokenRepository
	recoveryTokens     ports.TokenRepository
	outbox             ports.MailOutboxRepository
	revocations        ports.TokenRevocationStore
	hasher             ports.PasswordHasher
	nowFn              func() time.Time
}

type Dependencies struct {
	Config             Config
	Accounts           ports.AccountRepository
	AccessTokens       ports.AccessTokenRepository
	VerificationTokens ports.TokenRepository
	RecoveryTokens     ports.TokenRepository
	Outbox             ports.MailOutboxRepository
	Revocations        ports.TokenRevocationStore
	Hasher             ports.PasswordHasher
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:                deps.Config,
		accounts:           deps.Accounts,
		accessTokens:       deps.AccessTokens,
		verificationTokens: deps.VerificationTokens,
		recoveryTokens:     deps.RecoveryTokens,
		outbox:             deps.Outbox,
		revocations:        deps.Revocations,
		hasher:             deps.Hasher,
		nowFn:              func() time.Time { return time.Now().UTC() },
	}
}

// tokenDigest keys the revocation cache without storing raw token values.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
