package postgres

import (
	"github.com/kulltaa/masterCondo/internal/ports"
	"gorm.io/gorm"
)

// Repositories bundles the Postgres-backed adapters behind their ports.
type Repositories struct {
	Accounts           ports.AccountRepository
	AccessTokens       ports.AccessTokenRepository
	VerificationTokens ports.TokenRepository
	RecoveryTokens     ports.TokenRepository
	MailOutbox         ports.MailOutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Accounts: &accountRepository{db: db},
		AccessTokens: &accessTokenRepository{
			tokenRepository: tokenRepository{db: db, cfg: tokenTableConfig{table: "user_access_token", hasActiveFlag: true}},
		},
		VerificationTokens: &tokenRepository{db: db, cfg: tokenTableConfig{table: "user_email_verification", hasActiveFlag: false}},
		RecoveryTokens:     &tokenRepository{db: db, cfg: tokenTableConfig{table: "user_recovery", hasActiveFlag: true}},
		MailOutbox:         &mailOutboxRepository{db: db},
	}
}
