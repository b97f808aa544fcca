package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email"`
	Username     string    `gorm:"column:username"`
	PasswordHash string    `gorm:"column:password_hash"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "user" }

// tokenRow is the shared row shape for the three token tables. The
// verification table carries no is_active column; reads against it leave
// the field at its zero value and the repository compensates.
type tokenRow struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	UserID         int64     `gorm:"column:user_id"`
	Token          string    `gorm:"column:token"`
	TokenExpiredAt time.Time `gorm:"column:token_expired_at"`
	IsActive       bool      `gorm:"column:is_active"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

type mailOutboxModel struct {
	MailID         uuid.UUID  `gorm:"column:mail_id;type:uuid;primaryKey"`
	MailType       string     `gorm:"column:mail_type"`
	ToAddress      string     `gorm:"column:to_address"`
	Subject        string     `gorm:"column:subject"`
	HTMLBody       string     `gorm:"column:html_body"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	SentAt         *time.Time `gorm:"column:sent_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (mailOutboxModel) TableName() string { return "user_mail_outbox" }
