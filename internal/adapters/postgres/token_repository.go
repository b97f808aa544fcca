package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/kulltaa/masterCondo/internal/domain"
	"github.com/kulltaa/masterCondo/internal/ports"
	"gorm.io/gorm"
)

// tokenTableConfig parameterizes the shared token store. The verification
// table keeps no active flag, so invalidation is a no-op for that kind and
// reads always report the row as active.
type tokenTableConfig struct {
	table         string
	hasActiveFlag bool
}

type tokenRepository struct {
	db  *gorm.DB
	cfg tokenTableConfig
}

func (r *tokenRepository) Create(ctx context.Context, params ports.TokenIssueParams) error {
	values := map[string]any{
		"user_id":          params.AccountID,
		"token":            params.Value,
		"token_expired_at": params.ExpiresAt,
		"created_at":       params.CreatedAt,
	}
	if r.cfg.hasActiveFlag {
		values["is_active"] = true
	}
	return r.db.WithContext(ctx).Table(r.cfg.table).Create(values).Error
}

func (r *tokenRepository) FindByValue(ctx context.Context, value string) (*domain.TokenRecord, error) {
	var row tokenRow
	err := r.db.WithContext(ctx).
		Table(r.cfg.table).
		Where("token = ?", value).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomainToken(row), nil
}

func (r *tokenRepository) FindLatestByAccount(ctx context.Context, accountID int64) (*domain.TokenRecord, error) {
	var row tokenRow
	err := r.db.WithContext(ctx).
		Table(r.cfg.table).
		Where("user_id = ?", accountID).
		Order("created_at DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomainToken(row), nil
}

func (r *tokenRepository) InvalidateByAccount(ctx context.Context, accountID int64, at time.Time) error {
	if !r.cfg.hasActiveFlag {
		return nil
	}
	return r.db.WithContext(ctx).
		Table(r.cfg.table).
		Where("user_id = ?", accountID).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (r *tokenRepository) InvalidateByValue(ctx context.Context, value string, at time.Time) error {
	if !r.cfg.hasActiveFlag {
		return nil
	}
	res := r.db.WithContext(ctx).
		Table(r.cfg.table).
		Where("token = ?", value).
		Where("is_active = ?", true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Table(r.cfg.table).Where("token = ?", value).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (r *tokenRepository) toDomainToken(row tokenRow) *domain.TokenRecord {
	return &domain.TokenRecord{
		ID:        row.ID,
		AccountID: row.UserID,
		Value:     row.Token,
		ExpiresAt: row.TokenExpiredAt,
		IsActive:  row.IsActive || !r.cfg.hasActiveFlag,
		CreatedAt: row.CreatedAt,
	}
}

type accessTokenRepository struct {
	tokenRepository
}

type accessTokenJoinRow struct {
	ID                  int64     `gorm:"column:id"`
	UserID              int64     `gorm:"column:user_id"`
	Token               string    `gorm:"column:token"`
	TokenExpiredAt      time.Time `gorm:"column:token_expired_at"`
	IsActive            bool      `gorm:"column:is_active"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	AccountEmail        string    `gorm:"column:account_email"`
	AccountUsername     string    `gorm:"column:account_username"`
	AccountPasswordHash string    `gorm:"column:account_password_hash"`
	AccountIsActive     bool      `gorm:"column:account_is_active"`
	AccountCreatedAt    time.Time `gorm:"column:account_created_at"`
	AccountUpdatedAt    time.Time `gorm:"column:account_updated_at"`
}

// FindByValueWithAccount resolves the token row and its owning account in a
// single joined query so the request gate pays one round trip.
func (r *accessTokenRepository) FindByValueWithAccount(ctx context.Context, value string) (*domain.TokenRecord, *domain.Account, error) {
	var row accessTokenJoinRow
	err := r.db.WithContext(ctx).
		Table(r.cfg.table+" AS t").
		Select(`t.id, t.user_id, t.token, t.token_expired_at, t.is_active, t.created_at,
			u.email AS account_email, u.username AS account_username,
			u.password_hash AS account_password_hash, u.is_active AS account_is_active,
			u.created_at AS account_created_at, u.updated_at AS account_updated_at`).
		Joins(`JOIN "user" u ON u.id = t.user_id`).
		Where("t.token = ?", value).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	record := &domain.TokenRecord{
		ID:        row.ID,
		AccountID: row.UserID,
		Value:     row.Token,
		ExpiresAt: row.TokenExpiredAt,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
	}
	account := &domain.Account{
		ID:           row.UserID,
		Email:        row.AccountEmail,
		Username:     row.AccountUsername,
		PasswordHash: row.AccountPasswordHash,
		IsActive:     row.AccountIsActive,
		CreatedAt:    row.AccountCreatedAt,
		UpdatedAt:    row.AccountUpdatedAt,
	}
	return record, account, nil
}
