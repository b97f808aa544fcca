package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kulltaa/masterCondo/internal/domain"
	"github.com/kulltaa/masterCondo/internal/ports"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) Create(ctx context.Context, params ports.CreateAccountParams) (domain.Account, error) {
	rec := accountModel{
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		IsActive:     false,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Account{}, fmt.Errorf("%w: email or username already in use", domain.ErrConflict)
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *accountRepository) GetByID(ctx context.Context, accountID int64) (domain.Account, error) {
	return r.getBy(ctx, "id = ?", accountID)
}

func (r *accountRepository) getBy(ctx context.Context, cond string, arg any) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) Activate(ctx context.Context, accountID int64, activatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"is_active":  true,
			"updated_at": activatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, accountID int64, passwordHash string, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"updated_at":    updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomainAccount(rec accountModel) domain.Account {
	return domain.Account{
		ID:           rec.ID,
		Email:        rec.Email,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		IsActive:     rec.IsActive,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
