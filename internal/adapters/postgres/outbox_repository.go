package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kulltaa/masterCondo/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type mailOutboxRepository struct {
	db *gorm.DB
}

func (r *mailOutboxRepository) Enqueue(ctx context.Context, mail ports.OutboxMail) error {
	rec := mailOutboxModel{
		MailID:    mail.MailID,
		MailType:  mail.MailType,
		ToAddress: mail.ToAddress,
		Subject:   mail.Subject,
		HTMLBody:  mail.HTMLBody,
		CreatedAt: mail.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *mailOutboxRepository) ClaimUnsent(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxMailRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	if claimToken == "" {
		return nil, fmt.Errorf("claim token is required")
	}

	now := time.Now().UTC()
	var rows []mailOutboxModel
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subquery := tx.Model(&mailOutboxModel{}).
			Select("mail_id").
			Where("sent_at IS NULL").
			Where("dead_lettered_at IS NULL").
			Where("claim_until IS NULL OR claim_until < ?", now).
			Order("created_at ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})

		if err := tx.Model(&mailOutboxModel{}).
			Where("mail_id IN (?)", subquery).
			Updates(map[string]any{
				"claim_token": claimToken,
				"claim_until": claimUntil,
			}).Error; err != nil {
			return err
		}

		return tx.Where("claim_token = ?", claimToken).
			Where("sent_at IS NULL").
			Where("dead_lettered_at IS NULL").
			Order("created_at ASC").
			Find(&rows).Error
	}); err != nil {
		return nil, err
	}

	result := make([]ports.OutboxMailRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, ports.OutboxMailRecord{
			MailID:       row.MailID,
			MailType:     row.MailType,
			ToAddress:    row.ToAddress,
			Subject:      row.Subject,
			HTMLBody:     row.HTMLBody,
			RetryCount:   row.RetryCount,
			LastError:    row.LastError,
			CreatedAt:    row.CreatedAt,
			SentAt:       row.SentAt,
			LastErrorAt:  row.LastErrorAt,
			ClaimToken:   row.ClaimToken,
			ClaimUntil:   row.ClaimUntil,
			DeadLetterAt: row.DeadLetteredAt,
		})
	}
	return result, nil
}

func (r *mailOutboxRepository) MarkSent(ctx context.Context, mailID uuid.UUID, claimToken string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&mailOutboxModel{}).
		Where("mail_id = ?", mailID).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"sent_at":     at,
			"claim_token": nil,
			"claim_until": nil,
		}).Error
}

func (r *mailOutboxRepository) MarkFailed(ctx context.Context, mailID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&mailOutboxModel{}).
		Where("mail_id = ?", mailID).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_error":    errMsg,
			"last_error_at": at,
			"claim_token":   nil,
			"claim_until":   nil,
		}).Error
}

func (r *mailOutboxRepository) MarkDeadLettered(ctx context.Context, mailID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&mailOutboxModel{}).
		Where("mail_id = ?", mailID).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"retry_count":      gorm.Expr("retry_count + 1"),
			"last_error":       errMsg,
			"last_error_at":    at,
			"dead_lettered_at": at,
			"claim_token":      nil,
			"claim_until":      nil,
		}).Error
}
