package mail

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kulltaa/masterCondo/internal/ports"
)

// DeliveryWorker drains the mail outbox and hands each queued message to the
// transport. Delivery runs outside the request path.
type DeliveryWorker struct {
	logger     *slog.Logger
	outbox     ports.MailOutboxRepository
	sender     ports.MailSender
	interval   time.Duration
	batchSize  int
	claimTTL   time.Duration
	maxRetries int
}

// NewDeliveryWorker constructs the mail delivery loop with sane defaults.
func NewDeliveryWorker(
	logger *slog.Logger,
	outbox ports.MailOutboxRepository,
	sender ports.MailSender,
	interval time.Duration,
	batchSize int,
	claimTTL time.Duration,
	maxRetries int,
) *DeliveryWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if claimTTL <= 0 {
		claimTTL = 30 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &DeliveryWorker{
		logger:     logger,
		outbox:     outbox,
		sender:     sender,
		interval:   interval,
		batchSize:  batchSize,
		claimTTL:   claimTTL,
		maxRetries: maxRetries,
	}
}

// Run executes the periodic delivery loop until context cancellation.
func (w *DeliveryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "mail delivery iteration failed",
				"module", "mail.delivery_worker",
				"layer", "adapter",
				"operation", "deliver_process_once",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *DeliveryWorker) processOnce(ctx context.Context) error {
	claimToken := uuid.NewString()
	records, err := w.outbox.ClaimUnsent(ctx, w.batchSize, claimToken, time.Now().UTC().Add(w.claimTTL))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	sent := 0
	failed := 0
	deadLettered := 0
	for _, rec := range records {
		if rec.RetryCount >= w.maxRetries {
			deadLettered++
			_ = w.outbox.MarkDeadLettered(ctx, rec.MailID, claimToken, "retry threshold reached before send", now)
			continue
		}

		msg := ports.MailMessage{
			To:      rec.ToAddress,
			Subject: rec.Subject,
			HTML:    rec.HTMLBody,
		}
		if err := w.sender.Send(ctx, msg); err != nil {
			failed++
			retriesAfterFailure := rec.RetryCount + 1
			if retriesAfterFailure >= w.maxRetries {
				deadLettered++
				w.logger.ErrorContext(ctx, "mail moved to dead letter",
					"module", "mail.delivery_worker",
					"layer", "adapter",
					"operation", "send_mail",
					"outcome", "failure",
					"mail_id", rec.MailID,
					"mail_type", rec.MailType,
					"retry_count", retriesAfterFailure,
					"error", err,
				)
				_ = w.outbox.MarkDeadLettered(ctx, rec.MailID, claimToken, err.Error(), now)
				continue
			}

			w.logger.WarnContext(ctx, "mail send failed; retry scheduled",
				"module", "mail.delivery_worker",
				"layer", "adapter",
				"operation", "send_mail",
				"outcome", "failure",
				"mail_id", rec.MailID,
				"mail_type", rec.MailType,
				"retry_count", retriesAfterFailure,
				"error", err,
			)
			_ = w.outbox.MarkFailed(ctx, rec.MailID, claimToken, err.Error(), now)
			continue
		}
		sent++
		_ = w.outbox.MarkSent(ctx, rec.MailID, claimToken, now)
	}
	if len(records) > 0 {
		w.logger.InfoContext(ctx, "mail batch processed",
			"module", "mail.delivery_worker",
			"layer", "adapter",
			"operation", "deliver_process_once",
			"outcome", "success",
			"batch_size", len(records),
			"sent_count", sent,
			"failed_count", failed,
			"dead_lettered_count", deadLettered,
		)
	}
	return nil
}
