package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/auth"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

// VerificationDeliverer sends the verification email of a stored user.
type VerificationDeliverer interface {
	DeliverVerification(ctx context.Context, userID string) error
}

// MailWorker delivers verification emails queued by the API server. Messages
// only carry the user id; the current token is read from the store so that a
// message delivered late never carries a stale link.
type MailWorker struct {
	deliverer VerificationDeliverer
	now       func() time.Time
	logger    *slog.Logger
}

func NewMailWorker(deliverer VerificationDeliverer) *MailWorker {
	return &MailWorker{deliverer: deliverer, now: time.Now, logger: slog.Default()}
}

// HandleVerificationMessage processes a single verification email message.
// A returned error asks the broker to redeliver.
func (w *MailWorker) HandleVerificationMessage(ctx context.Context, msg *amqp.VerificationEmailMessage) error {
	logger := w.logger.With(applog.NewFields().
		WithComponent(applog.ComponentWorker).
		WithRequestID(msg.RequestID).
		ToSlice()...)
	logger.InfoContext(ctx, "Processing verification email message",
		"user_id", msg.UserID,
		"timestamp", msg.Timestamp)

	if msg.UserID == "" {
		logger.WarnContext(ctx, "Dropping verification message without user id")
		return nil
	}

	// Past the token lifetime the link could not work any more.
	if age := w.now().Sub(msg.Timestamp); !msg.Timestamp.IsZero() && age > auth.VerificationTTL {
		logger.WarnContext(ctx, "Dropping expired verification message",
			"user_id", msg.UserID,
			"age", age.Round(time.Minute))
		return nil
	}

	err := w.deliverer.DeliverVerification(ctx, msg.UserID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Verification email delivered", "user_id", msg.UserID)
		return nil
	case errors.Is(err, core.ErrNotFound):
		logger.WarnContext(ctx, "User for verification message not found", "user_id", msg.UserID)
		return nil
	default:
		logger.ErrorContext(ctx, "Failed to deliver verification email",
			"user_id", msg.UserID,
			"error", err)
		return fmt.Errorf("deliver verification email: %w", err)
	}
}

// Run consumes verification messages until ctx is cancelled.
func (w *MailWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeVerificationEmails(ctx, w.HandleVerificationMessage)
}
