package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mambasports/team-service/internal/auth/service"
	"github.com/mambasports/team-service/internal/configs"
	"github.com/mambasports/team-service/internal/database"
	"github.com/mambasports/team-service/pkg/mail"
	"go.uber.org/zap"
)

type MailQueue interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context, consumer string, count int64, block time.Duration) ([]database.OutboxMessage, error)
	Claim(ctx context.Context, consumer string, minIdle time.Duration, count int64) ([]database.OutboxMessage, error)
	Ack(ctx context.Context, id string) error
	RecordAttempt(ctx context.Context, id string) (int64, error)
	DeadLetter(ctx context.Context, msg database.OutboxMessage, reason string) error
}

type DeliveryLedger interface {
	MarkDelivered(ctx context.Context, email, code string) error
}

const defaultBatchSize = 10

// MailConsumer drains the mail outbox. Failed sends stay pending and are
// re-claimed after RetryAfter until MaxAttempts is reached.
type MailConsumer struct {
	queue       MailQueue
	ledger      DeliveryLedger
	mailer      mail.Mailer
	log         *zap.Logger
	consumer    string
	otpTTL      time.Duration
	maxAttempts int64
	retryAfter  time.Duration
	batchSize   int64
	block       time.Duration
}

func NewMailConsumer(queue MailQueue, ledger DeliveryLedger, mailer mail.Mailer, cfg *configs.Config, log *zap.Logger) *MailConsumer {
	host, _ := os.Hostname()
	return &MailConsumer{
		queue:       queue,
		ledger:      ledger,
		mailer:      mailer,
		log:         log.Named("mail_consumer"),
		consumer:    fmt.Sprintf("%s-%d", host, os.Getpid()),
		otpTTL:      cfg.Auth.OTPTTL,
		maxAttempts: int64(cfg.Mail.MaxAttempts),
		retryAfter:  cfg.Mail.RetryAfter,
		batchSize:   defaultBatchSize,
		block:       5 * time.Second,
	}
}

func (w *MailConsumer) Start(ctx context.Context) {
	if err := w.queue.EnsureGroup(ctx); err != nil {
		w.log.Error("mail consumer cannot start", zap.Error(err))
		return
	}
	w.log.Info("mail consumer started", zap.String("consumer", w.consumer))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("mail consumer shutting down")
			return
		default:
		}

		if _, err := w.ProcessBatch(ctx, w.block); err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Error("mail batch failed", zap.Error(err))
			time.Sleep(time.Second)
		}
	}
}

// ProcessBatch handles stale pending entries first, then new ones, and
// returns how many were delivered.
func (w *MailConsumer) ProcessBatch(ctx context.Context, block time.Duration) (int, error) {
	stale, err := w.queue.Claim(ctx, w.consumer, w.retryAfter, w.batchSize)
	if err != nil {
		return 0, err
	}
	fresh, err := w.queue.Read(ctx, w.consumer, w.batchSize, block)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, msg := range append(stale, fresh...) {
		if w.handle(ctx, msg) {
			delivered++
		}
	}
	return delivered, nil
}

func (w *MailConsumer) handle(ctx context.Context, msg database.OutboxMessage) bool {
	log := w.log.With(zap.String("entry", msg.ID))

	if msg.DecodeErr != nil {
		log.Error("undecodable mail job", zap.Error(msg.DecodeErr))
		if err := w.queue.DeadLetter(ctx, msg, msg.DecodeErr.Error()); err != nil {
			log.Error("dead-letter failed", zap.Error(err))
		}
		return false
	}

	attempts, err := w.queue.RecordAttempt(ctx, msg.ID)
	if err != nil {
		log.Error("record attempt failed", zap.Error(err))
		return false
	}

	if err := service.SendMailJob(ctx, w.mailer, msg.Job, w.otpTTL); err != nil {
		log.Warn("mail send failed", zap.Int64("attempt", attempts), zap.Error(err))
		if attempts >= w.maxAttempts {
			if err := w.queue.DeadLetter(ctx, msg, err.Error()); err != nil {
				log.Error("dead-letter failed", zap.Error(err))
			}
		}
		return false
	}

	if err := w.ledger.MarkDelivered(ctx, msg.Job.Email, msg.Job.Code); err != nil {
		log.Warn("mark delivered failed", zap.Error(err))
	}
	if err := w.queue.Ack(ctx, msg.ID); err != nil {
		log.Error("ack failed", zap.Error(err))
	}
	return true
}
