package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mambasports/team-service/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	MailOutboxStream     = "mail_outbox"
	MailOutboxGroup      = "mail_outbox_group"
	MailOutboxDeadStream = "mail_outbox:dead"
	mailOutboxAttempts   = "mail_outbox:attempts"
	// mailOutboxDeadMaxLen bounds the dead stream; older entries are trimmed.
	mailOutboxDeadMaxLen = 10000
)

type OutboxMessage struct {
	ID  string
	Job model.MailJob
	// DecodeErr is set when the stream entry could not be parsed.
	DecodeErr error
}

// MailOutbox is a Redis stream of pending mail jobs read through a
// consumer group. Entries stay pending until acknowledged.
type MailOutbox struct {
	client *redis.Client
}

func NewMailOutbox(cache *RedisCache) *MailOutbox {
	return &MailOutbox{client: cache.RawClient()}
}

func (o *MailOutbox) EnsureGroup(ctx context.Context) error {
	err := o.client.XGroupCreateMkStream(ctx, MailOutboxStream, MailOutboxGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Dispatch enqueues a job for the worker.
func (o *MailOutbox) Dispatch(ctx context.Context, job model.MailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal mail job: %w", err)
	}
	return o.client.XAdd(ctx, &redis.XAddArgs{
		Stream: MailOutboxStream,
		Values: map[string]interface{}{"job": string(payload)},
	}).Err()
}

// Read fetches new entries for consumer. A negative block returns
// immediately when the stream is empty.
func (o *MailOutbox) Read(ctx context.Context, consumer string, count int64, block time.Duration) ([]OutboxMessage, error) {
	streams, err := o.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    MailOutboxGroup,
		Consumer: consumer,
		Streams:  []string{MailOutboxStream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read outbox: %w", err)
	}

	var out []OutboxMessage
	for _, stream := range streams {
		out = append(out, decodeMessages(stream.Messages)...)
	}
	return out, nil
}

// Claim takes over entries another delivery attempt left pending for at
// least minIdle.
func (o *MailOutbox) Claim(ctx context.Context, consumer string, minIdle time.Duration, count int64) ([]OutboxMessage, error) {
	msgs, _, err := o.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   MailOutboxStream,
		Group:    MailOutboxGroup,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    count,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim outbox: %w", err)
	}
	return decodeMessages(msgs), nil
}

func (o *MailOutbox) Ack(ctx context.Context, id string) error {
	pipe := o.client.TxPipeline()
	pipe.XAck(ctx, MailOutboxStream, MailOutboxGroup, id)
	pipe.XDel(ctx, MailOutboxStream, id)
	pipe.HDel(ctx, mailOutboxAttempts, id)
	_, err := pipe.Exec(ctx)
	return err
}

// RecordAttempt increments and returns the delivery attempt count for id.
func (o *MailOutbox) RecordAttempt(ctx context.Context, id string) (int64, error) {
	return o.client.HIncrBy(ctx, mailOutboxAttempts, id, 1).Result()
}

// DeadLetter moves a job that exhausted its attempts to the dead stream
// and drops it from the outbox. The code is redacted; it is never
// delivered from the dead stream.
func (o *MailOutbox) DeadLetter(ctx context.Context, msg OutboxMessage, reason string) error {
	job := msg.Job
	job.Code = ""
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal dead job %s: %w", msg.ID, err)
	}
	if err := o.client.XAdd(ctx, &redis.XAddArgs{
		Stream: MailOutboxDeadStream,
		MaxLen: mailOutboxDeadMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"job":       string(payload),
			"source_id": msg.ID,
			"reason":    reason,
		},
	}).Err(); err != nil {
		return fmt.Errorf("dead-letter %s: %w", msg.ID, err)
	}
	return o.Ack(ctx, msg.ID)
}

func decodeMessages(msgs []redis.XMessage) []OutboxMessage {
	out := make([]OutboxMessage, 0, len(msgs))
	for _, msg := range msgs {
		m := OutboxMessage{ID: msg.ID}
		raw, ok := msg.Values["job"].(string)
		if !ok {
			m.DecodeErr = fmt.Errorf("entry %s has no job field", msg.ID)
		} else if err := json.Unmarshal([]byte(raw), &m.Job); err != nil {
			m.DecodeErr = fmt.Errorf("decode entry %s: %w", msg.ID, err)
		}
		out = append(out, m)
	}
	return out
}
