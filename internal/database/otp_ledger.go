package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
)

const (
	otpKeyPrefix      = "otp:"
	otpAttemptsPrefix = "otp_attempts:"
	// otpGrace keeps stale records around long enough for callers to report
	// them as expired rather than unknown.
	otpGrace = time.Minute
)

// OTPLedger keeps at most one outstanding code per email. Callers decide
// expiry from CreatedAt; Redis only garbage-collects.
type OTPLedger struct {
	cache *RedisCache
	ttl   time.Duration
}

func NewOTPLedger(cache *RedisCache, ttl time.Duration) *OTPLedger {
	return &OTPLedger{cache: cache, ttl: ttl}
}

func otpKey(email string) string {
	return otpKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

func attemptsKey(email string) string {
	return otpAttemptsPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Save replaces any previous record for the email and resets its failed
// attempt counter.
func (l *OTPLedger) Save(ctx context.Context, otp *model.OTP) error {
	if err := l.cache.Delete(ctx, attemptsKey(otp.Email)); err != nil {
		return fmt.Errorf("reset otp attempts: %w", err)
	}
	if err := l.cache.Set(ctx, otpKey(otp.Email), otp, l.ttl+otpGrace); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

// RecordFailure counts a wrong code against the outstanding record and
// returns the running total. The counter expires with the record.
func (l *OTPLedger) RecordFailure(ctx context.Context, email string) (int64, error) {
	key := attemptsKey(email)
	pipe := l.cache.RawClient().TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.ttl+otpGrace)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record otp failure: %w", err)
	}
	return incr.Val(), nil
}

func (l *OTPLedger) Find(ctx context.Context, email string) (*model.OTP, error) {
	var otp model.OTP
	if err := l.cache.Get(ctx, otpKey(email), &otp); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, customErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}
	return &otp, nil
}

func (l *OTPLedger) Delete(ctx context.Context, email string) error {
	return l.cache.RawClient().Del(ctx, otpKey(email), attemptsKey(email)).Err()
}

// Consume deletes the record and reports whether this call removed it, so
// concurrent consumers of one code see exactly one winner.
func (l *OTPLedger) Consume(ctx context.Context, email string) (bool, error) {
	n, err := l.cache.RawClient().Del(ctx, otpKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	if err := l.cache.Delete(ctx, attemptsKey(email)); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return n == 1, nil
}

// MarkDelivered flags the record for code if it is still the outstanding
// one. A superseded or consumed code is ignored.
func (l *OTPLedger) MarkDelivered(ctx context.Context, email, code string) error {
	otp, err := l.Find(ctx, email)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if otp.Code != code {
		return nil
	}
	otp.Delivered = true
	return l.cache.SetKeepTTL(ctx, otpKey(email), otp)
}
