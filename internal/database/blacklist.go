package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const blacklistKeyPrefix = "blacklist:"

type blacklistEntry struct {
	CreatedAt time.Time `json:"createdAt"`
}

type TokenBlacklist struct {
	cache *RedisCache
	now   func() time.Time
}

func NewTokenBlacklist(cache *RedisCache) *TokenBlacklist {
	return &TokenBlacklist{cache: cache, now: time.Now}
}

// Keys hold a digest of the token so raw credentials never sit in Redis.
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + hex.EncodeToString(sum[:])
}

// Add revokes token for ttl, which should be its remaining lifetime.
// Non-positive ttl means the token has already expired and nothing is stored.
func (b *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.cache.Set(ctx, blacklistKey(token), blacklistEntry{CreatedAt: b.now().UTC()}, ttl); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, blacklistKey(token))
}
