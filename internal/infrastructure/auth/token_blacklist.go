package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes access tokens before they expire (logout).
// Entries are keyed by the token's jti and live only as long as the token would.
type TokenBlacklist interface {
	// Revoke blacklists jti for ttl; a non-positive ttl is a no-op
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether jti is currently blacklisted
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const blacklistKeyPrefix = "token:blacklist:"

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisTokenBlacklist creates a token blacklist over an existing Redis client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: blacklistKeyPrefix,
	}
}

func (b *RedisTokenBlacklist) key(jti string) string {
	return b.keyPrefix + jti
}

// Revoke adds a token's jti to the blacklist
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsRevoked checks if a token's jti is in the blacklist
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is the single-instance fallback used when Redis is disabled
type InMemoryTokenBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time // jti -> expiry
	now     func() time.Time
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke adds a token's jti to the in-memory blacklist
func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	// Sweep expired entries so the map stays bounded by live tokens
	for k, exp := range b.entries {
		if now.After(exp) {
			delete(b.entries, k)
		}
	}
	b.entries[jti] = now.Add(ttl)
	return nil
}

// IsRevoked checks if a token's jti is blacklisted and not yet expired
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiration, exists := b.entries[jti]
	if !exists {
		return false, nil
	}
	if b.now().After(expiration) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
