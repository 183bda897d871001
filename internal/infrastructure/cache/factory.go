package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalshop/backend/internal/domain/cart"
	"github.com/dentalshop/backend/internal/infrastructure/auth"
	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory builds the Redis-backed stores, falling back to in-memory
// implementations when Redis is disabled or unreachable
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                redis.UniversalClient
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithClient injects an already connected Redis client
func WithClient(client redis.UniversalClient) FactoryOption {
	return func(f *Factory) {
		f.client = client
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect dials Redis when enabled. A failed dial is an error only when
// in-memory fallback is disallowed.
func (f *Factory) Connect(ctx context.Context) error {
	if f.client != nil || !f.redisConfig.Enabled {
		if f.client == nil {
			f.logger.Info("Redis disabled, using in-memory stores")
		}
		return nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.client = client
		f.logger.Info("Redis connected", zap.String("addr", f.redisConfig.Addr()))
		return nil
	}

	if !f.allowInMemoryFallback {
		return fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Carts and revoked tokens will not be shared across instances.",
		zap.Error(err),
	)
	return nil
}

// Client returns the connected Redis client, or nil in in-memory mode
func (f *Factory) Client() redis.UniversalClient {
	return f.client
}

// CartStore creates the session cart store
func (f *Factory) CartStore(ttl time.Duration) cart.Store {
	if f.client != nil {
		return NewRedisCartStore(f.client, ttl)
	}
	return NewInMemoryCartStore(ttl)
}

// CategoryCache creates the category menu cache
func (f *Factory) CategoryCache(ttl time.Duration) *CategoryCache {
	return NewCategoryCache(f.client, ttl, f.logger)
}

// TokenBlacklist creates the access token blacklist
func (f *Factory) TokenBlacklist() auth.TokenBlacklist {
	if f.client != nil {
		return auth.NewRedisTokenBlacklist(f.client)
	}
	return auth.NewInMemoryTokenBlacklist()
}

// Close releases the Redis connection
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}

// NewRedisClient dials and pings Redis
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
