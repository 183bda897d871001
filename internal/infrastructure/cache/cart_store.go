package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dentalshop/backend/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

// DefaultCartTTL is how long an untouched cart survives
const DefaultCartTTL = 7 * 24 * time.Hour

const cartKeyPrefix = "cart:"

// RedisCartStore keeps each session's cart as one JSON value with a sliding TTL
type RedisCartStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCartStore creates a Redis-backed cart store
func NewRedisCartStore(client redis.UniversalClient, ttl time.Duration) *RedisCartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &RedisCartStore{client: client, ttl: ttl}
}

func (s *RedisCartStore) key(sessionID string) string {
	return cartKeyPrefix + sessionID
}

// Load returns the stored cart or an empty one
func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c := cart.New(sessionID)
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	c.SessionID = sessionID
	return c, nil
}

// Save writes the cart and refreshes its expiry
func (s *RedisCartStore) Save(ctx context.Context, c *cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(c.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the session's cart
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

var _ cart.Store = (*RedisCartStore)(nil)

type cartEntry struct {
	lines     []cart.Line
	updatedAt time.Time
	expiresAt time.Time
}

// InMemoryCartStore is the single-instance cart store used without Redis
type InMemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]cartEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewInMemoryCartStore creates an in-memory cart store
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &InMemoryCartStore{
		carts: make(map[string]cartEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Load returns a copy of the stored cart or an empty one
func (s *InMemoryCartStore) Load(_ context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.carts[sessionID]
	if !ok {
		return cart.New(sessionID), nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.carts, sessionID)
		return cart.New(sessionID), nil
	}

	c := cart.New(sessionID)
	c.Lines = append(c.Lines, entry.lines...)
	c.UpdatedAt = entry.updatedAt
	return c, nil
}

// Save stores a copy of the cart
func (s *InMemoryCartStore) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.carts {
		if now.After(entry.expiresAt) {
			delete(s.carts, id)
		}
	}
	s.carts[c.SessionID] = cartEntry{
		lines:     append([]cart.Line(nil), c.Lines...),
		updatedAt: c.UpdatedAt,
		expiresAt: now.Add(s.ttl),
	}
	return nil
}

// Delete removes the session's cart
func (s *InMemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

var _ cart.Store = (*InMemoryCartStore)(nil)
