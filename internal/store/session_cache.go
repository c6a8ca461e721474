package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionKeySlot is the single cache slot holding the derived key. The cache
// belongs to one signed-in session, so a fixed key is enough.
const SessionKeySlot = "session:derived-key"

type redisSessionCache struct {
	client *redis.Client
}

// NewRedisSessionCache stores the session key in Redis with a TTL.
func NewRedisSessionCache(client *redis.Client) SessionCache {
	return &redisSessionCache{client: client}
}

func (c *redisSessionCache) Put(ctx context.Context, key []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, SessionKeySlot, key, ttl).Err(); err != nil {
		return fmt.Errorf("cache session key: %w", err)
	}
	return nil
}

func (c *redisSessionCache) Get(ctx context.Context) ([]byte, error) {
	key, err := c.client.Get(ctx, SessionKeySlot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached session key: %w", err)
	}
	return key, nil
}

func (c *redisSessionCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, SessionKeySlot).Err(); err != nil {
		return fmt.Errorf("clear cached session key: %w", err)
	}
	return nil
}

type memorySessionCache struct {
	mu        sync.Mutex
	key       []byte
	expiresAt time.Time
	now       func() time.Time
}

// NewMemorySessionCache keeps the session key in process memory until the
// TTL passes.
func NewMemorySessionCache() SessionCache {
	return &memorySessionCache{now: time.Now}
}

func (c *memorySessionCache) Put(_ context.Context, key []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = slices.Clone(key)
	c.expiresAt = c.now().Add(ttl)
	return nil
}

func (c *memorySessionCache) Get(_ context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.key == nil || !c.now().Before(c.expiresAt) {
		c.wipe()
		return nil, nil
	}
	return slices.Clone(c.key), nil
}

func (c *memorySessionCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wipe()
	return nil
}

func (c *memorySessionCache) wipe() {
	clear(c.key)
	c.key = nil
}
