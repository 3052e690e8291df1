package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown tracks per-recipient send windows for OTP mail.
type Cooldown interface {
	// Active reports whether the recipient is still inside the window.
	Active(ctx context.Context, recipient string) (bool, error)
	// Start opens a new window for the recipient.
	Start(ctx context.Context, recipient string, ttl time.Duration) error
}

const cooldownKeyPrefix = "otp_cooldown:"

// RedisCooldown stores cooldown windows in Redis so they survive restarts
// and are shared across instances.
type RedisCooldown struct {
	client *redis.Client
}

// NewRedisCooldown builds a Redis-backed cooldown tracker.
func NewRedisCooldown(client *redis.Client) *RedisCooldown {
	return &RedisCooldown{client: client}
}

// Active checks for a live cooldown key.
func (c *RedisCooldown) Active(ctx context.Context, recipient string) (bool, error) {
	n, err := c.client.Exists(ctx, cooldownKeyPrefix+recipient).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Start sets the cooldown key with the window TTL.
func (c *RedisCooldown) Start(ctx context.Context, recipient string, ttl time.Duration) error {
	return c.client.Set(ctx, cooldownKeyPrefix+recipient, 1, ttl).Err()
}

// MemoryCooldown keeps cooldown windows in process memory. Used when no
// Redis is configured; windows are lost on restart.
type MemoryCooldown struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryCooldown builds an in-memory cooldown tracker.
func NewMemoryCooldown() *MemoryCooldown {
	return &MemoryCooldown{expires: make(map[string]time.Time), now: time.Now}
}

// Active reports whether the recipient window has not yet elapsed.
func (c *MemoryCooldown) Active(_ context.Context, recipient string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.expires[recipient]
	if !ok {
		return false, nil
	}
	if c.now().After(until) {
		delete(c.expires, recipient)
		return false, nil
	}
	return true, nil
}

// Start records a window ending ttl from now.
func (c *MemoryCooldown) Start(_ context.Context, recipient string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[recipient] = c.now().Add(ttl)
	return nil
}
