package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"buildnchill-shop/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLocked means another admin is transitioning the same order.
var ErrLocked = errors.New("order is locked by another request")

const (
	lockPrefix     = "order_lock:"
	DefaultLockTTL = 30 * time.Second
	unlockTimeout  = 2 * time.Second
)

// Redis serializes status transitions per order across instances.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewRedis(client *redis.Client, log *logger.Logger) *Redis {
	return &Redis{Client: client, TTL: DefaultLockTTL, Logger: log}
}

// Lock takes the order lock or fails fast with ErrLocked. The returned
// function releases it.
func (r *Redis) Lock(ctx context.Context, orderID string) (func(), error) {
	key := lockPrefix + orderID
	token := uuid.NewString()

	ok, err := r.Client.SetNX(ctx, key, token, r.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock error: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		// The request context may already be cancelled here.
		ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()
		if err := r.unlock(ctx, key, token); err != nil && r.Logger != nil {
			r.Logger.Warn("REDIS", fmt.Sprintf("Failed to release %s: %v", key, err))
		}
	}, nil
}

// unlock deletes the key only if this holder still owns it.
func (r *Redis) unlock(ctx context.Context, key, token string) error {
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == token {
		return r.Client.Del(ctx, key).Err()
	}
	return nil
}

// Memory is the single-instance fallback when Redis is disabled.
type Memory struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]bool)}
}

func (m *Memory) Lock(_ context.Context, orderID string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[orderID] {
		return nil, ErrLocked
	}
	m.held[orderID] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, orderID)
			m.mu.Unlock()
		})
	}, nil
}
