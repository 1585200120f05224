package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionKeyPrefix namespaces live admin sessions in Redis.
const SessionKeyPrefix = "admin_session:"

// SessionStore remembers which token ids are still live. Deleting an id
// revokes the token before its expiry.
type SessionStore interface {
	Save(ctx context.Context, jti, subject string, ttl time.Duration) error
	Exists(ctx context.Context, jti string) (bool, error)
	Delete(ctx context.Context, jti string) error
	Count(ctx context.Context) (int, error)
}

// RedisSessions keeps sessions as expiring Redis keys.
type RedisSessions struct {
	Client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{Client: client}
}

func (s *RedisSessions) Save(ctx context.Context, jti, subject string, ttl time.Duration) error {
	if err := s.Client.Set(ctx, SessionKeyPrefix+jti, subject, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}
	return nil
}

func (s *RedisSessions) Exists(ctx context.Context, jti string) (bool, error) {
	n, err := s.Client.Exists(ctx, SessionKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read session from Redis: %w", err)
	}
	return n == 1, nil
}

func (s *RedisSessions) Delete(ctx context.Context, jti string) error {
	return s.Client.Del(ctx, SessionKeyPrefix+jti).Err()
}

func (s *RedisSessions) Count(ctx context.Context) (int, error) {
	count := 0
	iter := s.Client.Scan(ctx, 0, SessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return count, nil
}

// MemorySessions is used when Redis is disabled and in tests.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]time.Time), now: time.Now}
}

func (s *MemorySessions) Save(_ context.Context, jti, _ string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[jti] = s.now().Add(ttl)
	return nil
}

func (s *MemorySessions) Exists(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.sessions[jti]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.sessions, jti)
		return false, nil
	}
	return true, nil
}

func (s *MemorySessions) Delete(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, jti)
	return nil
}

func (s *MemorySessions) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for jti, exp := range s.sessions {
		if !now.Before(exp) {
			delete(s.sessions, jti)
		}
	}
	return len(s.sessions), nil
}
