package service

import (
	"context"
	"sync"
	"time"
)

// SessionRevocations remembers logged-out session tokens until they expire.
// pkg/redis.TokenBlacklist satisfies it; MemoryRevocations serves a single
// process without Redis.
type SessionRevocations interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for t, until := range m.revoked {
		if !until.After(now) {
			delete(m.revoked, t)
		}
	}
	m.revoked[token] = now.Add(ttl)
	return nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[token]
	if !ok {
		return false, nil
	}
	if !until.After(m.now()) {
		delete(m.revoked, token)
		return false, nil
	}
	return true, nil
}
