package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const appliedKeyPrefix = "webhook:applied:"

// RedisEventLedger records which provider event ids have been applied, so
// redelivered events become no-ops. Entries expire after the TTL; lifecycle
// effects are idempotent on their own, the ledger only short-circuits.
type RedisEventLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisEventLedger(client *redis.Client, ttl time.Duration) *RedisEventLedger {
	return &RedisEventLedger{
		client: client,
		ttl:    ttl,
	}
}

func (l *RedisEventLedger) IsApplied(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, appliedKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check applied event %s: %w", eventID, err)
	}
	return n > 0, nil
}

func (l *RedisEventLedger) MarkApplied(ctx context.Context, eventID string) error {
	err := l.client.SetNX(ctx, appliedKeyPrefix+eventID, 1, l.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to mark event %s applied: %w", eventID, err)
	}
	return nil
}

// MemoryEventLedger is the in-process fallback used when Redis is not
// configured, and by tests.
type MemoryEventLedger struct {
	mu      sync.Mutex
	applied map[string]struct{}
}

func NewMemoryEventLedger() *MemoryEventLedger {
	return &MemoryEventLedger{
		applied: make(map[string]struct{}),
	}
}

func (l *MemoryEventLedger) IsApplied(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.applied[eventID]
	return ok, nil
}

func (l *MemoryEventLedger) MarkApplied(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applied[eventID] = struct{}{}
	return nil
}
