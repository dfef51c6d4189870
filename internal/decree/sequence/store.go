package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultCounterKey holds the next unused decree sequence number.
const DefaultCounterKey = "decree:sequence:next"

// Store persists the running counter between batches.
type Store interface {
	// Next returns the next unused sequence number, 1 when none is stored.
	Next(ctx context.Context) (int, error)
	// Save records next as the next unused sequence number.
	Save(ctx context.Context, next int) error
}

// RedisStore keeps the counter in a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultCounterKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Next(ctx context.Context) (int, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read sequence counter: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("sequence counter %q is not a number: %w", val, err)
	}
	return n, nil
}

func (s *RedisStore) Save(ctx context.Context, next int) error {
	if err := s.client.Set(ctx, s.key, next, 0).Err(); err != nil {
		return fmt.Errorf("write sequence counter: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store for tools and tests.
type MemoryStore struct {
	next int
}

func NewMemoryStore(next int) *MemoryStore { return &MemoryStore{next: next} }

func (m *MemoryStore) Next(context.Context) (int, error) {
	if m.next < 1 {
		return 1, nil
	}
	return m.next, nil
}

func (m *MemoryStore) Save(_ context.Context, next int) error {
	m.next = next
	return nil
}
