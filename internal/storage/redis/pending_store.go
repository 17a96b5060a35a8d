// Package redis keeps pending server-mode transactions in Redis so any
// server replica can complete them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

const defaultKeyPrefix = "launchpad:pending:"

// PendingStore implements storage.PendingStore on Redis. Entries are JSON
// values whose expiry is the Redis key TTL.
type PendingStore struct {
	client *redis.Client
	prefix string
}

// NewPendingStore creates a PendingStore on an existing client.
func NewPendingStore(client *redis.Client) *PendingStore {
	return &PendingStore{client: client, prefix: defaultKeyPrefix}
}

// NewClient parses a redis:// URL and pings the server.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Compile-time interface check.
var _ storage.PendingStore = (*PendingStore)(nil)

func (s *PendingStore) key(id string) string {
	return s.prefix + id
}

// Put stores p for ttl. Returns ErrDuplicateKey if a live entry exists.
func (s *PendingStore) Put(ctx context.Context, p *domain.PendingTransaction, ttl time.Duration) error {
	if p == nil || p.ID == "" || ttl <= 0 {
		return storage.ErrInvalidInput
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending transaction: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(p.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("save pending transaction: %w", err)
	}
	if !ok {
		return storage.ErrDuplicateKey
	}
	return nil
}

// Get returns a live pending transaction. Returns ErrNotFound if missing or expired.
func (s *PendingStore) Get(ctx context.Context, id string) (*domain.PendingTransaction, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pending transaction: %w", err)
	}
	return decodePending(data)
}

// Take atomically returns and deletes a pending transaction with GETDEL.
func (s *PendingStore) Take(ctx context.Context, id string) (*domain.PendingTransaction, error) {
	data, err := s.client.GetDel(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("take pending transaction: %w", err)
	}
	return decodePending(data)
}

func decodePending(data []byte) (*domain.PendingTransaction, error) {
	var p domain.PendingTransaction
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pending transaction: %w", err)
	}
	return &p, nil
}
