// Package notifylog keeps the notification log and push tokens in redis.
package notifylog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	LogKey    = "notifications"
	TokensKey = "push_tokens"
)

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Store persists a log of T as one JSON list under LogKey.
type Store[T any] struct {
	client *redis.Client
	log    *zap.Logger
}

func NewStore[T any](client *redis.Client, log *zap.Logger) *Store[T] {
	return &Store[T]{client: client, log: log}
}

func (s *Store[T]) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Load returns the persisted log. A missing key is an empty log; an
// unreadable one is discarded.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := s.client.Get(ctx, LogKey).Bytes()
	if err == redis.Nil {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", LogKey, err)
	}

	items, err := decode[T](raw)
	if err != nil {
		s.log.Warn("discard unreadable notification log", zap.Error(err))
		return []T{}, nil
	}
	return items, nil
}

func (s *Store[T]) Save(ctx context.Context, items []T) error {
	raw, err := encode(items)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, LogKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", LogKey, err)
	}
	return nil
}

func (s *Store[T]) SaveToken(ctx context.Context, userID, token string) error {
	if err := s.client.HSet(ctx, TokensKey, userID, token).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", TokensKey, err)
	}
	return nil
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal notification log: %w", err)
	}
	return raw, nil
}

func decode[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal notification log: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
