// Package redisstore keeps the collection as one JSON value under a single
// key, mirroring browser local storage.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pocketbook/internal/chart"
	"pocketbook/internal/core"
	"pocketbook/internal/storage"
)

// KV is the subset of the redis client the store uses.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type Store struct {
	client KV
	key    string
	logger *slog.Logger
}

// New returns a store writing the collection under key, or under
// storage.DefaultCollectionKey when key is empty.
func New(client KV, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = storage.DefaultCollectionKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, key: key, logger: logger.With("component", "storage")}
}

// Load implements storage.Store. A missing key yields an empty collection.
func (s *Store) Load(ctx context.Context) ([]core.Transaction, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "redis get failed", "operation", "read", "key", s.key, "error", err)
		return nil, fmt.Errorf("get collection: %w", err)
	}

	out := []core.Transaction{}
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return out, nil
}

// Save implements storage.Store.
func (s *Store) Save(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		s.logger.ErrorContext(ctx, "redis set failed", "operation", "update", "key", s.key, "error", err)
		return fmt.Errorf("set collection: %w", err)
	}
	return nil
}

// LoadTheme implements storage.PreferenceStore.
func (s *Store) LoadTheme(ctx context.Context) (chart.Theme, error) {
	val, err := s.client.Get(ctx, storage.ThemeKey).Result()
	if errors.Is(err, redis.Nil) {
		return chart.Dark, nil
	}
	if err != nil {
		return chart.Dark, fmt.Errorf("get theme: %w", err)
	}
	return storage.DecodeTheme(val), nil
}

// SaveTheme implements storage.PreferenceStore.
func (s *Store) SaveTheme(ctx context.Context, theme chart.Theme) error {
	if err := s.client.Set(ctx, storage.ThemeKey, theme.String(), 0).Err(); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
