package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"go-cityboard-automation/internal/models"
)

const redisKeyPrefix = "snapshot:"

// RedisStore keeps each snapshot as one JSON string value. SET replaces the
// value in a single step, so readers never see a half-written snapshot.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisStore(client *redis.Client, log *slog.Logger) *RedisStore {
	return &RedisStore{client: client, log: log.With("component", "snapshot", "backend", "redis")}
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func redisKey(id models.Identity) string {
	return redisKeyPrefix + id.Key()
}

func (s *RedisStore) Load(ctx context.Context, id models.Identity) ([]models.Record, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		s.log.Info("📭 no previous snapshot found", "snapshot", id.Key())
		return []models.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get snapshot %s: %w", id, err)
	}
	return Decode(s.log, id, data), nil
}

func (s *RedisStore) Save(ctx context.Context, id models.Identity, records []models.Record) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot %s: %w", id, err)
	}
	s.log.Info("💾 saved snapshot", "snapshot", id.Key(), "records", len(records))
	return nil
}
