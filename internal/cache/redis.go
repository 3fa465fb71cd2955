package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"decor-shop/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a Cache backed by go-redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("redis connected")

	return &Redis{
		client: client,
		ttl:    cfg.TTL,
		logger: logger.With().Str("component", "cache").Logger(),
	}, nil
}

// Get decodes the value under key into dest.
func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		r.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		_ = r.client.Del(ctx, key).Err()
		return false, nil
	}

	return true, nil
}

// Set stores value under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// Generation returns the current catalog generation, zero when unset.
func (r *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, GenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read catalog generation: %w", err)
	}
	return gen, nil
}

// BumpGeneration advances the catalog generation.
func (r *Redis) BumpGeneration(ctx context.Context) error {
	if err := r.client.Incr(ctx, GenerationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump catalog generation: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
