package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
)

// Ensure RedisDedup implements DedupCache
var _ repositories.DedupCache = (*RedisDedup)(nil)

// RedisDedup tracks seen items across runs in Redis. Keys expire after
// the configured TTL so entries from dead sources eventually age out.
type RedisDedup struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisDedup creates a new Redis-backed dedup cache
func NewRedisDedup(cfg config.RedisConfig, logger *zap.Logger) (*RedisDedup, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)

	return &RedisDedup{
		client: client,
		logger: logger,
		ttl:    cfg.TTL,
	}, nil
}

// Close closes the Redis connection
func (c *RedisDedup) Close() error {
	return c.client.Close()
}

// Seen reports whether key was already marked in namespace
func (c *RedisDedup) Seen(ctx context.Context, namespace, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(namespace, key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen key: %w", err)
	}
	return n > 0, nil
}

// MarkSeen marks key in namespace with the configured TTL
func (c *RedisDedup) MarkSeen(ctx context.Context, namespace, key string) error {
	if err := c.client.Set(ctx, c.key(namespace, key), "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark seen key: %w", err)
	}
	return nil
}

// HealthCheck checks if Redis is reachable
func (c *RedisDedup) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisDedup) key(namespace, key string) string {
	return fmt.Sprintf("seen:%s:%s", namespace, key)
}

// NoopDedup is used when Redis is disabled; nothing is ever seen.
type NoopDedup struct{}

var _ repositories.DedupCache = NoopDedup{}

func (NoopDedup) Seen(ctx context.Context, namespace, key string) (bool, error) { return false, nil }
func (NoopDedup) MarkSeen(ctx context.Context, namespace, key string) error     { return nil }
