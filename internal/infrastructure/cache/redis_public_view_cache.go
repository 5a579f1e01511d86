package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tramites/backend/internal/domain/tramite"
	"go.uber.org/zap"
)

const publicViewKeyPrefix = "tramite:public:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisPublicViewCache implements tramite.PublicViewCache using Redis
type RedisPublicViewCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisPublicViewCacheOption is a functional option for configuring the cache
type RedisPublicViewCacheOption func(*RedisPublicViewCache)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisPublicViewCacheOption {
	return func(c *RedisPublicViewCache) {
		c.logger = logger
	}
}

// NewRedisPublicViewCache connects to Redis and creates the cache
func NewRedisPublicViewCache(cfg RedisConfig, opts ...RedisPublicViewCacheOption) (*RedisPublicViewCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisPublicViewCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisPublicViewCacheWithClient creates a cache with an existing Redis client.
// The caller keeps ownership of the client.
func NewRedisPublicViewCacheWithClient(client *redis.Client, opts ...RedisPublicViewCacheOption) *RedisPublicViewCache {
	c := &RedisPublicViewCache{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func publicViewKey(filingNumber string) string {
	return publicViewKeyPrefix + filingNumber
}

// Get retrieves a public view, returning (nil, nil) on a miss
func (c *RedisPublicViewCache) Get(ctx context.Context, filingNumber string) (*tramite.PublicView, error) {
	key := publicViewKey(filingNumber)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get public view from cache: %w", err)
	}

	var view tramite.PublicView
	if err := json.Unmarshal(data, &view); err != nil {
		c.logger.Error("Corrupted public view cache entry",
			zap.String("filing_number", filingNumber),
			zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal public view: %w", err)
	}
	return &view, nil
}

// Set stores a public view for ttl
func (c *RedisPublicViewCache) Set(ctx context.Context, view *tramite.PublicView, ttl time.Duration) error {
	if view == nil {
		return nil
	}
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal public view: %w", err)
	}
	if err := c.client.Set(ctx, publicViewKey(view.FilingNumber), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set public view in cache: %w", err)
	}
	return nil
}

// Delete removes a public view
func (c *RedisPublicViewCache) Delete(ctx context.Context, filingNumber string) error {
	if err := c.client.Del(ctx, publicViewKey(filingNumber)).Err(); err != nil {
		return fmt.Errorf("failed to delete public view from cache: %w", err)
	}
	return nil
}

// Close closes the client if the cache created it
func (c *RedisPublicViewCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ tramite.PublicViewCache = (*RedisPublicViewCache)(nil)
