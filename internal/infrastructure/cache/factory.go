package cache

import (
	"fmt"

	"github.com/tramites/backend/internal/domain/tramite"
	"github.com/tramites/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// PublicViewCache is a tramite.PublicViewCache that holds resources
type PublicViewCache interface {
	tramite.PublicViewCache
	Close() error
}

// PublicViewCacheFactory creates public view caches based on configuration
type PublicViewCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// PublicViewCacheFactoryOption is a functional option for configuring the factory
type PublicViewCacheFactoryOption func(*PublicViewCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PublicViewCacheFactoryOption {
	return func(f *PublicViewCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) PublicViewCacheFactoryOption {
	return func(f *PublicViewCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewPublicViewCacheFactory creates a new factory
func NewPublicViewCacheFactory(cfg config.RedisConfig, opts ...PublicViewCacheFactoryOption) *PublicViewCacheFactory {
	f := &PublicViewCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *PublicViewCacheFactory) CreateRedisCache() (PublicViewCache, error) {
	c, err := NewRedisPublicViewCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, WithCacheLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis public view cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates a process-local cache
func (f *PublicViewCacheFactory) CreateInMemoryCache() PublicViewCache {
	return NewInMemoryPublicViewCache(f.logger)
}

// CreateCache uses Redis when it is enabled and reachable, and the
// in-memory cache otherwise if fallback is allowed
func (f *PublicViewCacheFactory) CreateCache() (PublicViewCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory public view cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("Using Redis public view cache")
		return c, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for public view cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory public view cache",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
