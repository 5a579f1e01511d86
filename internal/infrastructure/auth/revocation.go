package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tramites/backend/internal/infrastructure/config"
)

// RevocationList records access tokens logged out before they expire.
// Entries are keyed by JTI and live only as long as the token would.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func revocationKey(jti string) string { return "auth:revoked:" + jti }

// RedisRevocationList shares revocations between every API instance
type RedisRevocationList struct {
	rdb    *redis.Client
	closer func() error
}

// NewRedisRevocationList dials Redis and fails when it does not answer a
// ping within five seconds.
func NewRedisRevocationList(cfg config.RedisConfig) (*RedisRevocationList, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("revocation list redis: %w", err)
	}
	return &RedisRevocationList{rdb: rdb, closer: rdb.Close}, nil
}

// NewRedisRevocationListWithClient borrows rdb; Close leaves it open
func NewRedisRevocationListWithClient(rdb *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{rdb: rdb, closer: func() error { return nil }}
}

// Revoke ignores tokens that have already expired
func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.rdb.Set(ctx, revocationKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.rdb.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n == 1, nil
}

func (l *RedisRevocationList) Close() error { return l.closer() }

// InMemoryRevocationList serves a single instance; a logout on one replica
// is not seen by the others.
type InMemoryRevocationList struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{expires: make(map[string]time.Time), now: time.Now}
}

func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	l.expires[jti] = l.now().Add(ttl)
	l.mu.Unlock()
	return nil
}

// IsRevoked forgets entries whose token has expired in the meantime
func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.expires[jti]
	if ok && !l.now().Before(until) {
		delete(l.expires, jti)
		ok = false
	}
	return ok, nil
}

var (
	_ RevocationList = (*RedisRevocationList)(nil)
	_ RevocationList = (*InMemoryRevocationList)(nil)
)

// NewRevocationList prefers Redis when it is configured. An unreachable
// Redis yields the in-memory list together with the dial error so the
// caller can log the downgrade. The close function is never nil.
func NewRevocationList(cfg config.RedisConfig) (RevocationList, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		return NewInMemoryRevocationList(), noop, nil
	}
	l, err := NewRedisRevocationList(cfg)
	if err != nil {
		return NewInMemoryRevocationList(), noop, err
	}
	return l, l.Close, nil
}
