package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tramites/backend/internal/domain/tramite"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

type cacheEntry struct {
	view      tramite.PublicView
	expiresAt time.Time
}

func (e *cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryPublicViewCache implements tramite.PublicViewCache in process
// memory. Entries are not shared between instances.
type InMemoryPublicViewCache struct {
	views   sync.Map // map[string]*cacheEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// NewInMemoryPublicViewCache creates the cache and starts its expiry sweep
func NewInMemoryPublicViewCache(logger *zap.Logger) *InMemoryPublicViewCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &InMemoryPublicViewCache{
		logger: logger,
		stopCh: make(chan struct{}),
	}
	go c.cleanupExpired(defaultCleanupInterval)
	return c
}

// Get retrieves a public view, returning (nil, nil) on a miss
func (c *InMemoryPublicViewCache) Get(_ context.Context, filingNumber string) (*tramite.PublicView, error) {
	if value, ok := c.views.Load(filingNumber); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired(time.Now()) {
			atomic.AddInt64(&c.hits, 1)
			view := entry.view
			return &view, nil
		}
		c.views.Delete(filingNumber)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores a copy of view for ttl
func (c *InMemoryPublicViewCache) Set(_ context.Context, view *tramite.PublicView, ttl time.Duration) error {
	if view == nil || ttl <= 0 {
		return nil
	}
	c.views.Store(view.FilingNumber, &cacheEntry{view: *view, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Delete removes a public view
func (c *InMemoryPublicViewCache) Delete(_ context.Context, filingNumber string) error {
	c.views.Delete(filingNumber)
	return nil
}

// Close stops the expiry sweep
func (c *InMemoryPublicViewCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryPublicViewCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries, expired ones included
func (c *InMemoryPublicViewCache) Count() int {
	n := 0
	c.views.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryPublicViewCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.doCleanup(now)
		}
	}
}

func (c *InMemoryPublicViewCache) doCleanup(now time.Time) {
	removed := 0
	c.views.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired(now) {
			c.views.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired public views", zap.Int("removed", removed))
	}
}

var _ tramite.PublicViewCache = (*InMemoryPublicViewCache)(nil)
