package cache

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// HostBlocker remembers hosts that answered with a rate limit response
type HostBlocker struct {
	svc       CacheService
	blockTime time.Duration
}

// NewHostBlocker creates a blocker storing its keys in svc
func NewHostBlocker(svc CacheService, blockTime time.Duration) *HostBlocker {
	return &HostBlocker{svc: svc, blockTime: blockTime}
}

func blockKey(host string) string {
	return "image_host_rate_limited:" + strings.ToLower(host)
}

// Blocked reports whether host is inside its block window. Cache errors count
// as not blocked.
func (b *HostBlocker) Blocked(host string) bool {
	if b == nil || b.svc == nil {
		return false
	}
	_, err := b.svc.Get(blockKey(host))
	return err == nil
}

// Block marks host as rate limited for the configured block time
func (b *HostBlocker) Block(host string) error {
	if b == nil || b.svc == nil || b.blockTime <= 0 {
		return nil
	}
	seconds := strconv.Itoa(int(b.blockTime / time.Second))
	return b.svc.Set(blockKey(host), []byte(seconds), b.blockTime)
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process CacheService used when no memcached is configured
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (m *MemoryCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		delete(m.items, key)
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (m *MemoryCache) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := memoryItem{value: value}
	if expiration > 0 {
		item.expiresAt = m.now().Add(expiration)
	}
	m.items[key] = item
	return nil
}

func (m *MemoryCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}
