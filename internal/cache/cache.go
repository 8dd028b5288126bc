// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache stores sanitized pages keyed by URL.
type Cache interface {
	// Get returns the cached page and whether it was present and fresh.
	Get(key string) (*models.Page, bool)

	// Set stores a page with the given TTL, replacing any previous entry.
	Set(key string, page *models.Page, ttl time.Duration) error

	// Delete removes an entry. Missing keys are not an error.
	Delete(key string) error

	// Close stops background work.
	Close()
}

// entryOverhead approximates the bookkeeping cost of one entry.
const entryOverhead = 512

type cacheEntry struct {
	page      *models.Page
	expiresAt time.Time
	key       string
	size      int64
}

// MemoryCache is an in-memory page cache with LRU eviction bounded by size.
type MemoryCache struct {
	store   map[string]*list.Element
	lruList *list.List
	mu      sync.Mutex
	maxSize int64
	size    int64
	cancel  context.CancelFunc
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates a new in-memory cache with LRU eviction
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 64 * 1024 * 1024
	}

	ctx, cancel := context.WithCancel(context.Background())

	mc := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		cancel:  cancel,
	}

	go mc.cleanupExpired(ctx, time.Minute)

	return mc
}

// Get retrieves a cached page and marks it most recently used.
func (mc *MemoryCache) Get(key string) (*models.Page, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		return nil, false
	}

	entry := element.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		mc.misses++
		mc.removeElement(element)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++

	log.Debug().Str("url", key).Msg("Page cache hit")
	return entry.page, true
}

// Set stores a page with TTL, evicting least recently used pages when full.
func (mc *MemoryCache) Set(key string, page *models.Page, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry := &cacheEntry{
		page:      page,
		expiresAt: time.Now().Add(ttl),
		key:       key,
		size:      int64(len(page.HTML)+len(page.URL)) + entryOverhead,
	}

	if element, exists := mc.store[key]; exists {
		mc.size -= element.Value.(*cacheEntry).size
		element.Value = entry
		mc.lruList.MoveToFront(element)
		mc.size += entry.size
		return nil
	}

	for mc.size+entry.size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	mc.store[key] = mc.lruList.PushFront(entry)
	mc.size += entry.size

	log.Debug().
		Str("url", key).
		Dur("ttl", ttl).
		Int64("size_bytes", entry.size).
		Msg("Cached page")

	return nil
}

// Delete removes a cached page
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.removeElement(element)
	}
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// Stats reports entry count, size and hit counters.
func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	return Stats{
		Entries: mc.lruList.Len(),
		Size:    mc.size,
		MaxSize: mc.maxSize,
		Hits:    mc.hits,
		Misses:  mc.misses,
	}
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int
	Size    int64
	MaxSize int64
	Hits    uint64
	Misses  uint64
}

// HitRate returns the percentage of lookups served from cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// evictLRU must be called with the lock held.
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}
	log.Debug().Str("url", element.Value.(*cacheEntry).key).Msg("Evicted page from cache")
	mc.removeElement(element)
}

// removeElement must be called with the lock held.
func (mc *MemoryCache) removeElement(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.key)
	mc.size -= entry.size
}

func (mc *MemoryCache) cleanupExpired(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				if now.After(element.Value.(*cacheEntry).expiresAt) {
					mc.removeElement(element)
				}
			}
			mc.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
