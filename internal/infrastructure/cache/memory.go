package cache

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterStore keeps one token-bucket limiter per key and evicts buckets
// that have been idle longer than ttl
type LimiterStore struct {
	mu    sync.Mutex
	items map[string]*limiterItem
	rps   float64
	burst int
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

type limiterItem struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore creates a new in-memory limiter store
func NewLimiterStore(rps float64, burst int, ttl time.Duration) *LimiterStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	store := &LimiterStore{
		items: make(map[string]*limiterItem),
		rps:   rps,
		burst: burst,
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove idle buckets
	go store.cleanupLoop(ttl)

	return store
}

// Allow reports whether one more event for key fits in its bucket
func (ls *LimiterStore) Allow(key string) bool {
	return ls.get(key).AllowN(ls.now(), 1)
}

// Len returns the number of tracked keys
func (ls *LimiterStore) Len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.items)
}

// Close stops the cleanup goroutine
func (ls *LimiterStore) Close() {
	ls.once.Do(func() { close(ls.stop) })
}

func (ls *LimiterStore) get(key string) *rate.Limiter {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	item, exists := ls.items[key]
	if !exists {
		item = &limiterItem{limiter: rate.NewLimiter(rate.Limit(ls.rps), ls.burst)}
		ls.items[key] = item
	}
	item.lastSeen = ls.now()
	return item.limiter
}

// evictIdle removes buckets not touched within ttl
func (ls *LimiterStore) evictIdle() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	cutoff := ls.now().Add(-ls.ttl)
	for key, item := range ls.items {
		if item.lastSeen.Before(cutoff) {
			delete(ls.items, key)
		}
	}
}

// cleanupLoop periodically removes idle buckets
func (ls *LimiterStore) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ls.evictIdle()
		case <-ls.stop:
			return
		}
	}
}
