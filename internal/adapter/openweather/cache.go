package openweather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/observability"
)

// CachedProvider wraps a WeatherProvider with an in-memory LRU cache keyed by
// coordinate. Keys round to four decimal places (roughly 11 m), so repeated
// uploads from the same camera reuse one provider call. Weather goes stale,
// so every entry carries its fetch time and is treated as a miss once it is
// older than the TTL.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a weather provider.
// Entries expire ttl after they were fetched.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedProvider) CurrentConditions(ctx context.Context, lat, lon float64) (domain.WeatherReading, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	now := c.clock.Now()
	if reading, ok := c.cache.get(key, now.Add(-c.ttl)); ok {
		c.metrics.WeatherCacheHits.WithLabelValues("hit").Inc()
		return reading, nil
	}
	c.metrics.WeatherCacheHits.WithLabelValues("miss").Inc()

	reading, err := c.inner.CurrentConditions(ctx, lat, lon)
	if err != nil {
		return reading, err
	}
	c.cache.put(key, reading, now)
	return reading, nil
}

// lruCache is a thread-safe LRU cache of weather readings stamped with their
// fetch time. Expiry is the caller's call: get takes the oldest acceptable
// fetch time and drops anything fetched before it.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     domain.WeatherReading
	fetchedAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

// get returns the reading for key if it was fetched at or after oldest.
// An expired entry is removed so the slot frees up immediately.
func (c *lruCache) get(key string, oldest time.Time) (domain.WeatherReading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.WeatherReading{}, false
	}
	if e.fetchedAt.Before(oldest) {
		delete(c.entries, e.key)
		c.remove(e)
		return domain.WeatherReading{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.WeatherReading, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.fetchedAt = fetchedAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, fetchedAt: fetchedAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
