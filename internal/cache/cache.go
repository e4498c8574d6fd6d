package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultTTL is how long report and balance figures stay valid when nothing
// invalidates them earlier.
const DefaultTTL = 15 * time.Minute

// DefaultMaxSize bounds the number of entries per cache.
const DefaultMaxSize = 4096

var hits = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "firefly_cache_hits_total",
		Help: "How many cache lookups were answered from the cache, partitioned by cache name.",
	},
	[]string{"cache"},
)

var misses = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "firefly_cache_misses_total",
		Help: "How many cache lookups had to recompute, partitioned by cache name.",
	},
	[]string{"cache"},
)

// RegisterMetrics registers the cache metrics with the default
// Prometheus registry.
func RegisterMetrics() error {
	for _, c := range []prometheus.Collector{hits, misses} {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// Cache is an LRU cache with TTL, keyed by composite Properties.
type Cache[T any] struct {
	mu      sync.Mutex
	name    string
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type item[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// New returns a Cache with the default size and TTL. The name partitions
// the hit/miss metrics.
func New[T any](name string) *Cache[T] {
	return NewWithConfig[T](name, DefaultMaxSize, DefaultTTL)
}

// NewWithConfig returns a Cache with explicit size and TTL.
func NewWithConfig[T any](name string, maxSize int, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		name:    name,
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Has reports whether a live entry exists for the properties.
func (c *Cache[T]) Has(p *Properties) bool {
	_, ok := c.Get(p)
	return ok
}

// Get retrieves a value from the cache.
func (c *Cache[T]) Get(p *Properties) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[p.Key()]
	if !exists {
		misses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	entry := elem.Value.(*item[T])

	if time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		misses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	c.lru.MoveToFront(elem)
	hits.WithLabelValues(c.name).Inc()
	return entry.data, true
}

// Store saves a value in the cache.
func (c *Cache[T]) Store(p *Properties, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := p.Key()
	entry := &item[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = entry
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(entry)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Invalidate drops all entries. It is called when any mutating write marks
// the cached figures dirty.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru = list.New()
}

// Size returns the current number of items in the cache.
func (c *Cache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[T]) removeElement(elem *list.Element) {
	entry := elem.Value.(*item[T])
	delete(c.items, entry.key)
	c.lru.Remove(elem)
}
