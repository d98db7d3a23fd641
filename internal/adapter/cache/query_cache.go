package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// QueryCache is a bounded LRU of query results keyed by (question, k).
// Entries expire after ttl and are dropped when the index is replaced.
type QueryCache[T any] struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry[T]
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
	now      func() time.Time
}

type cacheEntry[T any] struct {
	value     T
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache[T any](maxSize int, ttl time.Duration) *QueryCache[T] {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache[T]{
		entries: make(map[string]*cacheEntry[T]),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// cacheKey ignores surrounding whitespace so "reset?" and " reset? " share an entry.
func cacheKey(question string, k int) string {
	data := []byte(strings.TrimSpace(question))
	data = append(data, 0, byte(k>>24), byte(k>>16), byte(k>>8), byte(k))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache[T]) Get(question string, k int) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	key := cacheKey(question, k)
	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl || entry.indexGen != c.indexGen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return zero, false
	}

	c.moveToEnd(key)
	return entry.value, true
}

func (c *QueryCache[T]) Put(question string, k int, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(question, k, value)
}

// Generation identifies the index the cache currently serves. It changes on
// every Invalidate.
func (c *QueryCache[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexGen
}

// PutAt stores value only if the cache has not been invalidated since gen
// was read. It reports whether the value was stored.
func (c *QueryCache[T]) PutAt(gen uint64, question string, k int, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.indexGen {
		return false
	}
	c.put(question, k, value)
	return true
}

func (c *QueryCache[T]) put(question string, k int, value T) {
	key := cacheKey(question, k)
	entry := &cacheEntry[T]{
		value:     value,
		timestamp: c.now(),
		indexGen:  c.indexGen,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

// Invalidate drops every entry. Call it whenever the index changes.
func (c *QueryCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry[T])
	c.order = c.order[:0]
	c.indexGen++
}

func (c *QueryCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QueryCache[T]) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache[T]) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache[T]) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
