package format

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sprite-ai/revchat/internal/model"
)

// DefaultCapacity is the number of formatted replies kept by a Cache.
const DefaultCapacity = 100

type cacheKey struct {
	content string
	mode    model.AgentMode
}

// Cache memoizes Segments per (content, mode) with strict FIFO eviction.
//
// Entries are only ever read with Peek and written once with Add, so the
// underlying recency list is the insertion order and the oldest inserted
// entry is the one evicted.
type Cache struct {
	mu      sync.Mutex // serializes the miss path
	entries *lru.Cache[cacheKey, []model.Segment]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache returns a cache holding at most capacity entries. A non-positive
// capacity uses DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[cacheKey, []model.Segment](capacity)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{entries: entries}
}

// Get returns the segments for content in mode, computing and storing them
// on a miss. The returned slice is shared and must not be modified.
func (c *Cache) Get(content string, mode model.AgentMode) []model.Segment {
	key := cacheKey{content: content, mode: mode}
	if segs, ok := c.entries.Peek(key); ok {
		c.hits.Add(1)
		return segs
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if segs, ok := c.entries.Peek(key); ok {
		c.hits.Add(1)
		return segs
	}
	c.misses.Add(1)
	segs := Segments(content, mode)
	c.entries.Add(key, segs)
	return segs
}

// Contains reports whether (content, mode) is cached, without affecting order.
func (c *Cache) Contains(content string, mode model.AgentMode) bool {
	return c.entries.Contains(cacheKey{content: content, mode: mode})
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns the hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
