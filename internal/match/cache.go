package match

import (
	"container/list"
	"sync"
)

// MatcherCache is an LRU cache of compiled keyword specs keyed by the raw
// spec string. Parsing is pure and referentially stable for a given spec,
// so a changed spec misses the cache by key and no explicit invalidation
// is needed. The cache is an optimization, not a correctness requirement.
type MatcherCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type matcherEntry struct {
	key     string
	matcher *Matcher
	dropped []string
}

// NewMatcherCache creates a new cache with the given capacity.
func NewMatcherCache(capacity int) *MatcherCache {
	return &MatcherCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the compiled matcher for spec, parsing and caching it on a
// miss. hit reports whether the matcher came from the cache; dropped lists
// the spec tokens discarded for regex compile failure.
func (c *MatcherCache) Get(spec string) (m *Matcher, dropped []string, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[spec]; ok {
		c.lru.MoveToFront(elem)
		entry := elem.Value.(*matcherEntry)
		return entry.matcher, entry.dropped, true
	}

	m, dropped = ParseKeywordSpec(spec)
	elem := c.lru.PushFront(&matcherEntry{key: spec, matcher: m, dropped: dropped})
	c.cache[spec] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*matcherEntry).key)
		}
	}
	return m, dropped, false
}

// Len returns the number of cached specs.
func (c *MatcherCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
