package expr

import (
	"container/list"
	"sync"
)

// DefaultCacheSize is the default expression_cache_size (§6).
const DefaultCacheSize = 256

// Cache memoizes Compile results keyed by source text, bounded to a fixed
// capacity with least-recently-used eviction, so repeated BindExpression
// calls with identical source do not re-parse or re-accumulate memory.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
}

type cacheEntry struct {
	key string
	ast *AST
}

// NewCache returns a Cache bounded to capacity entries.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Compile returns a cached AST for (src, allowedVars) or compiles and
// caches a new one. The cache key is the source text alone: callers must
// not reuse a Cache across differing allowedVars for the same source text,
// which in practice never happens since a given binding site always
// compiles with its own fixed variable set.
func (c *Cache) Compile(src string, allowedVars []string) (*AST, error) {
	c.mu.Lock()
	if el, ok := c.entries[src]; ok {
		c.order.MoveToFront(el)
		ast := el.Value.(*cacheEntry).ast
		c.mu.Unlock()
		return ast, nil
	}
	c.mu.Unlock()

	ast, err := Compile(src, allowedVars)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[src]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).ast, nil
	}
	el := c.order.PushFront(&cacheEntry{key: src, ast: ast})
	c.entries[src] = el
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return ast, nil
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
