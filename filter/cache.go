package filter

import (
	"container/list"
	"sync"
)

// lruCache keeps the most recently used compiled programs. It never stores
// evaluation results.
type lruCache struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	mu        sync.Mutex
}

type entry struct {
	key    string
	filter *exprFilter
}

func newLRUCache(size int) *lruCache {
	return &lruCache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}
}

// Get returns the cached filter for key and marks it recently used
func (c *lruCache) Get(key string) (*exprFilter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, exists := c.items[key]
	if !exists {
		return nil, false
	}
	c.evictList.MoveToFront(node)
	return node.Value.(*entry).filter, true
}

// Put adds or replaces the filter for key, evicting the oldest entry when full
func (c *lruCache) Put(key string, filter *exprFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, exists := c.items[key]; exists {
		c.evictList.MoveToFront(node)
		node.Value.(*entry).filter = filter
		return
	}

	c.items[key] = c.evictList.PushFront(&entry{key: key, filter: filter})

	if c.evictList.Len() > c.size {
		oldest := c.evictList.Back()
		if oldest != nil {
			c.evictList.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Size returns the number of items in the cache
func (c *lruCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictList.Len()
}
