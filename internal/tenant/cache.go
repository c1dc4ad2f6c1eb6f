package tenant

import (
	"container/list"
	"database/sql"
	"sync"
)

// engineCacheSize bounds the number of live tenant pools held by a process.
// Eviction is a safety valve against a runaway number of distinct tenants,
// not a lifecycle mechanism: entries normally live for the whole process.
const engineCacheSize = 256

// engineCache is a capacity-bounded LRU of connection pools keyed by tenant
// database name.
type engineCache struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key string
	db  *sql.DB
}

func newEngineCache(capacity int) *engineCache {
	if capacity <= 0 {
		capacity = engineCacheSize
	}
	return &engineCache{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[string]*list.Element),
	}
}

// get returns the cached pool for key, promoting it to most recently used.
func (c *engineCache) get(key string) (*sql.DB, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).db, true
}

// add inserts a pool for key. If the key is already present the existing
// pool wins and add returns it with kept=false, so racing constructors can
// discard their duplicate. The evicted pool, if any, is returned for closing.
func (c *engineCache) add(key string, db *sql.DB) (winner *sql.DB, kept bool, evicted *sql.DB) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*cacheEntry).db, false, nil
	}

	el := c.ll.PushFront(&cacheEntry{key: key, db: db})
	c.items[key] = el

	if c.ll.Len() > c.cap {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			entry := oldest.Value.(*cacheEntry)
			delete(c.items, entry.key)
			evicted = entry.db
		}
	}
	return db, true, evicted
}

// len reports the number of cached pools.
func (c *engineCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// closeAll closes every cached pool. Used on shutdown.
func (c *engineCache) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, el := range c.items {
		el.Value.(*cacheEntry).db.Close()
	}
	c.items = make(map[string]*list.Element)
	c.ll.Init()
}
