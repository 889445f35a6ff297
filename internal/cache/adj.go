package cache

import (
	"container/list"
	"sync"

	"github.com/atharv3903/navpath/internal/model"
)

// DefaultAdjCapacity bounds an adjacency cache built without an explicit size.
const DefaultAdjCapacity = 2048

// AdjStats counts cache traffic since creation or the last Clear.
type AdjStats struct {
	Gets      int `json:"gets"`
	Hits      int `json:"hits"`
	Puts      int `json:"puts"`
	Evictions int `json:"evictions"`
	Size      int `json:"size"`
}

type arcsEntry struct {
	node string
	arcs []model.Arc
}

// AdjCache keeps the usable arcs of recently expanded nodes, dropping the
// least recently touched node once capacity is reached. Safe for
// concurrent use; searches over one graph share a single cache.
type AdjCache struct {
	mu       sync.Mutex
	capacity int
	byNode   map[string]*list.Element
	order    *list.List // front is most recent
	stats    AdjStats   // Size is filled in by Stats
}

func NewAdjCache() *AdjCache {
	return NewAdjCacheWithCap(DefaultAdjCapacity)
}

// NewAdjCacheWithCap sizes the cache to capacity nodes; zero or less means
// DefaultAdjCapacity.
func NewAdjCacheWithCap(capacity int) *AdjCache {
	if capacity <= 0 {
		capacity = DefaultAdjCapacity
	}
	return &AdjCache{
		capacity: capacity,
		byNode:   make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the arcs cached for node and marks it recently used.
func (c *AdjCache) Get(node string) ([]model.Arc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Gets++
	el, ok := c.byNode[node]
	if !ok {
		return nil, false
	}
	c.stats.Hits++
	c.order.MoveToFront(el)
	return el.Value.(*arcsEntry).arcs, true
}

// GetOrLoad returns the list cached for node, filling it from load on a
// miss. load runs without the lock held, so concurrent misses on one node
// may each call it; the last Put wins.
func (c *AdjCache) GetOrLoad(node string, load func() []model.Arc) []model.Arc {
	if v, ok := c.Get(node); ok {
		return v
	}
	v := load()
	c.Put(node, v)
	return v
}

func (c *AdjCache) Put(node string, arcs []model.Arc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Puts++
	if el, ok := c.byNode[node]; ok {
		el.Value.(*arcsEntry).arcs = arcs
		c.order.MoveToFront(el)
		return
	}
	c.byNode[node] = c.order.PushFront(&arcsEntry{node: node, arcs: arcs})
	for c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// evictOldest requires c.mu.
func (c *AdjCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.byNode, el.Value.(*arcsEntry).node)
	c.stats.Evictions++
}

// Invalidate forgets node; counters are untouched.
func (c *AdjCache) Invalidate(node string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.byNode[node]; ok {
		c.order.Remove(el)
		delete(c.byNode, node)
	}
}

// Clear empties the cache and zeroes its counters.
func (c *AdjCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byNode = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	c.stats = AdjStats{}
}

func (c *AdjCache) Stats() AdjStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}
