package cache

import "sync"

type RouteKey struct {
	Src, Dst string
	Algo     string
	Epoch    uint64
}

// Route is a cached search outcome. Only found paths are cached.
type Route struct {
	Path  []string
	Total float64
}

// RouteCache memoizes searches per graph epoch. Bumping the epoch on
// reload leaves older keys unreachable; Reset drops them.
type RouteCache struct {
	mu    sync.RWMutex
	epoch uint64
	m     map[RouteKey]Route
}

func NewRouteCache() *RouteCache {
	return &RouteCache{m: make(map[RouteKey]Route)}
}

func (c *RouteCache) Get(k RouteKey) (Route, bool) {
	c.mu.RLock()
	v, ok := c.m[k]
	c.mu.RUnlock()
	return v, ok
}

func (c *RouteCache) Put(k RouteKey, r Route) {
	c.mu.Lock()
	c.m[k] = r
	c.mu.Unlock()
}

// PutIfCurrent stores r only while k belongs to the current epoch, so a
// search that outlived a reload cannot leave an entry nothing will purge.
func (c *RouteCache) PutIfCurrent(k RouteKey, r Route) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if k.Epoch != c.epoch {
		return false
	}
	c.m[k] = r
	return true
}

func (c *RouteCache) Len() int {
	c.mu.RLock()
	n := len(c.m)
	c.mu.RUnlock()
	return n
}

func (c *RouteCache) Epoch() uint64 {
	c.mu.RLock()
	e := c.epoch
	c.mu.RUnlock()
	return e
}

// BumpEpoch advances the epoch, drops entries of earlier epochs and
// returns the new epoch.
func (c *RouteCache) BumpEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for k := range c.m {
		if k.Epoch < c.epoch {
			delete(c.m, k)
		}
	}
	return c.epoch
}

// Reset drops every entry but keeps the epoch.
func (c *RouteCache) Reset() {
	c.mu.Lock()
	c.m = make(map[RouteKey]Route)
	c.mu.Unlock()
}
