package audio

import (
	"fmt"

	"github.com/gopxl/beep"
	gocache "github.com/patrickmn/go-cache"
)

// renderCache stores synthesized recipes keyed by name and sample rate
// Recipes are immutable, so entries never expire
type renderCache struct {
	store *gocache.Cache
}

func newRenderCache() *renderCache {
	return &renderCache{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

func cacheKey(name string, rate int) string {
	return fmt.Sprintf("%s@%d", name, rate)
}

// get returns the cached buffer or synthesizes it on demand
// Concurrent misses may synthesize twice; the result is identical
func (c *renderCache) get(r Recipe, rate int) (*beep.Buffer, error) {
	key := cacheKey(r.Name, rate)
	if v, ok := c.store.Get(key); ok {
		return v.(*beep.Buffer), nil
	}

	buf, err := renderBuffer(r, rate)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, buf, gocache.NoExpiration)
	return buf, nil
}

// preload synthesizes every recipe in the catalog
func (c *renderCache) preload(cat *Catalog, rate int) {
	for _, r := range cat.Recipes() {
		_, _ = c.get(r, rate)
	}
}

// reset drops every entry, used when the catalog changes
func (c *renderCache) reset() {
	c.store.Flush()
}

// count returns the number of cached buffers
func (c *renderCache) count() int {
	return c.store.ItemCount()
}
