// Package cache implements the process-local read-side snapshot backing the
// HTTP read API: a flat filename → Page map, cloned on every read so that
// callers never observe live mutation.
package cache

import "git.home.luguber.info/inful/pagesync/internal/page"

// Cache is not concurrency-safe on its own; the sync orchestrator holds it
// behind a sync.RWMutex, mirroring the manifest's lock discipline.
type Cache struct {
	pages map[string]page.Page
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{pages: make(map[string]page.Page)}
}

// Insert stores or replaces the entry for p.Filename.
func (c *Cache) Insert(p page.Page) {
	c.pages[p.Filename] = p
}

// Remove deletes the entry for filename, if any.
func (c *Cache) Remove(filename string) {
	delete(c.pages, filename)
}

// GetByFilename returns the page stored for filename, if any. The returned
// Page is an independent copy; mutating it (including its Tags slice) does
// not affect the cache.
func (c *Cache) GetByFilename(filename string) (page.Page, bool) {
	p, ok := c.pages[filename]
	if !ok {
		return page.Page{}, false
	}
	return p.Clone(), true
}

// SnapshotAll returns an independent copy of every page currently cached.
// Order is not guaranteed.
func (c *Cache) SnapshotAll() []page.Page {
	out := make([]page.Page, 0, len(c.pages))
	for _, p := range c.pages {
		out = append(out, p.Clone())
	}
	return out
}

// Len returns the number of cached pages.
func (c *Cache) Len() int {
	return len(c.pages)
}
