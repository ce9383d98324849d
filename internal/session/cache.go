package session

import (
	"sync"

	"listingstudio.app/studio/internal/model"
)

// Cache holds the last successful generation of one session. It never
// persists anything and holds at most one entry.
type Cache struct {
	mu    sync.RWMutex
	entry *model.ListingEntry
}

func (c *Cache) Get() (model.ListingEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return model.ListingEntry{}, false
	}
	return *c.entry, true
}

func (c *Cache) Put(entry model.ListingEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &entry
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
