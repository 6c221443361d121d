// ABOUTME: Parse cache for snapshot files
// ABOUTME: Reuses a parsed table while the file's modification time is unchanged
package dataset

import (
	"sync"
	"time"
)

type cacheEntry struct {
	mtime time.Time
	rows  []map[string]string
}

// Cache keys parsed snapshot tables by (path, mtime). Reuse is an
// optimization only; a changed mtime always triggers a re-parse.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: map[string]cacheEntry{}}
}

// Get returns the cached raw rows for path, or nil when the file has not
// been parsed at this mtime.
func (c *Cache) Get(path string, mtime time.Time) []map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[path]
	if !ok || !entry.mtime.Equal(mtime) {
		return nil
	}
	return entry.rows
}

func (c *Cache) Put(path string, mtime time.Time, rows []map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{mtime: mtime, rows: rows}
}

// Invalidate drops every cached table, forcing the next load to re-parse.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cacheEntry{}
}
