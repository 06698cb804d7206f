package engine

import (
	"sync"

	"github.com/goliatone/go-formfill/pkg/schema"
)

// Entry is one cached schema fetch: the immutable form plus its document
// display metadata.
type Entry struct {
	Form     schema.FormSchema
	Document schema.DocumentInfo
}

// SchemaCache caches provider fetches per form name, with each entry
// identified by the schema's name+version pair. It is an explicit object
// passed into the engine at construction; invalidation is an explicit call,
// never an ambient side effect of another operation.
type SchemaCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewSchemaCache constructs an empty cache.
func NewSchemaCache() *SchemaCache {
	return &SchemaCache{entries: make(map[string]Entry)}
}

// Get returns the cached entry for a form name.
func (c *SchemaCache) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[name]
	return entry, ok
}

// Put stores an entry under its form name.
func (c *SchemaCache) Put(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Form.Name] = entry
}

// Invalidate drops the entry for name. When version is non-empty the entry
// is only dropped if its version matches, so a stale invalidation cannot
// evict a newer schema.
func (c *SchemaCache) Invalidate(name, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[name]
	if !ok {
		return
	}
	if version != "" && entry.Form.Version != version {
		return
	}
	delete(c.entries, name)
}

// Reset drops every entry.
func (c *SchemaCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}
