package cache

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cloudify-ls.cache")

// Cache is the in-memory node type index. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	types   map[string]NodeType
	plugins map[string]Plugin

	store *Store
	ttl   time.Duration
	now   func() time.Time
}

// New returns an empty Cache. store may be nil, in which case nothing
// outlives the process. Stored plugins older than ttl are ignored; a zero ttl
// keeps them forever.
func New(store *Store, ttl time.Duration) *Cache {
	return &Cache{
		types:   make(map[string]NodeType),
		plugins: make(map[string]Plugin),
		store:   store,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Has reports whether nodeType is known.
func (c *Cache) Has(nodeType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.types[nodeType]
	return ok
}

// Lookup returns a known node type.
func (c *Cache) Lookup(nodeType string) (NodeType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[nodeType]
	return t, ok
}

// Names lists every known node type, sorted.
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.types))
}

// NamesFor lists the known node types of the given plugins, sorted.
func (c *Cache) NamesFor(plugins ...string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for name, t := range c.types {
		if slices.Contains(plugins, t.Plugin) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Imported reports whether the node types of plugin are loaded.
func (c *Cache) Imported(plugin string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.plugins[plugin]
	return ok
}

// Add replaces the node types of p and writes them through to the store.
// The in-memory index is updated even when persisting fails.
func (c *Cache) Add(p Plugin, types []NodeType) error {
	if p.FetchedAt.IsZero() {
		p.FetchedAt = c.now()
	}
	c.put(p, types)
	if c.store == nil {
		return nil
	}
	if err := c.store.PutPlugin(p, types); err != nil {
		return fmt.Errorf("failed to persist node types of %s: %w", p.Name, err)
	}
	return nil
}

// Restore loads the node types of plugin from the store. It reports false
// when the store has nothing usable: no store, no record, or a record older
// than the ttl.
func (c *Cache) Restore(plugin string) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	p, types, err := c.store.LoadPlugin(plugin)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && c.now().Sub(p.FetchedAt) > c.ttl {
		log.Debugf("stored node types of %s are stale (fetched %s)", plugin, p.FetchedAt.Format(time.RFC3339))
		return false, nil
	}
	c.put(p, types)
	return true, nil
}

func (c *Cache) put(p Plugin, types []NodeType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, t := range c.types {
		if t.Plugin == p.Name {
			delete(c.types, name)
		}
	}
	for _, t := range types {
		t.Plugin, t.Version = p.Name, p.Version
		c.types[t.Type] = t
	}
	c.plugins[p.Name] = p
	log.Infof("loaded %d node types of %s %s", len(types), p.Name, p.Version)
}
