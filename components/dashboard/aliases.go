package dashboard

import (
	"strings"
	"sync"
	"time"
)

// ColumnAliases maps raw attribute names to human readable labels.
type ColumnAliases map[string]string

// Label returns the alias for attr, falling back to the raw name. Lookups try
// an exact match first and then a case-insensitive one.
func (a ColumnAliases) Label(attr string) string {
	if len(a) == 0 {
		return attr
	}
	if label := strings.TrimSpace(a[attr]); label != "" {
		return label
	}
	for key, label := range a {
		if strings.EqualFold(key, attr) && strings.TrimSpace(label) != "" {
			return strings.TrimSpace(label)
		}
	}
	return attr
}

// AliasCache is an in-memory TTL cache of column aliases keyed by project.
// Failed fetches are never cached.
type AliasCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedAliases
}

type cachedAliases struct {
	aliases ColumnAliases
	expires time.Time
}

// NewAliasCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewAliasCache(ttl time.Duration) *AliasCache {
	return &AliasCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedAliases),
	}
}

// GetOrFetch returns a cached entry or fetches and stores a new one.
func (c *AliasCache) GetOrFetch(project string, fetch func() (ColumnAliases, error)) (ColumnAliases, error) {
	if aliases, ok := c.get(project); ok {
		return aliases, nil
	}
	aliases, err := fetch()
	if err != nil {
		return nil, err
	}
	c.set(project, aliases)
	return aliases, nil
}

// Invalidate drops the entry for a project.
func (c *AliasCache) Invalidate(project string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, project)
	c.mu.Unlock()
}

func (c *AliasCache) get(project string) (ColumnAliases, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[project]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, project)
			c.mu.Unlock()
		}
		return nil, false
	}
	return entry.aliases, true
}

func (c *AliasCache) set(project string, aliases ColumnAliases) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[project] = cachedAliases{
		aliases: aliases,
		expires: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}
