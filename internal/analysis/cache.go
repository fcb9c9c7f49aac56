package analysis

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"lectic/internal/markdown"
)

// Snapshot pairs one document version with its scan and bundle.
type Snapshot struct {
	URI     string
	Version int
	Text    string
	Doc     *markdown.Document
	Bundle  *Bundle
}

// Analyze scans and indexes text.
func Analyze(uri string, version int, text string) *Snapshot {
	doc := markdown.Parse(text)
	return &Snapshot{
		URI:     uri,
		Version: version,
		Text:    text,
		Doc:     doc,
		Bundle:  Build(doc, text),
	}
}

type cacheKey struct {
	uri     string
	version int
}

// Cache keeps recent snapshots keyed by (uri, version).
type Cache struct {
	entries *lru.Cache[cacheKey, *Snapshot]
}

// NewCache creates a cache holding up to size snapshots.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = 64
	}
	entries, err := lru.New[cacheKey, *Snapshot](size)
	if err != nil {
		panic(err)
	}
	return &Cache{entries: entries}
}

// Get returns the snapshot for (uri, version), building it from text when
// absent. A cached snapshot whose text differs is rebuilt.
func (c *Cache) Get(uri string, version int, text string) *Snapshot {
	key := cacheKey{uri: uri, version: version}
	if snap, ok := c.entries.Get(key); ok && snap.Text == text {
		return snap
	}
	c.Forget(uri)
	snap := Analyze(uri, version, text)
	c.entries.Add(key, snap)
	return snap
}

// Forget drops every snapshot of uri.
func (c *Cache) Forget(uri string) {
	for _, key := range c.entries.Keys() {
		if key.uri == uri {
			c.entries.Remove(key)
		}
	}
}

// Len reports the number of cached snapshots.
func (c *Cache) Len() int {
	return c.entries.Len()
}
