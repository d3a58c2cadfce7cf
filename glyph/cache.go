package glyph

import (
	"sync"

	"github.com/gogpu/textmesh/font"
)

// CacheKey uniquely identifies a cached glyph mesh. Meshes are built in
// font design units, so the key carries no size component.
type CacheKey struct {
	// FontID is the unique identifier of the font source.
	FontID uint64

	// GID is the glyph index within the font.
	GID font.GlyphID
}

// defaultCacheEntries is the default cache capacity.
const defaultCacheEntries = 4096

// cacheEntry is an internal cache entry on the LRU list.
type cacheEntry struct {
	key  CacheKey
	mesh *Mesh

	prev *cacheEntry
	next *cacheEntry
}

// Cache is a thread-safe LRU cache for glyph meshes. Correctness never
// depends on it: a miss just rebuilds the mesh from the outline.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu sync.Mutex

	entries    map[CacheKey]*cacheEntry
	head, tail *cacheEntry // head is most recently used
	maxEntries int

	hits   uint64
	misses uint64
}

// NewCache creates a mesh cache holding up to maxEntries meshes.
// maxEntries <= 0 selects the default capacity.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &Cache{
		entries:    make(map[CacheKey]*cacheEntry),
		maxEntries: maxEntries,
	}
}

// Get returns the cached mesh for key. The bool reports presence: a glyph
// with no outline may legitimately cache a nil mesh.
func (c *Cache) Get(key CacheKey) (*Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.moveToFront(e)
	return e.mesh, true
}

// Put stores a mesh, evicting the least recently used entry when full.
func (c *Cache) Put(key CacheKey, mesh *Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.mesh = mesh
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, mesh: mesh}
	c.entries[key] = e
	c.pushFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[CacheKey]*cacheEntry)
	c.head = nil
	c.tail = nil
}

func (c *Cache) pushFront(e *cacheEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) moveToFront(e *cacheEntry) {
	if c.head == e {
		return
	}
	// unlink
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if c.tail == e {
		c.tail = e.prev
	}
	c.pushFront(e)
}

func (c *Cache) evictTail() {
	e := c.tail
	if e == nil {
		return
	}
	if e.prev != nil {
		e.prev.next = nil
	}
	c.tail = e.prev
	if c.head == e {
		c.head = nil
	}
	delete(c.entries, e.key)
}
