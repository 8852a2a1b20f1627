package pdf

import (
	"os"
	"sync"
	"time"

	"github.com/a3tai/pdfgraph/internal/pdf/document"
)

// DefaultCacheSize is how many assembled documents a Service keeps
const DefaultCacheSize = 16

// docKey identifies one version of a file on disk. A rewrite changes the
// size or modification time and so misses the cache.
type docKey struct {
	path    string
	size    int64
	modTime time.Time
}

func newDocKey(path string, info os.FileInfo) docKey {
	return docKey{path: path, size: info.Size(), modTime: info.ModTime()}
}

type cachedDoc struct {
	doc  *document.Document
	data []byte
	info os.FileInfo
}

// lruCache is a thread-safe least recently used cache
type lruCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*lruNode[K, V]
	head     *lruNode[K, V] // sentinel, head.next is most recently used
	tail     *lruNode[K, V] // sentinel, tail.prev is least recently used
	hits     int64
	misses   int64
}

type lruNode[K comparable, V any] struct {
	key        K
	value      V
	prev, next *lruNode[K, V]
}

func newLRUCache[K comparable, V any](capacity int) *lruCache[K, V] {
	c := &lruCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*lruNode[K, V]),
		head:     &lruNode[K, V]{},
		tail:     &lruNode[K, V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key and marks it most recently used
func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		c.unlink(node)
		c.pushFront(node)
		c.hits++
		return node.value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// Put stores value, evicting the least recently used entry when full. A
// cache with capacity zero stores nothing.
func (c *lruCache[K, V]) Put(key K, value V) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		node.value = value
		c.unlink(node)
		c.pushFront(node)
		return
	}

	node := &lruNode[K, V]{key: key, value: value}
	c.pushFront(node)
	c.items[key] = node
	if len(c.items) > c.capacity {
		lru := c.tail.prev
		c.unlink(lru)
		delete(c.items, lru.key)
	}
}

// Len returns the number of cached entries
func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats reports hit and miss counters
func (c *lruCache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{Hits: c.hits, Misses: c.misses, Size: len(c.items), Capacity: c.capacity}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total) * 100
	}
	return stats
}

func (c *lruCache[K, V]) pushFront(node *lruNode[K, V]) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *lruCache[K, V]) unlink(node *lruNode[K, V]) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

// CacheStats describes the document cache
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
	Size     int     `json:"current_size"`
	Capacity int     `json:"max_capacity"`
}
