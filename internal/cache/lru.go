package cache

import (
	"sync"

	"github.com/hupe1980/skycat/internal/resource"
)

// node is an element of the intrusive recency list. The list is circular
// with a sentinel; sentinel.next is the most recently used block.
type node struct {
	key        Key
	data       []byte
	prev, next *node
}

// LRU is a byte-bounded least-recently-used block cache.
type LRU struct {
	mu       sync.Mutex
	capacity int64
	rc       *resource.Controller
	nodes    map[Key]*node
	sentinel node
	stats    Stats
}

var _ BlockCache = (*LRU)(nil)

// NewLRU returns a cache holding at most capacity bytes. rc may be nil.
func NewLRU(capacity int64, rc *resource.Controller) *LRU {
	c := &LRU{
		capacity: capacity,
		rc:       rc,
		nodes:    make(map[Key]*node),
	}
	c.sentinel.prev = &c.sentinel
	c.sentinel.next = &c.sentinel
	return c
}

// Get returns a cached block and marks it most recently used.
func (c *LRU) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	c.unlink(n)
	c.pushFront(n)
	return n.data, true
}

// Add inserts a block, evicting least recently used blocks to make room.
// Blocks are immutable, so re-adding a cached key only refreshes recency.
func (c *LRU) Add(key Key, b []byte) {
	size := int64(len(b))
	if size == 0 || size > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.nodes[key]; ok {
		c.unlink(n)
		c.pushFront(n)
		return
	}

	for c.stats.Bytes+size > c.capacity && c.sentinel.prev != &c.sentinel {
		c.evict(c.sentinel.prev)
	}
	if !c.rc.Reserve(size) {
		return
	}

	n := &node{key: key, data: b}
	c.nodes[key] = n
	c.pushFront(n)
	c.stats.Blocks++
	c.stats.Bytes += size
}

// Stats returns a snapshot of the counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *LRU) evict(n *node) {
	c.unlink(n)
	delete(c.nodes, n.key)
	size := int64(len(n.data))
	c.stats.Blocks--
	c.stats.Bytes -= size
	c.stats.Evictions++
	c.rc.Release(size)
}

func (c *LRU) unlink(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (c *LRU) pushFront(n *node) {
	n.prev = &c.sentinel
	n.next = c.sentinel.next
	c.sentinel.next.prev = n
	c.sentinel.next = n
}
