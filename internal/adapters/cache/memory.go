package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/pkg/metrics"
)

// node is one cached entry in the insertion-ordered list.
type node struct {
	key     string
	value   analysis.Classification
	expires time.Time
	prev    *node
	next    *node
}

// reset clears the node state for reuse.
func (n *node) reset() {
	*n = node{}
}

// Memory is a bounded in-process cache. When full, the oldest entry is
// evicted. Entries past their TTL are dropped on access.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node // newest
	tail     *node // oldest
	maxSize  int
	ttl      time.Duration
	size     atomic.Int64
	nodePool sync.Pool
	now      func() time.Time
	metrics  *metrics.Manager
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithMaxSize bounds the number of entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxSize = n
		}
	}
}

// WithTTL sets how long entries stay valid. Zero keeps them until evicted.
func WithTTL(d time.Duration) MemoryOption {
	return func(m *Memory) {
		if d >= 0 {
			m.ttl = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithMemoryMetrics records hits and misses on mm.
func WithMemoryMetrics(mm *metrics.Manager) MemoryOption {
	return func(m *Memory) {
		m.metrics = mm
	}
}

// NewMemory creates a Memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*node),
		maxSize: 10_000,
		now:     time.Now,
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return m
}

// Backend implements Cache.
func (m *Memory) Backend() string { return "memory" }

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (analysis.Classification, bool) {
	m.mu.Lock()
	n, ok := m.entries[key]
	if ok && !n.expires.IsZero() && !m.now().Before(n.expires) {
		m.remove(n)
		ok = false
	}
	var v analysis.Classification
	if ok {
		v = n.value
	}
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordCache(m.Backend(), ok)
	}
	return v, ok
}

// Set implements Cache. Setting an existing key refreshes its value and age.
func (m *Memory) Set(_ context.Context, key string, c analysis.Classification) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, ok := m.entries[key]; ok {
		m.remove(n)
	}
	if len(m.entries) >= m.maxSize {
		m.remove(m.tail)
	}

	n := m.nodePool.Get().(*node)
	n.key = key
	n.value = c
	if m.ttl > 0 {
		n.expires = m.now().Add(m.ttl)
	}
	n.next = m.head
	if m.head != nil {
		m.head.prev = n
	}
	m.head = n
	if m.tail == nil {
		m.tail = n
	}
	m.entries[key] = n
	m.size.Add(1)
}

// Len returns the current number of entries.
func (m *Memory) Len() int64 {
	return m.size.Load()
}

// remove unlinks n. Must be called with m.mu held.
func (m *Memory) remove(n *node) {
	if n == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		m.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		m.tail = n.prev
	}
	delete(m.entries, n.key)
	n.reset()
	m.nodePool.Put(n)
	m.size.Add(-1)
}
