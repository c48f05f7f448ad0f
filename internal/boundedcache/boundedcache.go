// Package boundedcache provides the capacity-bounded concurrent map that backs
// the type-level caches in this module. Eviction is deliberately approximate:
// when a cache reaches capacity, roughly a quarter of its entries are dropped
// in enumeration order. Distinct runtime types are finite and small in
// practice, so churn is rare and access-time bookkeeping is not worth its cost.
package boundedcache

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Map is a concurrency-safe map holding at most Capacity entries.
// All methods are safe for unlimited concurrent callers. Trim and Store are
// not atomic as a whole; a reader may observe a freshly trimmed, not yet
// refilled map. Callers treat that as an ordinary miss.
type Map[K comparable, V any] struct {
	capacity int
	entries  *xsync.MapOf[K, V]
}

// New creates a Map bounded to the given capacity. Capacity must be
// positive; callers validate configuration before construction.
func New[K comparable, V any](capacity int) *Map[K, V] {
	return &Map[K, V]{
		capacity: capacity,
		entries:  xsync.NewMapOf[K, V](),
	}
}

// Load returns the value stored for key, if any.
func (m *Map[K, V]) Load(key K) (V, bool) {
	return m.entries.Load(key)
}

// Store inserts or replaces the value for key. It does not trim; callers
// coordinate trimming across related caches via AtCapacity and TrimQuarter.
func (m *Map[K, V]) Store(key K, value V) {
	m.entries.Store(key, value)
}

// Len returns the current number of entries.
func (m *Map[K, V]) Len() int {
	return m.entries.Size()
}

// Capacity returns the configured capacity bound.
func (m *Map[K, V]) Capacity() int {
	return m.capacity
}

// AtCapacity reports whether the map has reached its capacity bound.
func (m *Map[K, V]) AtCapacity() bool {
	return m.entries.Size() >= m.capacity
}

// TrimQuarter removes roughly a quarter of the configured capacity, taking
// entries in enumeration order, and returns how many were removed. At least
// one entry is removed when the map is non-empty.
func (m *Map[K, V]) TrimQuarter() int {
	target := m.capacity / 4
	if target < 1 {
		target = 1
	}

	removed := 0
	m.entries.Range(func(key K, _ V) bool {
		m.entries.Delete(key)
		removed++
		return removed < target
	})
	return removed
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.entries.Clear()
}
