// Package cache provides an in-memory LRU cache with TTL for registry
// metadata responses.
//
// Provider adapters cache raw registry documents here so that a resolve
// walk touching the same package through multiple paths, or repeated
// resolves in one session, does not re-query the registry.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/unipkg/unipkg/observability"
)

// entry is a cached value with expiry.
type entry struct {
	key    string
	value  []byte
	expiry time.Time
}

func (e *entry) expired() bool {
	return time.Now().After(e.expiry)
}

// Memory is an LRU cache with per-entry TTL.
type Memory struct {
	name       string
	maxEntries int

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
}

// NewMemory creates a new LRU memory cache. The name labels hit/miss
// metrics.
func NewMemory(name string, maxEntries int) *Memory {
	return &Memory{
		name:       name,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
	}
}

// Get retrieves a value. Returns (nil, false) when missing or expired.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		observability.CacheMissesTotal.WithLabelValues(m.name).Inc()
		return nil, false
	}

	ent := elem.Value.(*entry)
	if ent.expired() {
		m.removeElement(elem)
		observability.CacheMissesTotal.WithLabelValues(m.name).Inc()
		return nil, false
	}

	m.lru.MoveToFront(elem)
	observability.CacheHitsTotal.WithLabelValues(m.name).Inc()

	// Copy so callers cannot mutate the cached document.
	value := make([]byte, len(ent.value))
	copy(value, ent.value)
	return value, true
}

// Set adds or updates a value with the given TTL.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiry = time.Now().Add(ttl)
		m.lru.MoveToFront(elem)
		return
	}

	elem := m.lru.PushFront(&entry{
		key:    key,
		value:  value,
		expiry: time.Now().Add(ttl),
	})
	m.entries[key] = elem

	for m.lru.Len() > m.maxEntries {
		if back := m.lru.Back(); back != nil {
			m.removeElement(back)
		}
	}
}

// Delete removes a key.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		m.removeElement(elem)
	}
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*list.Element)
	m.lru = list.New()
}

// Len returns the number of cached entries, including expired ones not yet
// evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// removeElement removes an element. Caller must hold the lock.
func (m *Memory) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(m.entries, ent.key)
	m.lru.Remove(elem)
}
