package store

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	payload Payload
	expires time.Time
}

// Memory is an in-process Backend. Expired entries are dropped lazily on
// read and in bulk by Sweep.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]memEntry
	closed bool
	now    func() time.Time
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]memEntry),
		now:   time.Now,
	}
}

// Put stores p under key until ttl elapses. A non-positive ttl never expires.
func (m *Memory) Put(ctx context.Context, key string, p Payload, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	e := memEntry{payload: p}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.items[key] = e
	return nil
}

// Get returns the live entry for key.
func (m *Memory) Get(ctx context.Context, key string) (Payload, bool, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return Payload{}, false, ErrClosed
	}
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return Payload{}, false, nil
	}
	if m.expired(e) {
		m.mu.Lock()
		if cur, still := m.items[key]; still && m.expired(cur) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return Payload{}, false, nil
	}
	return e.payload, true, nil
}

// Sweep drops every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, e := range m.items {
		if m.expired(e) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close releases all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.items = nil
	return nil
}

func (m *Memory) expired(e memEntry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}
