package querycache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

type Memory struct {
	mu      sync.RWMutex
	entries map[Key]entry
	gens    map[Key]uint64
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[Key]entry), gens: make(map[Key]uint64), now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.put(key, value, ttl)
	m.mu.Unlock()
	return nil
}

func (m *Memory) put(key Key, value []byte, ttl time.Duration) {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
}

func (m *Memory) Generation(ctx context.Context, key Key) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[key.root()], nil
}

func (m *Memory) SetIfGeneration(ctx context.Context, key Key, value []byte, ttl time.Duration, gen uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[key.root()] != gen {
		return false, nil
	}
	m.put(key, value, ttl)
	return true, nil
}

func (m *Memory) Invalidate(ctx context.Context, keys ...Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range keys {
		m.gens[inv.root()]++
	}
	for k := range m.entries {
		for _, inv := range keys {
			if inv.Covers(k) {
				delete(m.entries, k)
				break
			}
		}
	}
	return nil
}

// Keys returns the live keys; used by tests and diagnostics.
func (m *Memory) Keys() []Key {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Key, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	return out
}
