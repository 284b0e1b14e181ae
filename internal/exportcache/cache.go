// Package exportcache holds rendered exports keyed by canvas revision.
package exportcache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Key identifies one revision of one canvas in one format.
func Key(format, id string, updatedAt time.Time) string {
	return fmt.Sprintf("easel:export:%s:%s:%d", format, id, updatedAt.UnixMilli())
}

// Memory is an in-process Cache. When full, the oldest entry is evicted.
type Memory struct {
	mu      sync.Mutex
	max     int
	ttl     time.Duration
	now     func() time.Time
	order   []string
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

var _ Cache = (*Memory)(nil)

func NewMemory(max int, ttl time.Duration) *Memory {
	if max <= 0 {
		max = 32
	}
	return &Memory{
		max:     max,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		m.remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (m *Memory) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		m.remove(key)
	}
	for len(m.order) >= m.max {
		m.remove(m.order[0])
	}
	e := memoryEntry{data: append([]byte(nil), data...)}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	m.order = append(m.order, key)
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) remove(key string) {
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
