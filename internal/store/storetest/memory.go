// Package storetest provides an in-memory store.KV for unit tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/liteapi-travel/room-matcher-async/internal/store"
)

type item struct {
	value   string
	expires time.Time // zero = no ttl
}

// Memory is a goroutine-safe map-backed KV with TTL support. Failing, when
// set, is returned by every call.
type Memory struct {
	mu      sync.Mutex
	data    map[string]item
	Failing error
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]item)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failing != nil {
		return "", m.Failing
	}
	it, ok := m.lookup(key)
	if !ok {
		return "", store.ErrNotFound
	}
	return it.value, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failing != nil {
		return m.Failing
	}
	m.data[key] = newItem(value, ttl)
	return nil
}

func (m *Memory) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failing != nil {
		return false, m.Failing
	}
	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.data[key] = newItem(value, ttl)
	return true, nil
}

func (m *Memory) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failing != nil {
		return m.Failing
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Has reports whether key holds a live value.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok
}

// Keys lists the live keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if _, ok := m.lookup(k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (m *Memory) lookup(key string) (item, bool) {
	it, ok := m.data[key]
	if !ok {
		return item{}, false
	}
	if !it.expires.IsZero() && time.Now().After(it.expires) {
		delete(m.data, key)
		return item{}, false
	}
	return it, true
}

func newItem(value string, ttl time.Duration) item {
	it := item{value: value}
	if ttl > 0 {
		it.expires = time.Now().Add(ttl)
	}
	return it
}
