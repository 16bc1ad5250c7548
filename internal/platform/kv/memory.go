package kv

import (
	"context"
	"sync"
)

// MemoryStorage keeps everything in a map. It is used for tests and dry runs.
type MemoryStorage struct {
	mu    sync.RWMutex
	data  map[string]string
	used  int64
	quota int64
}

// NewMemoryStorage creates an empty store. quota is in bytes; zero disables it.
func NewMemoryStorage(quota int64) *MemoryStorage {
	return &MemoryStorage{data: map[string]string{}, quota: quota}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.used + EntryBytes(key, value)
	if old, ok := m.data[key]; ok {
		next -= EntryBytes(key, old)
	}
	if m.quota > 0 && next > m.quota {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	m.used = next
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[key]; ok {
		m.used -= EntryBytes(key, old)
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	return keys, nil
}

func (m *MemoryStorage) EstimateQuota(context.Context) (int64, error) {
	return m.quota, nil
}
