// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/workshop-pos/pos"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	pos.Notifier

	mu   sync.RWMutex
	data map[pos.Key][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[pos.Key][]byte)}
}

// Get returns a copy of the stored payload.
func (m *Memory) Get(_ context.Context, key pos.Key) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payload, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key pos.Key, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)

	m.mu.Lock()
	m.data[key] = stored
	m.mu.Unlock()

	m.Notify(key)
	return nil
}

func (m *Memory) Remove(_ context.Context, key pos.Key) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	m.Notify(key)
	return nil
}
