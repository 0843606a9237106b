package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/weftbuild/weft/pkg/object"
)

// Memory is an in-memory object store with the same encoding and ids as
// the filesystem Store. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	objects map[object.ID][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[object.ID][]byte)}
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Store encodes and retains a payload, returning its content id.
func (m *Memory) Store(ctx context.Context, p object.Payload) (object.ID, error) {
	encoded, err := Encode(ctx, m, p)
	if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	id := ComputeID(p.Kind(), encoded)
	m.mu.Lock()
	m.objects[id] = encoded
	m.mu.Unlock()
	return id, nil
}

// Load retrieves a payload by id.
func (m *Memory) Load(ctx context.Context, id object.ID) (object.Payload, error) {
	m.mu.Lock()
	encoded, ok := m.objects[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("load %s: %w", id, object.ErrNotFound)
	}
	payload, err := Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return payload, nil
}
