package object

import (
	"context"
	"fmt"
	"sync"
)

// fakeStorage is an in-memory Storage for construction tests. It hands
// out sequential ids and counts Store/Load calls so memoization is
// observable.
type fakeStorage struct {
	mu       sync.Mutex
	payloads map[ID]Payload
	next     int
	stores   int
	loads    int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{payloads: make(map[ID]Payload)}
}

func (f *fakeStorage) Store(ctx context.Context, p Payload) (ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores++
	id := MakeID(p.Kind(), fmt.Sprintf("%064x", f.next))
	f.next++
	f.payloads[id] = p
	return id, nil
}

func (f *fakeStorage) Load(ctx context.Context, id ID) (Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	p, ok := f.payloads[id]
	if !ok {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (f *fakeStorage) storeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stores
}

func (f *fakeStorage) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}
