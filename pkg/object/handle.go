package object

import (
	"context"
	"fmt"
	"sync"
)

// Payload is a fully materialized in-memory object: the stored form of a
// Blob, Directory, File, Symlink, or Target.
type Payload interface {
	Kind() Kind
	isPayload()
}

// Storage is the external collaborator that persists payloads and hands
// back content-derived ids. Store must be idempotent: the same payload
// always yields the same id.
type Storage interface {
	Store(ctx context.Context, p Payload) (ID, error)
	Load(ctx context.Context, id ID) (Payload, error)
}

// cell is the id/payload state behind every object handle. After
// construction at least one of id/payload is present. Requesting the
// missing half triggers exactly one Store or Load over the cell's
// lifetime; concurrent callers coalesce onto the in-flight call and the
// outcome, success or failure, is memoized.
type cell struct {
	mu      sync.Mutex
	id      ID
	payload Payload

	stored   bool
	storeErr error
	loaded   bool
	loadErr  error
}

func newCellFromPayload(p Payload) *cell {
	return &cell{payload: p, loaded: true}
}

func newCellFromID(id ID) *cell {
	return &cell{id: id, stored: true}
}

// ensureID returns the cell's id, storing the payload on first request.
func (c *cell) ensureID(ctx context.Context, s Storage) (ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id != "" {
		return c.id, nil
	}
	if !c.stored {
		c.stored = true
		id, err := s.Store(ctx, c.payload)
		if err != nil {
			c.storeErr = fmt.Errorf("store object: %w", err)
		} else {
			c.id = id
		}
	}
	return c.id, c.storeErr
}

// ensurePayload returns the cell's payload, loading it by id on first
// request.
func (c *cell) ensurePayload(ctx context.Context, s Storage) (Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload != nil {
		return c.payload, nil
	}
	if !c.loaded {
		c.loaded = true
		p, err := s.Load(ctx, c.id)
		if err != nil {
			c.loadErr = fmt.Errorf("load object %s: %w", c.id, err)
		} else {
			c.payload = p
		}
	}
	return c.payload, c.loadErr
}
