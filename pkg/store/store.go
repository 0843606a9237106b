package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/weftbuild/weft/pkg/object"
)

// Store is a content-addressed object store on the local filesystem with
// a 2-character fan-out directory layout: objects/blb/ab/cdef0123...
// Objects are grouped by kind, then by the first two digest characters.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// objectPath returns the filesystem path for a given id.
func (s *Store) objectPath(id object.ID) (string, error) {
	kind, digest, ok := strings.Cut(string(id), "_")
	if !ok || len(digest) < 3 {
		return "", fmt.Errorf("object path: malformed id %q", id)
	}
	return filepath.Join(s.root, "objects", kind, digest[:2], digest[2:]), nil
}

// Has reports whether the store contains an object with the given id.
func (s *Store) Has(id object.ID) bool {
	p, err := s.objectPath(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Store encodes and persists a payload, returning its content id. Child
// objects are stored first. Writes are atomic: data is written to a temp
// file and renamed into place, and storing an already-present object is
// a no-op, so repeated stores of the same payload are safe.
func (s *Store) Store(ctx context.Context, p object.Payload) (object.ID, error) {
	encoded, err := Encode(ctx, s, p)
	if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	id := ComputeID(p.Kind(), encoded)

	// Fast path: already exists.
	if s.Has(id) {
		return id, nil
	}

	dest, err := s.objectPath(id)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("store mkdir: %w", err)
	}

	// Atomic write via temp + rename.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("store tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("store write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("store close: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("store rename: %w", err)
	}

	return id, nil
}

// Load retrieves a payload by id. The stored bytes are re-hashed and must
// reproduce the id.
func (s *Store) Load(ctx context.Context, id object.ID) (object.Payload, error) {
	p, err := s.objectPath(id)
	if err != nil {
		return nil, err
	}
	encoded, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", id, object.ErrNotFound)
		}
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	kind, err := id.Kind()
	if err != nil {
		return nil, err
	}
	if got := ComputeID(kind, encoded); got != id {
		return nil, fmt.Errorf("load %s: content hash mismatch (got %s)", id, got)
	}
	payload, err := Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return payload, nil
}

// Read materializes a blob's full byte content, concatenating branch
// children in order.
func Read(ctx context.Context, s object.Storage, b *object.Blob) ([]byte, error) {
	return b.Bytes(ctx, s)
}
