package object

import (
	"context"
	"fmt"
	"strings"
)

// ID is an opaque content-derived object identifier of the form
// "<kind>_<digest>". Two objects with the same payload have the same ID.
type ID string

// Kind identifies the kind of a stored object.
type Kind string

const (
	KindBlob      Kind = "blb"
	KindDirectory Kind = "dir"
	KindFile      Kind = "fil"
	KindSymlink   Kind = "sym"
	KindTarget    Kind = "tgt"
)

// MakeID forms an ID from a kind and a digest string.
func MakeID(kind Kind, digest string) ID {
	return ID(string(kind) + "_" + digest)
}

// Kind extracts the kind prefix of the ID.
func (id ID) Kind() (Kind, error) {
	prefix, _, ok := strings.Cut(string(id), "_")
	if !ok {
		return "", fmt.Errorf("id %q: missing kind prefix", id)
	}
	switch kind := Kind(prefix); kind {
	case KindBlob, KindDirectory, KindFile, KindSymlink, KindTarget:
		return kind, nil
	default:
		return "", fmt.Errorf("id %q: unknown kind %q", id, prefix)
	}
}

// FromID wraps an id in the handle type its kind prefix names.
func FromID(id ID) (Value, error) {
	kind, err := id.Kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindBlob:
		return NewBlobFromID(id), nil
	case KindDirectory:
		return NewDirectoryFromID(id), nil
	case KindFile:
		return NewFileFromID(id), nil
	case KindSymlink:
		return NewSymlinkFromID(id), nil
	case KindTarget:
		return NewTargetFromID(id), nil
	}
	return nil, fmt.Errorf("id %q: unknown kind %q", id, kind)
}

// ArtifactFromID wraps an id in its artifact handle type; blob and target
// ids are rejected.
func ArtifactFromID(id ID) (Artifact, error) {
	v, err := FromID(id)
	if err != nil {
		return nil, err
	}
	artifact, ok := v.(Artifact)
	if !ok {
		return nil, fmt.Errorf("id %q: not an artifact", id)
	}
	return artifact, nil
}

// ArtifactID returns an artifact's content id, storing it on first
// request.
func ArtifactID(ctx context.Context, s Storage, a Artifact) (ID, error) {
	switch a := a.(type) {
	case *Directory:
		return a.ID(ctx, s)
	case *File:
		return a.ID(ctx, s)
	case *Symlink:
		return a.ID(ctx, s)
	default:
		return "", fmt.Errorf("artifact id: unknown artifact %T", a)
	}
}
