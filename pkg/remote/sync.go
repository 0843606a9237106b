package remote

import (
	"context"
	"fmt"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/store"
)

// Push uploads the object graph rooted at id to the remote. Children are
// pushed before their parents, and objects the remote already holds are
// skipped, so interrupted pushes can resume without leaving the remote
// with dangling references. Returns the number of objects uploaded.
func Push(ctx context.Context, c *Client, s *store.Store, id object.ID) (int, error) {
	pushed := 0
	seen := make(map[object.ID]bool)
	var walk func(id object.ID) error
	walk = func(id object.ID) error {
		if seen[id] {
			return nil
		}
		seen[id] = true

		has, err := c.Has(ctx, id)
		if err != nil {
			return err
		}
		if has {
			return nil
		}

		payload, err := s.Load(ctx, id)
		if err != nil {
			return err
		}
		children, err := childIDs(ctx, s, payload)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := walk(child); err != nil {
				return err
			}
		}
		if err := c.Put(ctx, s, id, payload); err != nil {
			return err
		}
		pushed++
		return nil
	}
	if err := walk(id); err != nil {
		return pushed, fmt.Errorf("push %s: %w", id, err)
	}
	return pushed, nil
}

// Pull downloads the object graph rooted at id into the local store.
// Objects already present locally are not re-fetched, and neither are
// their children: local presence implies the whole subgraph is present
// because Push and Store both write children first. Returns the number
// of objects downloaded.
func Pull(ctx context.Context, c *Client, s *store.Store, id object.ID) (int, error) {
	pulled := 0
	seen := make(map[object.ID]bool)
	var walk func(id object.ID) error
	walk = func(id object.ID) error {
		if seen[id] || s.Has(id) {
			return nil
		}
		seen[id] = true

		payload, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		children, err := childIDs(ctx, s, payload)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := walk(child); err != nil {
				return err
			}
		}
		if _, err := s.Store(ctx, payload); err != nil {
			return err
		}
		pulled++
		return nil
	}
	if err := walk(id); err != nil {
		return pulled, fmt.Errorf("pull %s: %w", id, err)
	}
	return pulled, nil
}

// childIDs lists the ids an object references directly. Payload handles
// obtained from decoding carry their ids already, so no store round trip
// happens here.
func childIDs(ctx context.Context, s object.Storage, p object.Payload) ([]object.ID, error) {
	var out []object.ID
	add := func(id object.ID, err error) error {
		if err != nil {
			return err
		}
		out = append(out, id)
		return nil
	}

	switch p := p.(type) {
	case *object.BlobPayload:
		for _, child := range p.Children {
			if err := add(child.Blob.ID(ctx, s)); err != nil {
				return nil, err
			}
		}
	case *object.DirectoryPayload:
		for _, entry := range p.Entries {
			if err := add(object.ArtifactID(ctx, s, entry)); err != nil {
				return nil, err
			}
		}
	case *object.FilePayload:
		if err := add(p.Contents.ID(ctx, s)); err != nil {
			return nil, err
		}
		for _, ref := range p.References {
			if err := add(object.ArtifactID(ctx, s, ref)); err != nil {
				return nil, err
			}
		}
	case *object.SymlinkPayload:
		ids, err := templateIDs(ctx, s, p.Target)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	case *object.TargetPayload:
		ids, err := templateIDs(ctx, s, p.Executable)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
		ids, err = valueIDs(ctx, s, object.Map(p.Env))
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
		ids, err = valueIDs(ctx, s, p.Args)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	default:
		return nil, fmt.Errorf("child ids: unknown payload %T", p)
	}
	return out, nil
}

func templateIDs(ctx context.Context, s object.Storage, t *object.Template) ([]object.ID, error) {
	var out []object.ID
	for _, c := range t.Components() {
		artifact, ok := c.(object.Artifact)
		if !ok {
			continue
		}
		id, err := object.ArtifactID(ctx, s, artifact)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func valueIDs(ctx context.Context, s object.Storage, v object.Value) ([]object.ID, error) {
	switch v := v.(type) {
	case *object.Blob:
		id, err := v.ID(ctx, s)
		if err != nil {
			return nil, err
		}
		return []object.ID{id}, nil
	case *object.Target:
		id, err := v.ID(ctx, s)
		if err != nil {
			return nil, err
		}
		return []object.ID{id}, nil
	case object.Artifact:
		id, err := object.ArtifactID(ctx, s, v)
		if err != nil {
			return nil, err
		}
		return []object.ID{id}, nil
	case *object.Template:
		return templateIDs(ctx, s, v)
	case object.List:
		var out []object.ID
		for _, elem := range v {
			ids, err := valueIDs(ctx, s, elem)
			if err != nil {
				return nil, err
			}
			out = append(out, ids...)
		}
		return out, nil
	case object.Map:
		var out []object.ID
		for _, elem := range v {
			ids, err := valueIDs(ctx, s, elem)
			if err != nil {
				return nil, err
			}
			out = append(out, ids...)
		}
		return out, nil
	default:
		return nil, nil
	}
}
