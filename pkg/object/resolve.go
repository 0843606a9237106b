package object

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Future is a Value whose concrete value is not yet known. Await blocks
// until it is. A Future may resolve to another Future; Resolve keeps
// awaiting until the value grounds.
type Future interface {
	Value
	Await(ctx context.Context) (Value, error)
}

// Thunk adapts a function to a Future.
type Thunk func(ctx context.Context) (Value, error)

func (Thunk) isValue() {}

// Await calls the underlying function.
func (t Thunk) Await(ctx context.Context) (Value, error) {
	return t(ctx)
}

// Resolve recursively grounds v: Futures are awaited, List elements and
// Map values are resolved concurrently. Output order always matches input
// order regardless of completion order. Primitives, artifacts, templates,
// targets, and mutations terminate recursion; anything else fails with
// ErrInvalidValue.
func Resolve(ctx context.Context, v Value) (Value, error) {
	for {
		f, ok := v.(Future)
		if !ok {
			break
		}
		awaited, err := f.Await(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve: await: %w", err)
		}
		v = awaited
	}

	switch v := v.(type) {
	case nil, Bool, Number, String, Bytes, Path,
		*Blob, *Directory, *File, *Symlink, *Target, *Template,
		Placeholder, *Mutation:
		return v, nil
	case List:
		out := make(List, len(v))
		g, gctx := errgroup.WithContext(ctx)
		for i, elem := range v {
			i, elem := i, elem
			g.Go(func() error {
				resolved, err := Resolve(gctx, elem)
				if err != nil {
					return err
				}
				out[i] = resolved
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	case Map:
		out := make(Map, len(v))
		keys := make([]string, 0, len(v))
		resolved := make([]Value, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		g, gctx := errgroup.WithContext(ctx)
		for i, key := range keys {
			i, key := i, key
			g.Go(func() error {
				r, err := Resolve(gctx, v[key])
				if err != nil {
					return err
				}
				resolved[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i, key := range keys {
			out[key] = resolved[i]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("resolve: %w: %T", ErrInvalidValue, v)
	}
}
