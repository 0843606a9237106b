package object

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// classifyFunc maps one resolved, flattened constructor argument to its
// contribution: a Map of field mutations, a List of such maps, or nil for
// no contribution. Classification is the only type-specific step in
// construction; the surrounding resolve/flatten/fold scaffolding is shared
// by every constructor.
type classifyFunc func(ctx context.Context, arg Value) (Value, error)

// apply drives construction: resolve the arguments, flatten them into a
// linear sequence of leaves, classify each leaf, then fold the resulting
// mutation maps left to right into one aggregate map. Classification runs
// concurrently across leaves; the fold is strictly sequential in argument
// order.
func apply(ctx context.Context, args []Value, classify classifyFunc) (Map, error) {
	resolved, err := Resolve(ctx, List(args))
	if err != nil {
		return nil, err
	}
	leaves := flatten(nil, resolved)

	outs := make([]Value, len(leaves))
	g, gctx := errgroup.WithContext(ctx)
	for i, leaf := range leaves {
		i, leaf := i, leaf
		g.Go(func() error {
			out, err := classify(gctx, leaf)
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aggregate := make(Map)
	for _, contribution := range flatten(nil, List(outs)) {
		fields, ok := contribution.(Map)
		if !ok {
			return nil, errInvalidValuef("classify output is %T, not a map", contribution)
		}
		for key, v := range fields {
			if err := applyValue(ctx, aggregate, key, v); err != nil {
				return nil, err
			}
		}
	}
	return aggregate, nil
}
