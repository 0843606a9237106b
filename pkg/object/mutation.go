package object

import (
	"context"
	"fmt"
)

// mutationOp enumerates the edit operations a Mutation can carry.
type mutationOp int

const (
	opUnset mutationOp = iota
	opSet
	opSetIfUnset
	opPrepend
	opAppend
	opTemplatePrepend
	opTemplateAppend
)

func (op mutationOp) String() string {
	switch op {
	case opUnset:
		return "unset"
	case opSet:
		return "set"
	case opSetIfUnset:
		return "set_if_unset"
	case opPrepend:
		return "array_prepend"
	case opAppend:
		return "array_append"
	case opTemplatePrepend:
		return "template_prepend"
	case opTemplateAppend:
		return "template_append"
	}
	return "unknown"
}

// Mutation describes how new constructor input folds into an in-progress
// field map. Mutations are consumed during folding and never appear inside
// a finished object.
type Mutation struct {
	op        mutationOp
	value     Value // set, set_if_unset
	values    List  // array_prepend, array_append (may be nested)
	template  Value // template_prepend, template_append: template-coercible
	separator Value // optional separator for the template ops
}

// Unset removes the key.
func Unset() *Mutation {
	return &Mutation{op: opUnset}
}

// Set assigns the key unconditionally.
func Set(v Value) *Mutation {
	return &Mutation{op: opSet, value: v}
}

// SetIfUnset assigns the key only if it is currently absent.
func SetIfUnset(v Value) *Mutation {
	return &Mutation{op: opSetIfUnset, value: v}
}

// Prepend splices the flattened values at the front of the sequence at the
// key, initializing an empty sequence if the key is absent.
func Prepend(values ...Value) *Mutation {
	return &Mutation{op: opPrepend, values: List(values)}
}

// Append splices the flattened values at the back of the sequence at the
// key, initializing an empty sequence if the key is absent.
func Append(values ...Value) *Mutation {
	return &Mutation{op: opAppend, values: List(values)}
}

// TemplatePrepend joins t before the existing template at the key,
// separated by sep. A nil sep joins with no separator.
func TemplatePrepend(t Value, sep Value) *Mutation {
	return &Mutation{op: opTemplatePrepend, template: t, separator: sep}
}

// TemplateAppend joins t after the existing template at the key, separated
// by sep. A nil sep joins with no separator.
func TemplateAppend(t Value, sep Value) *Mutation {
	return &Mutation{op: opTemplateAppend, template: t, separator: sep}
}

// applyValue folds one value into the map at key. A plain Value is an
// implicit Set; a *Mutation applies its operation. Callers must apply
// (key, value) pairs strictly in the order supplied: set-after-set
// overwrites and append/prepend order is observable.
func applyValue(ctx context.Context, m Map, key string, v Value) error {
	mut, ok := v.(*Mutation)
	if !ok {
		mut = Set(v)
	}
	return mut.apply(ctx, m, key)
}

func (mut *Mutation) apply(ctx context.Context, m Map, key string) error {
	switch mut.op {
	case opUnset:
		delete(m, key)
		return nil

	case opSet:
		m[key] = mut.value
		return nil

	case opSetIfUnset:
		if _, ok := m[key]; !ok {
			m[key] = mut.value
		}
		return nil

	case opPrepend, opAppend:
		existing, ok := m[key]
		if !ok {
			existing = List{}
		}
		seq, ok := existing.(List)
		if !ok {
			return fmt.Errorf("%s %q: %w: existing value is %T, not a sequence", mut.op, key, ErrTypeMismatch, existing)
		}
		incoming := flatten(nil, mut.values)
		if mut.op == opPrepend {
			m[key] = append(incoming, seq...)
		} else {
			out := make(List, 0, len(seq)+len(incoming))
			out = append(out, seq...)
			out = append(out, incoming...)
			m[key] = out
		}
		return nil

	case opTemplatePrepend, opTemplateAppend:
		existing, ok := m[key]
		if !ok {
			existing = &Template{}
		}
		if !templateCoercible(existing) {
			return fmt.Errorf("%s %q: %w: existing value is %T, not template-coercible", mut.op, key, ErrTypeMismatch, existing)
		}
		var joined *Template
		var err error
		if mut.op == opTemplatePrepend {
			joined, err = TemplateJoin(ctx, mut.separator, mut.template, existing)
		} else {
			joined, err = TemplateJoin(ctx, mut.separator, existing, mut.template)
		}
		if err != nil {
			return fmt.Errorf("%s %q: %w", mut.op, key, err)
		}
		m[key] = joined
		return nil
	}
	return fmt.Errorf("apply mutation %q: unknown operation %d", key, mut.op)
}

// templateCoercible reports whether v can stand in for a Template: a
// string, an artifact, or a template.
func templateCoercible(v Value) bool {
	switch v.(type) {
	case String, *Directory, *File, *Symlink, *Template:
		return true
	}
	return false
}
