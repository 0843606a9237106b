package object

import (
	"context"
	"fmt"
	"strings"
)

// Component is one element of a Template: a literal string, an Artifact,
// or a Placeholder. After normalization no two adjacent components are
// strings and no component is an empty string.
type Component interface {
	isComponent()
}

func (String) isComponent()      {}
func (Placeholder) isComponent() {}

// Placeholder is an explicit interpolation slot in a Template, filled in
// by whatever renders the template.
type Placeholder struct {
	Name string
}

// Template is a normalized ordered sequence of components. Templates are
// used for symlink targets, executable command lines, and environment
// values.
type Template struct {
	components []Component
}

// Components returns the normalized component sequence.
func (t *Template) Components() []Component {
	return t.components
}

// NewTemplate collects the arguments into one component sequence and
// normalizes it. Strings, artifacts, and placeholders contribute
// themselves; a nested Template splices its components in; nested
// sequences flatten. Normalization drops empty strings and merges
// adjacent string runs into a single component.
func NewTemplate(ctx context.Context, args ...Value) (*Template, error) {
	resolved, err := Resolve(ctx, List(args))
	if err != nil {
		return nil, err
	}
	var collected []Component
	for _, leaf := range flatten(nil, resolved) {
		switch leaf := leaf.(type) {
		case String:
			collected = append(collected, leaf)
		case Placeholder:
			collected = append(collected, leaf)
		case *Directory, *File, *Symlink:
			collected = append(collected, leaf.(Component))
		case *Template:
			collected = append(collected, leaf.components...)
		default:
			return nil, fmt.Errorf("template: %w: component is %T", ErrInvalidValue, leaf)
		}
	}
	return &Template{components: normalizeComponents(collected)}, nil
}

// TemplateFromComponents builds a Template directly from components,
// normalizing them. It never suspends; use it when the components are
// already concrete (for example when decoding a stored template).
func TemplateFromComponents(components []Component) *Template {
	return &Template{components: normalizeComponents(components)}
}

// normalizeComponents makes one left-to-right pass: empty strings are
// dropped, and a string following an emitted string is concatenated onto
// it. Non-string components always break a run.
func normalizeComponents(components []Component) []Component {
	var out []Component
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			out = append(out, String(run.String()))
			run.Reset()
		}
	}
	for _, c := range components {
		if s, ok := c.(String); ok {
			run.WriteString(string(s))
			continue
		}
		flush()
		out = append(out, c)
	}
	flush()
	return out
}

// TemplateJoin interleaves sep between the non-empty argument templates:
// each arg is built into a Template, args that normalize to zero
// components are filtered out, and no leading or trailing separator is
// emitted. A nil sep joins with nothing between.
func TemplateJoin(ctx context.Context, sep Value, args ...Value) (*Template, error) {
	separator, err := NewTemplate(ctx, sep)
	if err != nil {
		return nil, err
	}
	var parts []Value
	for _, arg := range args {
		t, err := NewTemplate(ctx, arg)
		if err != nil {
			return nil, err
		}
		if len(t.components) == 0 {
			continue
		}
		parts = append(parts, t)
	}
	joined := make([]Value, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			joined = append(joined, separator)
		}
		joined = append(joined, part)
	}
	return NewTemplate(ctx, joined...)
}
