package object

// Value is the closed set of shapes that flow through construction:
// primitives, artifacts, templates, targets, sequences, maps, and the
// transient control shapes (Future, Mutation) that are consumed before an
// object is finalized. A nil Value means "absent" and flattens away.
type Value interface {
	isValue()
}

// Bool is a boolean Value.
type Bool bool

// Number is a numeric Value.
type Number float64

// String is a UTF-8 string Value.
type String string

// Bytes is a raw byte sequence Value.
type Bytes []byte

// Path is a relative filesystem path Value, slash-separated.
type Path string

// List is an ordered sequence of Values. Element order is preserved
// through resolution and flattening.
type List []Value

// Map is a string-keyed Value map. During argument folding its values may
// be Mutations; inside a finished object they never are.
type Map map[string]Value

func (Bool) isValue()        {}
func (Number) isValue()      {}
func (String) isValue()      {}
func (Bytes) isValue()       {}
func (Path) isValue()        {}
func (List) isValue()        {}
func (Map) isValue()         {}
func (*Blob) isValue()       {}
func (*Directory) isValue()  {}
func (*File) isValue()       {}
func (*Symlink) isValue()    {}
func (*Target) isValue()     {}
func (*Template) isValue()   {}
func (Placeholder) isValue() {}
func (*Mutation) isValue()   {}

// Artifact is a filesystem-like content-addressed entity: a Directory,
// File, or Symlink.
type Artifact interface {
	Value
	Component
	isArtifact()
}

func (*Directory) isArtifact() {}
func (*File) isArtifact()      {}
func (*Symlink) isArtifact()   {}

func (*Directory) isComponent() {}
func (*File) isComponent()      {}
func (*Symlink) isComponent()   {}

// flatten appends the leaves of v to out, recursing through Lists with no
// depth limit. A nil Value contributes nothing.
func flatten(out List, v Value) List {
	switch v := v.(type) {
	case nil:
		return out
	case List:
		for _, elem := range v {
			out = flatten(out, elem)
		}
		return out
	default:
		return append(out, v)
	}
}
