package store

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/weftbuild/weft/pkg/object"
)

// Payloads are encoded as canonical CBOR so the same payload always
// produces the same bytes and therefore the same content id. Child
// objects are referenced by id; encoding a payload stores its children
// first through the supplied storage.

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

type wireBlobChild struct {
	ID   string `cbor:"id"`
	Size int64  `cbor:"size"`
}

type wireBlob struct {
	Leaf     []byte          `cbor:"leaf,omitempty"`
	Children []wireBlobChild `cbor:"children,omitempty"`
}

type wireDirectory struct {
	Entries map[string]string `cbor:"entries"`
}

type wireFile struct {
	Contents   string   `cbor:"contents"`
	Executable bool     `cbor:"executable,omitempty"`
	References []string `cbor:"references,omitempty"`
}

type wireSymlink struct {
	Target wireTemplate `cbor:"target"`
}

// Component kinds on the wire.
const (
	componentString      = "string"
	componentArtifact    = "artifact"
	componentPlaceholder = "placeholder"
)

type wireComponent struct {
	Kind  string `cbor:"kind"`
	Value string `cbor:"value"`
}

type wireTemplate struct {
	Components []wireComponent `cbor:"components,omitempty"`
}

// Value kinds on the wire.
const (
	valueBool        = "bool"
	valueNumber      = "number"
	valueString      = "string"
	valueBytes       = "bytes"
	valuePath        = "path"
	valueObject      = "object"
	valueTemplate    = "template"
	valuePlaceholder = "placeholder"
	valueList        = "list"
	valueMap         = "map"
)

type wireValue struct {
	Kind     string               `cbor:"kind"`
	Bool     bool                 `cbor:"bool,omitempty"`
	Number   float64              `cbor:"number,omitempty"`
	String   string               `cbor:"string,omitempty"`
	Bytes    []byte               `cbor:"bytes,omitempty"`
	Template *wireTemplate        `cbor:"template,omitempty"`
	List     []wireValue          `cbor:"list,omitempty"`
	Map      map[string]wireValue `cbor:"map,omitempty"`
}

type wireTarget struct {
	Host       string               `cbor:"host"`
	Executable wireTemplate         `cbor:"executable"`
	Module     string               `cbor:"module,omitempty"`
	Name       string               `cbor:"name,omitempty"`
	Env        map[string]wireValue `cbor:"env,omitempty"`
	Args       []wireValue          `cbor:"args,omitempty"`
	Checksum   string               `cbor:"checksum,omitempty"`
	Unsafe     bool                 `cbor:"unsafe,omitempty"`
	Network    bool                 `cbor:"network,omitempty"`
}

type wireObject struct {
	Kind      string         `cbor:"kind"`
	Blob      *wireBlob      `cbor:"blob,omitempty"`
	Directory *wireDirectory `cbor:"directory,omitempty"`
	File      *wireFile      `cbor:"file,omitempty"`
	Symlink   *wireSymlink   `cbor:"symlink,omitempty"`
	Target    *wireTarget    `cbor:"target,omitempty"`
}

// Encode serializes a payload, storing child objects through s so they
// can be referenced by id.
func Encode(ctx context.Context, s object.Storage, p object.Payload) ([]byte, error) {
	wire := wireObject{Kind: string(p.Kind())}
	switch p := p.(type) {
	case *object.BlobPayload:
		w, err := encodeBlob(ctx, s, p)
		if err != nil {
			return nil, err
		}
		wire.Blob = w
	case *object.DirectoryPayload:
		w, err := encodeDirectory(ctx, s, p)
		if err != nil {
			return nil, err
		}
		wire.Directory = w
	case *object.FilePayload:
		w, err := encodeFile(ctx, s, p)
		if err != nil {
			return nil, err
		}
		wire.File = w
	case *object.SymlinkPayload:
		w, err := encodeTemplate(ctx, s, p.Target)
		if err != nil {
			return nil, err
		}
		wire.Symlink = &wireSymlink{Target: *w}
	case *object.TargetPayload:
		w, err := encodeTarget(ctx, s, p)
		if err != nil {
			return nil, err
		}
		wire.Target = w
	default:
		return nil, fmt.Errorf("encode: unknown payload %T", p)
	}
	return encMode.Marshal(wire)
}

func encodeBlob(ctx context.Context, s object.Storage, p *object.BlobPayload) (*wireBlob, error) {
	if !p.IsBranch() {
		return &wireBlob{Leaf: p.Leaf}, nil
	}
	children := make([]wireBlobChild, len(p.Children))
	for i, child := range p.Children {
		id, err := child.Blob.ID(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("encode blob child %d: %w", i, err)
		}
		children[i] = wireBlobChild{ID: string(id), Size: child.Size}
	}
	return &wireBlob{Children: children}, nil
}

func encodeDirectory(ctx context.Context, s object.Storage, p *object.DirectoryPayload) (*wireDirectory, error) {
	entries := make(map[string]string, len(p.Entries))
	for name, entry := range p.Entries {
		id, err := object.ArtifactID(ctx, s, entry)
		if err != nil {
			return nil, fmt.Errorf("encode directory entry %q: %w", name, err)
		}
		entries[name] = string(id)
	}
	return &wireDirectory{Entries: entries}, nil
}

func encodeFile(ctx context.Context, s object.Storage, p *object.FilePayload) (*wireFile, error) {
	contentsID, err := p.Contents.ID(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("encode file contents: %w", err)
	}
	references := make([]string, len(p.References))
	for i, ref := range p.References {
		id, err := object.ArtifactID(ctx, s, ref)
		if err != nil {
			return nil, fmt.Errorf("encode file reference %d: %w", i, err)
		}
		references[i] = string(id)
	}
	return &wireFile{
		Contents:   string(contentsID),
		Executable: p.Executable,
		References: references,
	}, nil
}

func encodeTemplate(ctx context.Context, s object.Storage, t *object.Template) (*wireTemplate, error) {
	components := t.Components()
	out := make([]wireComponent, len(components))
	for i, c := range components {
		switch c := c.(type) {
		case object.String:
			out[i] = wireComponent{Kind: componentString, Value: string(c)}
		case object.Placeholder:
			out[i] = wireComponent{Kind: componentPlaceholder, Value: c.Name}
		case object.Artifact:
			id, err := object.ArtifactID(ctx, s, c)
			if err != nil {
				return nil, fmt.Errorf("encode template component %d: %w", i, err)
			}
			out[i] = wireComponent{Kind: componentArtifact, Value: string(id)}
		default:
			return nil, fmt.Errorf("encode template component %d: unknown %T", i, c)
		}
	}
	return &wireTemplate{Components: out}, nil
}

func encodeTarget(ctx context.Context, s object.Storage, p *object.TargetPayload) (*wireTarget, error) {
	executable, err := encodeTemplate(ctx, s, p.Executable)
	if err != nil {
		return nil, err
	}
	env := make(map[string]wireValue, len(p.Env))
	for key, v := range p.Env {
		w, err := encodeValue(ctx, s, v)
		if err != nil {
			return nil, fmt.Errorf("encode target env %q: %w", key, err)
		}
		env[key] = *w
	}
	args := make([]wireValue, len(p.Args))
	for i, v := range p.Args {
		w, err := encodeValue(ctx, s, v)
		if err != nil {
			return nil, fmt.Errorf("encode target arg %d: %w", i, err)
		}
		args[i] = *w
	}
	return &wireTarget{
		Host:       p.Host,
		Executable: *executable,
		Module:     p.Module,
		Name:       p.Name,
		Env:        env,
		Args:       args,
		Checksum:   p.Checksum,
		Unsafe:     p.Unsafe,
		Network:    p.Network,
	}, nil
}

func encodeValue(ctx context.Context, s object.Storage, v object.Value) (*wireValue, error) {
	switch v := v.(type) {
	case object.Bool:
		return &wireValue{Kind: valueBool, Bool: bool(v)}, nil
	case object.Number:
		return &wireValue{Kind: valueNumber, Number: float64(v)}, nil
	case object.String:
		return &wireValue{Kind: valueString, String: string(v)}, nil
	case object.Bytes:
		return &wireValue{Kind: valueBytes, Bytes: []byte(v)}, nil
	case object.Path:
		return &wireValue{Kind: valuePath, String: string(v)}, nil
	case object.Placeholder:
		return &wireValue{Kind: valuePlaceholder, String: v.Name}, nil
	case *object.Blob:
		id, err := v.ID(ctx, s)
		if err != nil {
			return nil, err
		}
		return &wireValue{Kind: valueObject, String: string(id)}, nil
	case *object.Target:
		id, err := v.ID(ctx, s)
		if err != nil {
			return nil, err
		}
		return &wireValue{Kind: valueObject, String: string(id)}, nil
	case object.Artifact:
		id, err := object.ArtifactID(ctx, s, v)
		if err != nil {
			return nil, err
		}
		return &wireValue{Kind: valueObject, String: string(id)}, nil
	case *object.Template:
		w, err := encodeTemplate(ctx, s, v)
		if err != nil {
			return nil, err
		}
		return &wireValue{Kind: valueTemplate, Template: w}, nil
	case object.List:
		out := make([]wireValue, len(v))
		for i, elem := range v {
			w, err := encodeValue(ctx, s, elem)
			if err != nil {
				return nil, err
			}
			out[i] = *w
		}
		return &wireValue{Kind: valueList, List: out}, nil
	case object.Map:
		out := make(map[string]wireValue, len(v))
		for key, elem := range v {
			w, err := encodeValue(ctx, s, elem)
			if err != nil {
				return nil, err
			}
			out[key] = *w
		}
		return &wireValue{Kind: valueMap, Map: out}, nil
	default:
		return nil, fmt.Errorf("encode value: %T is not a canonical value", v)
	}
}

// Decode deserializes an encoded payload. Child references become
// id-only handles that load lazily.
func Decode(data []byte) (object.Payload, error) {
	var wire wireObject
	if err := decMode.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	switch object.Kind(wire.Kind) {
	case object.KindBlob:
		if wire.Blob == nil {
			return nil, fmt.Errorf("decode blob: missing body")
		}
		return decodeBlob(wire.Blob)
	case object.KindDirectory:
		if wire.Directory == nil {
			return nil, fmt.Errorf("decode directory: missing body")
		}
		return decodeDirectory(wire.Directory)
	case object.KindFile:
		if wire.File == nil {
			return nil, fmt.Errorf("decode file: missing body")
		}
		return decodeFile(wire.File)
	case object.KindSymlink:
		if wire.Symlink == nil {
			return nil, fmt.Errorf("decode symlink: missing body")
		}
		target, err := decodeTemplate(&wire.Symlink.Target)
		if err != nil {
			return nil, err
		}
		return &object.SymlinkPayload{Target: target}, nil
	case object.KindTarget:
		if wire.Target == nil {
			return nil, fmt.Errorf("decode target: missing body")
		}
		return decodeTarget(wire.Target)
	default:
		return nil, fmt.Errorf("decode object: unknown kind %q", wire.Kind)
	}
}

func decodeBlob(w *wireBlob) (*object.BlobPayload, error) {
	if len(w.Children) == 0 {
		leaf := w.Leaf
		if leaf == nil {
			leaf = []byte{}
		}
		return &object.BlobPayload{Leaf: leaf}, nil
	}
	children := make([]object.BlobChild, len(w.Children))
	for i, child := range w.Children {
		children[i] = object.BlobChild{
			Blob: object.NewBlobFromID(object.ID(child.ID)),
			Size: child.Size,
		}
	}
	return &object.BlobPayload{Children: children}, nil
}

func decodeDirectory(w *wireDirectory) (*object.DirectoryPayload, error) {
	entries := make(map[string]object.Artifact, len(w.Entries))
	for name, id := range w.Entries {
		artifact, err := object.ArtifactFromID(object.ID(id))
		if err != nil {
			return nil, fmt.Errorf("decode directory entry %q: %w", name, err)
		}
		entries[name] = artifact
	}
	return &object.DirectoryPayload{Entries: entries}, nil
}

func decodeFile(w *wireFile) (*object.FilePayload, error) {
	references := make([]object.Artifact, len(w.References))
	for i, id := range w.References {
		ref, err := object.ArtifactFromID(object.ID(id))
		if err != nil {
			return nil, fmt.Errorf("decode file reference %d: %w", i, err)
		}
		references[i] = ref
	}
	if len(references) == 0 {
		references = nil
	}
	return &object.FilePayload{
		Contents:   object.NewBlobFromID(object.ID(w.Contents)),
		Executable: w.Executable,
		References: references,
	}, nil
}

func decodeTemplate(w *wireTemplate) (*object.Template, error) {
	components := make([]object.Component, len(w.Components))
	for i, c := range w.Components {
		switch c.Kind {
		case componentString:
			components[i] = object.String(c.Value)
		case componentPlaceholder:
			components[i] = object.Placeholder{Name: c.Value}
		case componentArtifact:
			artifact, err := object.ArtifactFromID(object.ID(c.Value))
			if err != nil {
				return nil, fmt.Errorf("decode template component %d: %w", i, err)
			}
			components[i] = artifact
		default:
			return nil, fmt.Errorf("decode template component %d: unknown kind %q", i, c.Kind)
		}
	}
	return object.TemplateFromComponents(components), nil
}

func decodeTarget(w *wireTarget) (*object.TargetPayload, error) {
	executable, err := decodeTemplate(&w.Executable)
	if err != nil {
		return nil, err
	}
	env := make(object.Map, len(w.Env))
	for key, v := range w.Env {
		decoded, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("decode target env %q: %w", key, err)
		}
		env[key] = decoded
	}
	var args object.List
	for i, v := range w.Args {
		decoded, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("decode target arg %d: %w", i, err)
		}
		args = append(args, decoded)
	}
	return &object.TargetPayload{
		Host:       w.Host,
		Executable: executable,
		Module:     w.Module,
		Name:       w.Name,
		Env:        env,
		Args:       args,
		Checksum:   w.Checksum,
		Unsafe:     w.Unsafe,
		Network:    w.Network,
	}, nil
}

func decodeValue(w wireValue) (object.Value, error) {
	switch w.Kind {
	case valueBool:
		return object.Bool(w.Bool), nil
	case valueNumber:
		return object.Number(w.Number), nil
	case valueString:
		return object.String(w.String), nil
	case valueBytes:
		return object.Bytes(w.Bytes), nil
	case valuePath:
		return object.Path(w.String), nil
	case valuePlaceholder:
		return object.Placeholder{Name: w.String}, nil
	case valueObject:
		return object.FromID(object.ID(w.String))
	case valueTemplate:
		if w.Template == nil {
			return nil, fmt.Errorf("decode value: missing template body")
		}
		return decodeTemplate(w.Template)
	case valueList:
		out := make(object.List, len(w.List))
		for i, elem := range w.List {
			decoded, err := decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	case valueMap:
		out := make(object.Map, len(w.Map))
		for key, elem := range w.Map {
			decoded, err := decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[key] = decoded
		}
		return out, nil
	default:
		return nil, fmt.Errorf("decode value: unknown kind %q", w.Kind)
	}
}
