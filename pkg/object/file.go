package object

import (
	"context"
	"fmt"
)

// File is a handle to a file artifact: blob contents, an executable bit,
// and the artifacts the contents reference.
type File struct {
	c *cell
}

// FilePayload is the stored form of a File. References are in insertion
// order and are not deduplicated.
type FilePayload struct {
	Contents   *Blob
	Executable bool
	References []Artifact
}

func (*FilePayload) Kind() Kind { return KindFile }
func (*FilePayload) isPayload() {}

// NewFileFromPayload wraps an in-memory payload in a handle.
func NewFileFromPayload(p *FilePayload) *File {
	return &File{c: newCellFromPayload(p)}
}

// NewFileFromID wraps a content id in a handle; the payload loads lazily.
func NewFileFromID(id ID) *File {
	return &File{c: newCellFromID(id)}
}

// ID returns the file's content id, storing the payload on first request.
func (f *File) ID(ctx context.Context, s Storage) (ID, error) {
	return f.c.ensureID(ctx, s)
}

// Payload returns the file's payload, loading it on first request.
func (f *File) Payload(ctx context.Context, s Storage) (*FilePayload, error) {
	p, err := f.c.ensurePayload(ctx, s)
	if err != nil {
		return nil, err
	}
	fp, ok := p.(*FilePayload)
	if !ok {
		return nil, fmt.Errorf("file payload: unexpected kind %s", p.Kind())
	}
	return fp, nil
}

// Contents returns the file's blob.
func (f *File) Contents(ctx context.Context, s Storage) (*Blob, error) {
	p, err := f.Payload(ctx, s)
	if err != nil {
		return nil, err
	}
	return p.Contents, nil
}

// Executable reports the file's executable bit.
func (f *File) Executable(ctx context.Context, s Storage) (bool, error) {
	p, err := f.Payload(ctx, s)
	if err != nil {
		return false, err
	}
	return p.Executable, nil
}

// NewFile constructs a file. A blob-coercible argument (string, bytes,
// blob) sets the contents; an existing File overrides contents,
// executable bit, and references; a map patches whichever of "contents",
// "executable", "references" it carries, with references accumulating via
// append. Contents default to an empty blob, executable to false,
// references to none.
func (c *Client) NewFile(ctx context.Context, args ...Value) (*File, error) {
	fields, err := apply(ctx, args, func(ctx context.Context, arg Value) (Value, error) {
		switch arg := arg.(type) {
		case String, Bytes, *Blob:
			return Map{"contents": arg}, nil
		case *File:
			p, err := arg.Payload(ctx, c.storage)
			if err != nil {
				return nil, err
			}
			refs := make(List, len(p.References))
			for i, ref := range p.References {
				refs[i] = ref
			}
			return Map{
				"contents":   Set(p.Contents),
				"executable": Set(Bool(p.Executable)),
				"references": Set(refs),
			}, nil
		case Map:
			out := make(Map, len(arg))
			for key, v := range arg {
				switch key {
				case "contents", "executable":
					out[key] = v
				case "references":
					if _, isMutation := v.(*Mutation); isMutation {
						out[key] = v
					} else {
						out[key] = Append(v)
					}
				default:
					return nil, fmt.Errorf("file: %w: unknown key %q", ErrInvalidValue, key)
				}
			}
			return out, nil
		default:
			return nil, fmt.Errorf("file: %w: argument is %T", ErrInvalidValue, arg)
		}
	})
	if err != nil {
		return nil, err
	}

	contents, err := c.NewBlob(ctx, fields["contents"])
	if err != nil {
		return nil, fmt.Errorf("file contents: %w", err)
	}

	executable := false
	if v, ok := fields["executable"]; ok {
		b, ok := v.(Bool)
		if !ok {
			return nil, fmt.Errorf("file: %w: executable is %T, not a boolean", ErrInvalidValue, v)
		}
		executable = bool(b)
	}

	var references []Artifact
	if v, ok := fields["references"]; ok {
		seq, ok := v.(List)
		if !ok {
			return nil, fmt.Errorf("file: %w: references is %T, not a sequence", ErrInvalidValue, v)
		}
		for _, elem := range seq {
			ref, ok := elem.(Artifact)
			if !ok {
				return nil, fmt.Errorf("file: %w: reference is %T, not an artifact", ErrInvalidValue, elem)
			}
			references = append(references, ref)
		}
	}

	return NewFileFromPayload(&FilePayload{
		Contents:   contents,
		Executable: executable,
		References: references,
	}), nil
}
