package object

import (
	"context"
	"fmt"
)

// Blob is a handle to content-addressed byte content: either a leaf byte
// sequence or a branch over (child, size) pairs.
type Blob struct {
	c *cell
}

// BlobChild pairs a child blob with its byte length.
type BlobChild struct {
	Blob *Blob
	Size int64
}

// BlobPayload is the stored form of a Blob. A branch has at least two
// Children; otherwise the blob is a leaf and Leaf holds its bytes.
type BlobPayload struct {
	Leaf     Bytes
	Children []BlobChild
}

func (*BlobPayload) Kind() Kind { return KindBlob }
func (*BlobPayload) isPayload() {}

// IsBranch reports whether the payload is a branch.
func (p *BlobPayload) IsBranch() bool {
	return len(p.Children) > 0
}

// NewBlobFromPayload wraps an in-memory payload in a handle.
func NewBlobFromPayload(p *BlobPayload) *Blob {
	return &Blob{c: newCellFromPayload(p)}
}

// NewBlobFromID wraps a content id in a handle; the payload loads lazily.
func NewBlobFromID(id ID) *Blob {
	return &Blob{c: newCellFromID(id)}
}

// ID returns the blob's content id, storing the payload on first request.
func (b *Blob) ID(ctx context.Context, s Storage) (ID, error) {
	return b.c.ensureID(ctx, s)
}

// Payload returns the blob's payload, loading it on first request.
func (b *Blob) Payload(ctx context.Context, s Storage) (*BlobPayload, error) {
	p, err := b.c.ensurePayload(ctx, s)
	if err != nil {
		return nil, err
	}
	bp, ok := p.(*BlobPayload)
	if !ok {
		return nil, fmt.Errorf("blob payload: unexpected kind %s", p.Kind())
	}
	return bp, nil
}

// Size returns the blob's byte length: a leaf's content length, or the
// sum of a branch's recorded child sizes.
func (b *Blob) Size(ctx context.Context, s Storage) (int64, error) {
	p, err := b.Payload(ctx, s)
	if err != nil {
		return 0, err
	}
	if !p.IsBranch() {
		return int64(len(p.Leaf)), nil
	}
	var total int64
	for _, child := range p.Children {
		total += child.Size
	}
	return total, nil
}

// Bytes materializes the blob's full content, concatenating branch
// children in order.
func (b *Blob) Bytes(ctx context.Context, s Storage) ([]byte, error) {
	p, err := b.Payload(ctx, s)
	if err != nil {
		return nil, err
	}
	if !p.IsBranch() {
		return []byte(p.Leaf), nil
	}
	var out []byte
	for _, child := range p.Children {
		data, err := child.Blob.Bytes(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// NewBlob constructs a blob from the arguments. Strings and byte
// sequences become leaves; existing blobs pass through. Zero children
// yield an empty leaf; exactly one child is returned as-is, preserving
// its identity; two or more become a branch over (child, size) pairs in
// argument order.
func (c *Client) NewBlob(ctx context.Context, args ...Value) (*Blob, error) {
	fields, err := apply(ctx, args, func(ctx context.Context, arg Value) (Value, error) {
		switch arg := arg.(type) {
		case String:
			return Map{"children": Append(Bytes(arg))}, nil
		case Bytes:
			return Map{"children": Append(arg)}, nil
		case *Blob:
			return Map{"children": Append(arg)}, nil
		default:
			return nil, fmt.Errorf("blob: %w: argument is %T", ErrInvalidValue, arg)
		}
	})
	if err != nil {
		return nil, err
	}

	children, _ := fields["children"].(List)
	switch len(children) {
	case 0:
		return NewBlobFromPayload(&BlobPayload{Leaf: Bytes{}}), nil
	case 1:
		return blobOf(children[0]), nil
	}

	pairs := make([]BlobChild, len(children))
	for i, child := range children {
		blob := blobOf(child)
		size, err := blob.Size(ctx, c.storage)
		if err != nil {
			return nil, fmt.Errorf("blob: size child %d: %w", i, err)
		}
		pairs[i] = BlobChild{Blob: blob, Size: size}
	}
	return NewBlobFromPayload(&BlobPayload{Children: pairs}), nil
}

// blobOf converts a classified child (Bytes or *Blob) to a blob handle.
func blobOf(v Value) *Blob {
	switch v := v.(type) {
	case Bytes:
		return NewBlobFromPayload(&BlobPayload{Leaf: v})
	case *Blob:
		return v
	}
	panic(fmt.Sprintf("blobOf: unclassified child %T", v))
}
