package object

import (
	"context"
	"testing"
)

func TestNewFileFromString(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	f, err := c.NewFile(ctx, String("#!/bin/sh\n"))
	if err != nil {
		t.Fatal(err)
	}
	p, err := f.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	data, err := p.Contents.Bytes(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "#!/bin/sh\n" {
		t.Errorf("got %q", data)
	}
	if p.Executable {
		t.Error("executable should default to false")
	}
	if len(p.References) != 0 {
		t.Errorf("references should default to none, got %d", len(p.References))
	}
}

func TestNewFileDefaultsToEmptyContents(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	f, err := c.NewFile(ctx, Map{"executable": Bool(true)})
	if err != nil {
		t.Fatal(err)
	}
	p, err := f.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	size, err := p.Contents.Size(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if size != 0 {
		t.Errorf("got size %d, want 0", size)
	}
	if !p.Executable {
		t.Error("executable bit not set")
	}
}

func TestNewFileLaterContentsWin(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	f, err := c.NewFile(ctx, String("old"), String("new"))
	if err != nil {
		t.Fatal(err)
	}
	data, err := fileBytes(ctx, s, f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("got %q, want new", data)
	}
}

func TestNewFileFromFileCopiesAllFields(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	ref, err := c.NewFile(ctx, String("dep"))
	if err != nil {
		t.Fatal(err)
	}
	base, err := c.NewFile(ctx, String("body"), Map{
		"executable": Bool(true),
		"references": ref,
	})
	if err != nil {
		t.Fatal(err)
	}
	copied, err := c.NewFile(ctx, base)
	if err != nil {
		t.Fatal(err)
	}
	p, err := copied.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Executable {
		t.Error("executable bit lost")
	}
	if len(p.References) != 1 || p.References[0] != Artifact(ref) {
		t.Errorf("references lost: %v", p.References)
	}
	data, err := p.Contents.Bytes(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "body" {
		t.Errorf("got %q, want body", data)
	}
}

func TestNewFileReferencesAccumulate(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	refA, err := c.NewFile(ctx, String("a"))
	if err != nil {
		t.Fatal(err)
	}
	refB, err := c.NewFile(ctx, String("b"))
	if err != nil {
		t.Fatal(err)
	}
	f, err := c.NewFile(ctx,
		Map{"references": refA},
		Map{"references": refB},
	)
	if err != nil {
		t.Fatal(err)
	}
	p, err := f.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.References) != 2 {
		t.Fatalf("got %d references, want 2", len(p.References))
	}
	if p.References[0] != Artifact(refA) || p.References[1] != Artifact(refB) {
		t.Errorf("references out of order: %v", p.References)
	}
}

func TestNewFileExplicitReferenceMutation(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	refA, err := c.NewFile(ctx, String("a"))
	if err != nil {
		t.Fatal(err)
	}
	refB, err := c.NewFile(ctx, String("b"))
	if err != nil {
		t.Fatal(err)
	}
	f, err := c.NewFile(ctx,
		Map{"references": refA},
		Map{"references": Set(List{refB})},
	)
	if err != nil {
		t.Fatal(err)
	}
	p, err := f.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.References) != 1 || p.References[0] != Artifact(refB) {
		t.Errorf("explicit set should replace references: %v", p.References)
	}
}

func TestNewFileRejectsUnknownKey(t *testing.T) {
	ctx := context.Background()
	c := NewClient(newFakeStorage())

	if _, err := c.NewFile(ctx, Map{"mode": Number(0o644)}); err == nil {
		t.Error("want error for unknown key")
	}
}

func fileBytes(ctx context.Context, s Storage, f *File) ([]byte, error) {
	b, err := f.Contents(ctx, s)
	if err != nil {
		return nil, err
	}
	return b.Bytes(ctx, s)
}
