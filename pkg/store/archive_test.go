package store

import (
	"context"
	"testing"

	"github.com/weftbuild/weft/pkg/object"
)

func buildSampleTree(t *testing.T, ctx context.Context, c *object.Client) *object.Directory {
	t.Helper()
	link, err := c.NewSymlink(ctx, object.String("../bin/tool"))
	if err != nil {
		t.Fatal(err)
	}
	tool, err := c.NewFile(ctx, object.String("#!/bin/sh\necho hi\n"), object.Map{"executable": object.Bool(true)})
	if err != nil {
		t.Fatal(err)
	}
	d, err := c.NewDirectory(ctx, object.Map{
		"bin/tool":    tool,
		"docs/README": object.String("read me\n"),
		"sbin/tool":   link,
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestArchiveExtractRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	c := object.NewClient(s)
	tree := buildSampleTree(t, ctx, c)

	for _, format := range []ArchiveFormat{ArchiveTar, ArchiveZip} {
		t.Run(string(format), func(t *testing.T) {
			blob, err := Archive(ctx, s, tree, format)
			if err != nil {
				t.Fatal(err)
			}
			extracted, err := Extract(ctx, s, blob, format)
			if err != nil {
				t.Fatal(err)
			}
			dir, ok := extracted.(*object.Directory)
			if !ok {
				t.Fatalf("extracted %T, want *object.Directory", extracted)
			}

			entry, err := dir.Get(ctx, s, "bin/tool")
			if err != nil {
				t.Fatal(err)
			}
			file := entry.(*object.File)
			p, err := file.Payload(ctx, s)
			if err != nil {
				t.Fatal(err)
			}
			if !p.Executable {
				t.Error("executable bit lost")
			}
			data, err := p.Contents.Bytes(ctx, s)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "#!/bin/sh\necho hi\n" {
				t.Errorf("got %q", data)
			}

			entry, err = dir.Get(ctx, s, "sbin/tool")
			if err != nil {
				t.Fatal(err)
			}
			restored, ok := entry.(*object.Symlink)
			if !ok {
				t.Fatalf("entry is %T, want *object.Symlink", entry)
			}
			target, err := restored.Path(ctx, s)
			if err != nil {
				t.Fatal(err)
			}
			if target != "../bin/tool" {
				t.Errorf("got symlink target %q", target)
			}

			if _, err := dir.Get(ctx, s, "docs/README"); err != nil {
				t.Errorf("docs/README: %v", err)
			}
		})
	}
}

func TestArchiveDeterministic(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	c := object.NewClient(s)
	tree := buildSampleTree(t, ctx, c)

	first, err := Archive(ctx, s, tree, ArchiveTar)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Archive(ctx, s, tree, ArchiveTar)
	if err != nil {
		t.Fatal(err)
	}
	firstID, err := first.ID(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	secondID, err := second.ID(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if firstID != secondID {
		t.Error("same tree archived to different blobs")
	}
}

func TestArchiveRejectsArtifactSymlink(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	c := object.NewClient(s)

	dir, err := c.NewDirectory(ctx, object.Map{"data": object.String("d")})
	if err != nil {
		t.Fatal(err)
	}
	link, err := c.NewSymlink(ctx, dir, object.String("data"))
	if err != nil {
		t.Fatal(err)
	}
	tree, err := c.NewDirectory(ctx, object.Map{"link": link})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Archive(ctx, s, tree, ArchiveTar); err == nil {
		t.Error("want error for artifact-target symlink")
	}
}

func TestExtractStripsLeadingDotSlash(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	c := object.NewClient(s)

	tree, err := c.NewDirectory(ctx, object.Map{"file.txt": object.String("x")})
	if err != nil {
		t.Fatal(err)
	}
	blob, err := Archive(ctx, s, tree, ArchiveTar)
	if err != nil {
		t.Fatal(err)
	}
	extracted, err := Extract(ctx, s, blob, ArchiveTar)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := extracted.(*object.Directory).Get(ctx, s, "file.txt"); err != nil {
		t.Errorf("file.txt: %v", err)
	}
}
