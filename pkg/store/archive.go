package store

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/weftbuild/weft/pkg/object"
)

// ArchiveFormat names a supported container format.
type ArchiveFormat string

const (
	ArchiveTar ArchiveFormat = "tar"
	ArchiveZip ArchiveFormat = "zip"
)

// Archive packs an artifact into a container blob. Directory entries are
// written in sorted name order so the same artifact always archives to
// the same bytes. Symlinks whose target contains an artifact component
// cannot be represented in a container and fail.
func Archive(ctx context.Context, s object.Storage, a object.Artifact, format ArchiveFormat) (*object.Blob, error) {
	var buf bytes.Buffer
	switch format {
	case ArchiveTar:
		w := tar.NewWriter(&buf)
		if err := tarArtifact(ctx, s, w, "", a); err != nil {
			return nil, fmt.Errorf("archive tar: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("archive tar: %w", err)
		}
	case ArchiveZip:
		w := zip.NewWriter(&buf)
		if err := zipArtifact(ctx, s, w, "", a); err != nil {
			return nil, fmt.Errorf("archive zip: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("archive zip: %w", err)
		}
	default:
		return nil, fmt.Errorf("archive: unknown format %q", format)
	}
	return object.NewClient(s).NewBlob(ctx, object.Bytes(buf.Bytes()))
}

func tarArtifact(ctx context.Context, s object.Storage, w *tar.Writer, name string, a object.Artifact) error {
	switch a := a.(type) {
	case *object.Directory:
		if name != "" {
			if err := w.WriteHeader(&tar.Header{
				Typeflag: tar.TypeDir,
				Name:     name + "/",
				Mode:     0o755,
			}); err != nil {
				return err
			}
		}
		entries, err := a.Entries(ctx, s)
		if err != nil {
			return err
		}
		for _, entryName := range sortedEntryNames(entries) {
			if err := tarArtifact(ctx, s, w, path.Join(name, entryName), entries[entryName]); err != nil {
				return err
			}
		}
		return nil
	case *object.File:
		p, err := a.Payload(ctx, s)
		if err != nil {
			return err
		}
		data, err := p.Contents.Bytes(ctx, s)
		if err != nil {
			return err
		}
		mode := int64(0o644)
		if p.Executable {
			mode = 0o755
		}
		if err := w.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     name,
			Mode:     mode,
			Size:     int64(len(data)),
		}); err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case *object.Symlink:
		target, err := symlinkTargetString(ctx, s, a)
		if err != nil {
			return err
		}
		return w.WriteHeader(&tar.Header{
			Typeflag: tar.TypeSymlink,
			Name:     name,
			Linkname: target,
			Mode:     0o777,
		})
	default:
		return fmt.Errorf("unknown artifact %T", a)
	}
}

func zipArtifact(ctx context.Context, s object.Storage, w *zip.Writer, name string, a object.Artifact) error {
	switch a := a.(type) {
	case *object.Directory:
		if name != "" {
			header := &zip.FileHeader{Name: name + "/"}
			header.SetMode(os.ModeDir | 0o755)
			if _, err := w.CreateHeader(header); err != nil {
				return err
			}
		}
		entries, err := a.Entries(ctx, s)
		if err != nil {
			return err
		}
		for _, entryName := range sortedEntryNames(entries) {
			if err := zipArtifact(ctx, s, w, path.Join(name, entryName), entries[entryName]); err != nil {
				return err
			}
		}
		return nil
	case *object.File:
		p, err := a.Payload(ctx, s)
		if err != nil {
			return err
		}
		data, err := p.Contents.Bytes(ctx, s)
		if err != nil {
			return err
		}
		mode := os.FileMode(0o644)
		if p.Executable {
			mode = 0o755
		}
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		header.SetMode(mode)
		fw, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		_, err = fw.Write(data)
		return err
	case *object.Symlink:
		target, err := symlinkTargetString(ctx, s, a)
		if err != nil {
			return err
		}
		header := &zip.FileHeader{Name: name}
		header.SetMode(os.ModeSymlink | 0o777)
		fw, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		_, err = fw.Write([]byte(target))
		return err
	default:
		return fmt.Errorf("unknown artifact %T", a)
	}
}

// symlinkTargetString renders a symlink target for a container entry.
// Only bare-path targets can be represented.
func symlinkTargetString(ctx context.Context, s object.Storage, l *object.Symlink) (string, error) {
	artifact, err := l.Artifact(ctx, s)
	if err != nil {
		return "", err
	}
	if artifact != nil {
		return "", fmt.Errorf("symlink with an artifact target cannot be archived")
	}
	return l.Path(ctx, s)
}

// Extract unpacks a container blob into an artifact.
func Extract(ctx context.Context, s object.Storage, b *object.Blob, format ArchiveFormat) (object.Artifact, error) {
	data, err := b.Bytes(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	client := object.NewClient(s)
	entries := make(object.Map)

	switch format {
	case ArchiveTar:
		r := tar.NewReader(bytes.NewReader(data))
		for {
			header, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("extract tar: %w", err)
			}
			name := cleanEntryName(header.Name)
			if name == "" {
				continue
			}
			switch header.Typeflag {
			case tar.TypeDir:
				entries[name] = object.Map{}
			case tar.TypeReg:
				contents, err := io.ReadAll(r)
				if err != nil {
					return nil, fmt.Errorf("extract tar %q: %w", name, err)
				}
				file, err := client.NewFile(ctx, object.Map{
					"contents":   object.Bytes(contents),
					"executable": object.Bool(header.FileInfo().Mode()&0o111 != 0),
				})
				if err != nil {
					return nil, fmt.Errorf("extract tar %q: %w", name, err)
				}
				entries[name] = file
			case tar.TypeSymlink:
				link, err := client.NewSymlink(ctx, object.String(header.Linkname))
				if err != nil {
					return nil, fmt.Errorf("extract tar %q: %w", name, err)
				}
				entries[name] = link
			default:
				return nil, fmt.Errorf("extract tar %q: unsupported entry type %d", name, header.Typeflag)
			}
		}
	case ArchiveZip:
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("extract zip: %w", err)
		}
		for _, entry := range r.File {
			name := cleanEntryName(entry.Name)
			if name == "" {
				continue
			}
			mode := entry.Mode()
			switch {
			case mode.IsDir():
				entries[name] = object.Map{}
			case mode&os.ModeSymlink != 0:
				rc, err := entry.Open()
				if err != nil {
					return nil, fmt.Errorf("extract zip %q: %w", name, err)
				}
				target, err := io.ReadAll(rc)
				rc.Close()
				if err != nil {
					return nil, fmt.Errorf("extract zip %q: %w", name, err)
				}
				link, err := client.NewSymlink(ctx, object.String(string(target)))
				if err != nil {
					return nil, fmt.Errorf("extract zip %q: %w", name, err)
				}
				entries[name] = link
			default:
				rc, err := entry.Open()
				if err != nil {
					return nil, fmt.Errorf("extract zip %q: %w", name, err)
				}
				contents, err := io.ReadAll(rc)
				rc.Close()
				if err != nil {
					return nil, fmt.Errorf("extract zip %q: %w", name, err)
				}
				file, err := client.NewFile(ctx, object.Map{
					"contents":   object.Bytes(contents),
					"executable": object.Bool(mode&0o111 != 0),
				})
				if err != nil {
					return nil, fmt.Errorf("extract zip %q: %w", name, err)
				}
				entries[name] = file
			}
		}
	default:
		return nil, fmt.Errorf("extract: unknown format %q", format)
	}

	return client.NewDirectory(ctx, entries)
}

// cleanEntryName normalizes a container entry name to a clean relative
// path, or "" for the container root.
func cleanEntryName(name string) string {
	name = path.Clean("/" + name)
	return name[1:]
}

func sortedEntryNames(entries map[string]object.Artifact) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
