package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/weftbuild/weft/pkg/object"
)

// Checkin imports a filesystem path as an artifact. Regular files become
// File artifacts (preserving the executable bit), directories recurse,
// and symlinks become Symlink artifacts with their literal link target.
func Checkin(ctx context.Context, s object.Storage, fsPath string) (object.Artifact, error) {
	client := object.NewClient(s)
	info, err := os.Lstat(fsPath)
	if err != nil {
		return nil, fmt.Errorf("checkin %s: %w", fsPath, err)
	}
	return checkinArtifact(ctx, client, fsPath, info)
}

func checkinArtifact(ctx context.Context, client *object.Client, fsPath string, info os.FileInfo) (object.Artifact, error) {
	switch {
	case info.Mode().IsDir():
		dirEntries, err := os.ReadDir(fsPath)
		if err != nil {
			return nil, fmt.Errorf("checkin %s: %w", fsPath, err)
		}
		sort.Slice(dirEntries, func(i, j int) bool { return dirEntries[i].Name() < dirEntries[j].Name() })
		entries := make(object.Map, len(dirEntries))
		for _, entry := range dirEntries {
			childPath := filepath.Join(fsPath, entry.Name())
			childInfo, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("checkin %s: %w", childPath, err)
			}
			child, err := checkinArtifact(ctx, client, childPath, childInfo)
			if err != nil {
				return nil, err
			}
			entries[entry.Name()] = child
		}
		return client.NewDirectory(ctx, entries)

	case info.Mode().IsRegular():
		contents, err := os.ReadFile(fsPath)
		if err != nil {
			return nil, fmt.Errorf("checkin %s: %w", fsPath, err)
		}
		return client.NewFile(ctx, object.Map{
			"contents":   object.Bytes(contents),
			"executable": object.Bool(info.Mode()&0o111 != 0),
		})

	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(fsPath)
		if err != nil {
			return nil, fmt.Errorf("checkin %s: %w", fsPath, err)
		}
		return client.NewSymlink(ctx, object.String(target))

	default:
		return nil, fmt.Errorf("checkin %s: unsupported file type %s", fsPath, info.Mode())
	}
}

// Checkout materializes an artifact at a filesystem path. Symlinks whose
// target contains an artifact component cannot be materialized and fail.
func Checkout(ctx context.Context, s object.Storage, a object.Artifact, fsPath string) error {
	switch a := a.(type) {
	case *object.Directory:
		if err := os.MkdirAll(fsPath, 0o755); err != nil {
			return fmt.Errorf("checkout %s: %w", fsPath, err)
		}
		entries, err := a.Entries(ctx, s)
		if err != nil {
			return fmt.Errorf("checkout %s: %w", fsPath, err)
		}
		for _, name := range sortedEntryNames(entries) {
			if err := Checkout(ctx, s, entries[name], filepath.Join(fsPath, name)); err != nil {
				return err
			}
		}
		return nil

	case *object.File:
		p, err := a.Payload(ctx, s)
		if err != nil {
			return fmt.Errorf("checkout %s: %w", fsPath, err)
		}
		data, err := p.Contents.Bytes(ctx, s)
		if err != nil {
			return fmt.Errorf("checkout %s: %w", fsPath, err)
		}
		mode := os.FileMode(0o644)
		if p.Executable {
			mode = 0o755
		}
		if err := os.WriteFile(fsPath, data, mode); err != nil {
			return fmt.Errorf("checkout %s: %w", fsPath, err)
		}
		return nil

	case *object.Symlink:
		target, err := symlinkTargetString(ctx, s, a)
		if err != nil {
			return fmt.Errorf("checkout %s: %w", fsPath, err)
		}
		if err := os.Symlink(target, fsPath); err != nil {
			return fmt.Errorf("checkout %s: %w", fsPath, err)
		}
		return nil

	default:
		return fmt.Errorf("checkout %s: unknown artifact %T", fsPath, a)
	}
}
