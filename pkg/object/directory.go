package object

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Directory is a handle to a directory artifact: a name-keyed mapping to
// child artifacts. Entry names are single path components; slash-separated
// paths supplied at construction are split into nested directories.
type Directory struct {
	c *cell
}

// DirectoryPayload is the stored form of a Directory.
type DirectoryPayload struct {
	Entries map[string]Artifact
}

func (*DirectoryPayload) Kind() Kind { return KindDirectory }
func (*DirectoryPayload) isPayload() {}

// NewDirectoryFromPayload wraps an in-memory payload in a handle.
func NewDirectoryFromPayload(p *DirectoryPayload) *Directory {
	return &Directory{c: newCellFromPayload(p)}
}

// NewDirectoryFromID wraps a content id in a handle; the payload loads
// lazily.
func NewDirectoryFromID(id ID) *Directory {
	return &Directory{c: newCellFromID(id)}
}

// ID returns the directory's content id, storing the payload on first
// request.
func (d *Directory) ID(ctx context.Context, s Storage) (ID, error) {
	return d.c.ensureID(ctx, s)
}

// Payload returns the directory's payload, loading it on first request.
func (d *Directory) Payload(ctx context.Context, s Storage) (*DirectoryPayload, error) {
	p, err := d.c.ensurePayload(ctx, s)
	if err != nil {
		return nil, err
	}
	dp, ok := p.(*DirectoryPayload)
	if !ok {
		return nil, fmt.Errorf("directory payload: unexpected kind %s", p.Kind())
	}
	return dp, nil
}

// Entries returns the directory's entry map.
func (d *Directory) Entries(ctx context.Context, s Storage) (map[string]Artifact, error) {
	p, err := d.Payload(ctx, s)
	if err != nil {
		return nil, err
	}
	return p.Entries, nil
}

// NewDirectory constructs a directory by folding the arguments left to
// right. An existing Directory merges its entries into the accumulator:
// entries merge recursively only when both sides are directories,
// otherwise the incoming entry wins. A map argument is keyed by
// slash-separated relative paths: the first component names the entry and
// the trailing path recurses into a child directory. A nil value deletes
// the entry; blob-coercible values become files; files and symlinks are
// stored verbatim; any other map or directory value merges recursively
// with the existing entry. Non-directory entries are never merged, only
// replaced.
func (c *Client) NewDirectory(ctx context.Context, args ...Value) (*Directory, error) {
	resolved, err := Resolve(ctx, List(args))
	if err != nil {
		return nil, err
	}
	entries := make(map[string]Artifact)
	for _, arg := range flatten(nil, resolved) {
		switch arg := arg.(type) {
		case *Directory:
			if err := c.mergeDirectory(ctx, entries, arg); err != nil {
				return nil, err
			}
		case Map:
			for _, key := range sortedKeys(arg) {
				if err := c.mergeEntry(ctx, entries, key, arg[key]); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("directory: %w: argument is %T", ErrInvalidValue, arg)
		}
	}
	return NewDirectoryFromPayload(&DirectoryPayload{Entries: entries}), nil
}

// mergeDirectory overlays incoming's entries name by name. Two directories
// at the same name merge recursively; any other pairing is last-writer-wins.
func (c *Client) mergeDirectory(ctx context.Context, entries map[string]Artifact, incoming *Directory) error {
	p, err := incoming.Payload(ctx, c.storage)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(p.Entries))
	for name := range p.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := p.Entries[name]
		existingDir, existingIsDir := entries[name].(*Directory)
		incomingDir, incomingIsDir := entry.(*Directory)
		if existingIsDir && incomingIsDir {
			merged, err := c.NewDirectory(ctx, existingDir, incomingDir)
			if err != nil {
				return fmt.Errorf("directory merge %q: %w", name, err)
			}
			entries[name] = merged
			continue
		}
		entries[name] = entry
	}
	return nil
}

// mergeEntry folds one (path, value) pair into the accumulator. An
// existing entry that is not a directory is discarded for merge purposes.
func (c *Client) mergeEntry(ctx context.Context, entries map[string]Artifact, key string, value Value) error {
	name, trailing, _ := strings.Cut(key, "/")
	if name == "" {
		return fmt.Errorf("directory: %w: empty path component in %q", ErrInvalidValue, key)
	}
	existingDir, _ := entries[name].(*Directory)

	if trailing != "" {
		var parent Value
		if existingDir != nil {
			parent = existingDir
		}
		child, err := c.NewDirectory(ctx, parent, Map{trailing: value})
		if err != nil {
			return fmt.Errorf("directory %q: %w", key, err)
		}
		entries[name] = child
		return nil
	}

	switch value := value.(type) {
	case nil:
		delete(entries, name)
	case String, Bytes, *Blob:
		file, err := c.NewFile(ctx, value)
		if err != nil {
			return fmt.Errorf("directory %q: %w", key, err)
		}
		entries[name] = file
	case *File:
		entries[name] = value
	case *Symlink:
		entries[name] = value
	case *Directory, Map:
		var parent Value
		if existingDir != nil {
			parent = existingDir
		}
		child, err := c.NewDirectory(ctx, parent, value)
		if err != nil {
			return fmt.Errorf("directory %q: %w", key, err)
		}
		entries[name] = child
	default:
		return fmt.Errorf("directory %q: %w: entry is %T", key, ErrInvalidValue, value)
	}
	return nil
}

// Get looks up a slash-separated path, resolving intermediate symlinks.
// A missing entry is ErrNotFound.
func (d *Directory) Get(ctx context.Context, s Storage, p string) (Artifact, error) {
	entry, err := d.TryGet(ctx, s, p)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("directory get %q: %w", p, ErrNotFound)
	}
	return entry, nil
}

// TryGet looks up a slash-separated path, resolving intermediate symlinks.
// A missing entry returns nil with no error.
func (d *Directory) TryGet(ctx context.Context, s Storage, p string) (Artifact, error) {
	return d.tryGet(ctx, s, p, make(map[symlinkVisit]bool))
}

// tryGet walks the path one component at a time. An intermediate symlink
// is resolved with the traversed-so-far directory and path as its context;
// visited threads through the walk and symlink resolution to detect
// cycles.
func (d *Directory) tryGet(ctx context.Context, s Storage, p string, visited map[symlinkVisit]bool) (Artifact, error) {
	components := strings.Split(strings.Trim(p, "/"), "/")
	current := d
	for i, name := range components {
		if name == "" || name == "." {
			return nil, fmt.Errorf("directory get %q: %w: invalid path component", p, ErrInvalidValue)
		}
		payload, err := current.Payload(ctx, s)
		if err != nil {
			return nil, err
		}
		entry, ok := payload.Entries[name]
		if !ok {
			return nil, nil
		}
		if i == len(components)-1 {
			return entry, nil
		}
		switch entry := entry.(type) {
		case *Directory:
			current = entry
		case *Symlink:
			from := &Location{
				Artifact: d,
				Path:     strings.Join(components[:i+1], "/"),
			}
			resolved, err := entry.resolve(ctx, s, from, visited)
			if err != nil {
				return nil, fmt.Errorf("directory get %q: %w", p, err)
			}
			dir, ok := resolved.(*Directory)
			if !ok {
				return nil, fmt.Errorf("directory get %q: %w: symlink %q resolves to %T", p, ErrExpectedDirectory, name, resolved)
			}
			current = dir
		default:
			return nil, fmt.Errorf("directory get %q: %w: %q is a file", p, ErrExpectedDirectory, name)
		}
	}
	return current, nil
}

func sortedKeys(m Map) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
