package object

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Symlink is a handle to a symlink artifact. Its target is a template of
// at most two components: an optional leading artifact and an optional
// path, serialized as [artifact], [path], or [artifact, "/"+path].
type Symlink struct {
	c *cell
}

// SymlinkPayload is the stored form of a Symlink.
type SymlinkPayload struct {
	Target *Template
}

func (*SymlinkPayload) Kind() Kind { return KindSymlink }
func (*SymlinkPayload) isPayload() {}

// NewSymlinkFromPayload wraps an in-memory payload in a handle.
func NewSymlinkFromPayload(p *SymlinkPayload) *Symlink {
	return &Symlink{c: newCellFromPayload(p)}
}

// NewSymlinkFromID wraps a content id in a handle; the payload loads
// lazily.
func NewSymlinkFromID(id ID) *Symlink {
	return &Symlink{c: newCellFromID(id)}
}

// ID returns the symlink's content id, storing the payload on first
// request.
func (l *Symlink) ID(ctx context.Context, s Storage) (ID, error) {
	return l.c.ensureID(ctx, s)
}

// Payload returns the symlink's payload, loading it on first request.
func (l *Symlink) Payload(ctx context.Context, s Storage) (*SymlinkPayload, error) {
	p, err := l.c.ensurePayload(ctx, s)
	if err != nil {
		return nil, err
	}
	lp, ok := p.(*SymlinkPayload)
	if !ok {
		return nil, fmt.Errorf("symlink payload: unexpected kind %s", p.Kind())
	}
	return lp, nil
}

// Target returns the symlink's canonical target template.
func (l *Symlink) Target(ctx context.Context, s Storage) (*Template, error) {
	p, err := l.Payload(ctx, s)
	if err != nil {
		return nil, err
	}
	return p.Target, nil
}

// Artifact returns the symlink target's artifact component, or nil if
// the target is a bare path.
func (l *Symlink) Artifact(ctx context.Context, s Storage) (Artifact, error) {
	p, err := l.Payload(ctx, s)
	if err != nil {
		return nil, err
	}
	artifact, _, err := decomposeTarget(p.Target)
	return artifact, err
}

// Path returns the symlink target's path component, or "" if the target
// is a bare artifact.
func (l *Symlink) Path(ctx context.Context, s Storage) (string, error) {
	p, err := l.Payload(ctx, s)
	if err != nil {
		return "", err
	}
	_, target, err := decomposeTarget(p.Target)
	return target, err
}

// NewSymlink constructs a symlink by folding the arguments left to right.
// String and path arguments concatenate onto the accumulated path. An
// artifact argument becomes the target artifact and clears any previously
// accumulated path. A template of at most two components decomposes into
// artifact and/or path; an existing symlink contributes its own artifact
// and path. The result must have at least one of artifact and path.
func (c *Client) NewSymlink(ctx context.Context, args ...Value) (*Symlink, error) {
	resolved, err := Resolve(ctx, List(args))
	if err != nil {
		return nil, err
	}

	var artifact Artifact
	var targetPath string
	setArtifact := func(a Artifact) {
		artifact = a
		targetPath = ""
	}

	for _, arg := range flatten(nil, resolved) {
		switch arg := arg.(type) {
		case String:
			targetPath += string(arg)
		case Path:
			targetPath += string(arg)
		case *Directory, *File:
			setArtifact(arg.(Artifact))
		case *Template:
			a, p, err := decomposeTarget(arg)
			if err != nil {
				return nil, err
			}
			if a != nil {
				setArtifact(a)
			}
			targetPath += p
		case *Symlink:
			p, err := arg.Payload(ctx, c.storage)
			if err != nil {
				return nil, err
			}
			a, tp, err := decomposeTarget(p.Target)
			if err != nil {
				return nil, err
			}
			if a != nil {
				setArtifact(a)
			}
			targetPath += tp
		default:
			return nil, fmt.Errorf("symlink: %w: argument is %T", ErrInvalidValue, arg)
		}
	}

	target, err := composeTarget(ctx, artifact, targetPath)
	if err != nil {
		return nil, err
	}
	return NewSymlinkFromPayload(&SymlinkPayload{Target: target}), nil
}

// composeTarget serializes (artifact, path) into the canonical template:
// [artifact], [artifact, "/"+path], or [path]. Neither present is
// ErrInvalidSymlink.
func composeTarget(ctx context.Context, artifact Artifact, targetPath string) (*Template, error) {
	switch {
	case artifact != nil && targetPath == "":
		return NewTemplate(ctx, artifact)
	case artifact != nil:
		return NewTemplate(ctx, artifact, String("/"+targetPath))
	case targetPath != "":
		return NewTemplate(ctx, String(targetPath))
	default:
		return nil, fmt.Errorf("symlink: %w: neither artifact nor path", ErrInvalidSymlink)
	}
}

// decomposeTarget extracts (artifact, path) from a candidate target
// template. Permitted shapes: one string component, one artifact
// component, or an artifact followed by a string beginning with "/" (the
// leading slash is stripped).
func decomposeTarget(t *Template) (Artifact, string, error) {
	components := t.Components()
	switch len(components) {
	case 1:
		switch c := components[0].(type) {
		case String:
			return nil, string(c), nil
		case Artifact:
			return c, "", nil
		}
	case 2:
		artifact, ok := components[0].(Artifact)
		if !ok {
			break
		}
		s, ok := components[1].(String)
		if !ok || !strings.HasPrefix(string(s), "/") {
			break
		}
		return artifact, strings.TrimPrefix(string(s), "/"), nil
	}
	return nil, "", fmt.Errorf("symlink target: %w: %d components", ErrInvalidTemplate, len(components))
}

// Location is the context a symlink is resolved from: the artifact being
// traversed and the base path within it.
type Location struct {
	Artifact Artifact
	Path     string
}

// symlinkVisit identifies one in-progress resolution. Keying on both the
// link and its location lets one walk traverse the same link handle at
// two different places without a false cycle report.
type symlinkVisit struct {
	link *Symlink
	from Location
}

// Resolve follows the symlink to a concrete artifact. A bare-artifact
// target returns the artifact directly. A bare-path target resolves
// relative to from's directory at the parent of from's path. An
// artifact+path target looks the path up inside the artifact, resolving
// the artifact itself first if it is another symlink. A missing entry
// returns nil; a cyclic chain fails with ErrSymlinkCycle.
func (l *Symlink) Resolve(ctx context.Context, s Storage, from *Location) (Artifact, error) {
	return l.resolve(ctx, s, from, make(map[symlinkVisit]bool))
}

func (l *Symlink) resolve(ctx context.Context, s Storage, from *Location, visited map[symlinkVisit]bool) (Artifact, error) {
	visit := symlinkVisit{link: l}
	if from != nil {
		visit.from = *from
	}
	if visited[visit] {
		return nil, fmt.Errorf("symlink resolve: %w", ErrSymlinkCycle)
	}
	visited[visit] = true
	defer delete(visited, visit)

	p, err := l.Payload(ctx, s)
	if err != nil {
		return nil, err
	}
	artifact, targetPath, err := decomposeTarget(p.Target)
	if err != nil {
		return nil, err
	}

	switch {
	case artifact != nil && targetPath == "":
		return artifact, nil

	case artifact == nil:
		if from == nil {
			return nil, fmt.Errorf("symlink resolve: %w: relative target with no context", ErrInvalidSymlink)
		}
		dir, ok := from.Artifact.(*Directory)
		if !ok {
			return nil, fmt.Errorf("symlink resolve: %w: context is %T", ErrExpectedDirectory, from.Artifact)
		}
		joined := path.Join(parentPath(from.Path), targetPath)
		if joined == "" || joined == "." || strings.HasPrefix(joined, "../") || joined == ".." {
			return nil, fmt.Errorf("symlink resolve %q: %w: escapes context", targetPath, ErrInvalidSymlink)
		}
		return dir.tryGet(ctx, s, joined, visited)

	default:
		base := artifact
		if link, ok := base.(*Symlink); ok {
			resolved, err := link.resolve(ctx, s, from, visited)
			if err != nil {
				return nil, err
			}
			base = resolved
		}
		dir, ok := base.(*Directory)
		if !ok {
			return nil, fmt.Errorf("symlink resolve: %w: target artifact is %T", ErrExpectedDirectory, base)
		}
		return dir.tryGet(ctx, s, targetPath, visited)
	}
}

// parentPath returns the path with its last component removed, or "" for
// a single-component path.
func parentPath(p string) string {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return ""
	}
	return p[:idx]
}
