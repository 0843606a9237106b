package object

import (
	"context"
	"fmt"
	"runtime"
)

// Target is a handle to a deferred, content-addressed computation
// description. Evaluating a target is external; this layer only
// constructs and stores the description.
type Target struct {
	c *cell
}

// TargetPayload is the stored form of a Target. Module is an opaque
// module reference carried for the external evaluator; Env and Args hold
// canonical values only.
type TargetPayload struct {
	Host       string
	Executable *Template
	Module     string
	Name       string
	Env        Map
	Args       List
	Checksum   string
	Unsafe     bool
	Network    bool
}

func (*TargetPayload) Kind() Kind { return KindTarget }
func (*TargetPayload) isPayload() {}

// NewTargetFromPayload wraps an in-memory payload in a handle.
func NewTargetFromPayload(p *TargetPayload) *Target {
	return &Target{c: newCellFromPayload(p)}
}

// NewTargetFromID wraps a content id in a handle; the payload loads
// lazily.
func NewTargetFromID(id ID) *Target {
	return &Target{c: newCellFromID(id)}
}

// ID returns the target's content id, storing the payload on first
// request.
func (t *Target) ID(ctx context.Context, s Storage) (ID, error) {
	return t.c.ensureID(ctx, s)
}

// Payload returns the target's payload, loading it on first request.
func (t *Target) Payload(ctx context.Context, s Storage) (*TargetPayload, error) {
	p, err := t.c.ensurePayload(ctx, s)
	if err != nil {
		return nil, err
	}
	tp, ok := p.(*TargetPayload)
	if !ok {
		return nil, fmt.Errorf("target payload: unexpected kind %s", p.Kind())
	}
	return tp, nil
}

// DefaultHost identifies the system the current process runs on.
func DefaultHost() string {
	return runtime.GOARCH + "-" + runtime.GOOS
}

// NewTarget constructs a target. A string, artifact, or template argument
// sets the executable. An existing Target overrides every field. A map
// patches individual fields; its "env" value is a map folded entry by
// entry through the mutation engine, so env values may be mutations
// (template_append for PATH-style composition); "args" values accumulate
// via append. Host defaults to the current system.
func (c *Client) NewTarget(ctx context.Context, args ...Value) (*Target, error) {
	fields, err := apply(ctx, args, func(ctx context.Context, arg Value) (Value, error) {
		switch arg := arg.(type) {
		case String, *Directory, *File, *Symlink, *Template:
			return Map{"executable": arg}, nil
		case *Target:
			p, err := arg.Payload(ctx, c.storage)
			if err != nil {
				return nil, err
			}
			return Map{
				"host":       Set(String(p.Host)),
				"executable": Set(p.Executable),
				"module":     Set(String(p.Module)),
				"name":       Set(String(p.Name)),
				"env":        Append(p.Env),
				"args":       Append(p.Args),
				"checksum":   Set(String(p.Checksum)),
				"unsafe":     Set(Bool(p.Unsafe)),
				"network":    Set(Bool(p.Network)),
			}, nil
		case Map:
			out := make(Map, len(arg))
			for key, v := range arg {
				switch key {
				case "host", "executable", "module", "name", "checksum", "unsafe", "network":
					out[key] = v
				case "env":
					if _, ok := v.(Map); !ok {
						return nil, fmt.Errorf("target: %w: env is %T, not a map", ErrInvalidValue, v)
					}
					out[key] = Append(v)
				case "args":
					if _, isMutation := v.(*Mutation); isMutation {
						out[key] = v
					} else {
						out[key] = Append(v)
					}
				default:
					return nil, fmt.Errorf("target: %w: unknown key %q", ErrInvalidValue, key)
				}
			}
			return out, nil
		default:
			return nil, fmt.Errorf("target: %w: argument is %T", ErrInvalidValue, arg)
		}
	})
	if err != nil {
		return nil, err
	}

	p := &TargetPayload{Host: DefaultHost(), Env: Map{}}

	if v, ok := fields["host"]; ok {
		host, ok := v.(String)
		if !ok {
			return nil, fmt.Errorf("target: %w: host is %T, not a string", ErrInvalidValue, v)
		}
		p.Host = string(host)
	}

	executable, ok := fields["executable"]
	if !ok {
		return nil, fmt.Errorf("target: %w: no executable", ErrInvalidValue)
	}
	if !templateCoercible(executable) {
		return nil, fmt.Errorf("target: %w: executable is %T", ErrInvalidValue, executable)
	}
	p.Executable, err = NewTemplate(ctx, executable)
	if err != nil {
		return nil, fmt.Errorf("target executable: %w", err)
	}

	if v, ok := fields["module"]; ok {
		module, ok := v.(String)
		if !ok {
			return nil, fmt.Errorf("target: %w: module is %T, not a string", ErrInvalidValue, v)
		}
		p.Module = string(module)
	}
	if v, ok := fields["name"]; ok {
		name, ok := v.(String)
		if !ok {
			return nil, fmt.Errorf("target: %w: name is %T, not a string", ErrInvalidValue, v)
		}
		p.Name = string(name)
	}
	if v, ok := fields["checksum"]; ok {
		checksum, ok := v.(String)
		if !ok {
			return nil, fmt.Errorf("target: %w: checksum is %T, not a string", ErrInvalidValue, v)
		}
		p.Checksum = string(checksum)
	}
	if v, ok := fields["unsafe"]; ok {
		b, ok := v.(Bool)
		if !ok {
			return nil, fmt.Errorf("target: %w: unsafe is %T, not a boolean", ErrInvalidValue, v)
		}
		p.Unsafe = bool(b)
	}
	if v, ok := fields["network"]; ok {
		b, ok := v.(Bool)
		if !ok {
			return nil, fmt.Errorf("target: %w: network is %T, not a boolean", ErrInvalidValue, v)
		}
		p.Network = bool(b)
	}

	// Env maps were accumulated in argument order; fold each one's
	// entries through the mutation engine so later arguments can set,
	// unset, or template-extend earlier values.
	if v, ok := fields["env"]; ok {
		envs, ok := v.(List)
		if !ok {
			return nil, fmt.Errorf("target: %w: env is %T", ErrInvalidValue, v)
		}
		for _, elem := range envs {
			env, ok := elem.(Map)
			if !ok {
				return nil, fmt.Errorf("target: %w: env entry is %T, not a map", ErrInvalidValue, elem)
			}
			for _, key := range sortedKeys(env) {
				if err := applyValue(ctx, p.Env, key, env[key]); err != nil {
					return nil, fmt.Errorf("target env: %w", err)
				}
			}
		}
	}

	if v, ok := fields["args"]; ok {
		args, ok := v.(List)
		if !ok {
			return nil, fmt.Errorf("target: %w: args is %T", ErrInvalidValue, v)
		}
		p.Args = args
	}

	if err := validateCanonical(Map(p.Env)); err != nil {
		return nil, fmt.Errorf("target env: %w", err)
	}
	if err := validateCanonical(p.Args); err != nil {
		return nil, fmt.Errorf("target args: %w", err)
	}

	return NewTargetFromPayload(p), nil
}

// validateCanonical rejects values that must not appear in a finished
// object: mutations and unresolved futures are consumed during
// construction and never stored.
func validateCanonical(v Value) error {
	switch v := v.(type) {
	case nil, Bool, Number, String, Bytes, Path,
		*Blob, *Directory, *File, *Symlink, *Target, *Template, Placeholder:
		return nil
	case List:
		for _, elem := range v {
			if err := validateCanonical(elem); err != nil {
				return err
			}
		}
		return nil
	case Map:
		for _, elem := range v {
			if err := validateCanonical(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T is not a canonical value", ErrInvalidValue, v)
	}
}
