package object

import (
	"errors"
	"fmt"
)

// Construction and resolution failures. Constructors are all-or-nothing:
// any of these aborts the whole call and no partial object is returned.
var (
	// ErrInvalidValue reports a value whose runtime shape matches no
	// recognized Value variant.
	ErrInvalidValue = errors.New("invalid value")

	// ErrTypeMismatch reports an array or template mutation applied to an
	// existing field that is not array- or template-coercible.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidTemplate reports a template whose component shape is
	// outside the permitted forms for its position (for example a symlink
	// target with more than two components).
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidSymlink reports a symlink with neither artifact nor path,
	// or a structurally impossible combination during resolution.
	ErrInvalidSymlink = errors.New("invalid symlink")

	// ErrExpectedDirectory reports a path traversal that reached a File or
	// Symlink where a Directory was required.
	ErrExpectedDirectory = errors.New("expected a directory")

	// ErrNotFound reports a missing stored object or directory entry.
	ErrNotFound = errors.New("not found")

	// ErrSymlinkCycle reports a symlink chain that revisits a symlink
	// already being resolved. Resolution fails fast instead of hanging.
	ErrSymlinkCycle = errors.New("symlink cycle")
)

func errInvalidValuef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}
