package state

import (
	"errors"
	"fmt"
)

// Sentinel errors categorizing patch failures. Match them with
// errors.Is; use errors.As with *PatchError for the failing operation's
// details.
var (
	// ErrPathNotFound reports a replace, remove, test or move source
	// addressing a path that does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrIndexOutOfRange reports a sequence index at or beyond the
	// sequence length where an existing element is required.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrTestFailed reports a test operation whose expected value did
	// not deep-equal the value at the path.
	ErrTestFailed = errors.New("test failed")

	// ErrUnsupportedOperation reports an unknown op tag.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// PatchError describes the first failing operation of a batch. The
// caller's tree is never modified when Apply returns a PatchError.
type PatchError struct {
	// OpIndex is the position of the failing operation in the batch.
	OpIndex int
	// Op is the operation tag ("add", "remove", ...).
	Op string
	// Path is the operation path in wire form.
	Path string
	// Expected and Actual are populated for test failures.
	Expected *Value
	Actual   *Value

	kind error
}

func newPatchError(kind error, opIndex int, op, path string) *PatchError {
	return &PatchError{OpIndex: opIndex, Op: op, Path: path, kind: kind}
}

// Error implements the error interface.
func (e *PatchError) Error() string {
	if errors.Is(e.kind, ErrTestFailed) {
		exp, _ := e.Expected.MarshalJSON()
		act, _ := e.Actual.MarshalJSON()
		return fmt.Sprintf("patch op %d (%s %s): %v: expected %s, actual %s",
			e.OpIndex, e.Op, e.Path, e.kind, exp, act)
	}
	return fmt.Sprintf("patch op %d (%s %s): %v", e.OpIndex, e.Op, e.Path, e.kind)
}

// Unwrap exposes the category sentinel for errors.Is.
func (e *PatchError) Unwrap() error { return e.kind }
