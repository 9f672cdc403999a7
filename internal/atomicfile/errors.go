package atomicfile

import "fmt"

// Op identifies the filesystem operation that failed.
type Op string

// Filesystem operation kinds reported by IOError.
const (
	OpRead      Op = "read"
	OpWrite     Op = "write"
	OpCreate    Op = "create"
	OpDelete    Op = "delete"
	OpRename    Op = "rename"
	OpCreateDir Op = "create directory"
	OpReadDir   Op = "read directory"
	OpSync      Op = "sync"
)

// IOError reports a failed filesystem operation with enough context to act
// on: which operation, on which path, and optionally what the operation
// was part of (e.g. "temporary file", "after 3 attempts").
type IOError struct {
	Op      Op     // The operation that failed
	Path    string // The path the operation targeted
	Context string // Optional extra context, empty when none
	Err     error  // The underlying error
}

func (e *IOError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("failed to %s %s at %q: %v", e.Op, e.Context, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s file at %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *IOError) Unwrap() error { return e.Err }

// LockError reports a failure to acquire or release an advisory file lock.
type LockError struct {
	Path string // The lock file path
	Err  error  // The underlying error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("failed to acquire file lock for %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *LockError) Unwrap() error { return e.Err }

// PathResolutionError reports a path that cannot participate in the atomic
// write protocol, such as a target with no parent directory component.
type PathResolutionError struct {
	Path   string // The offending path
	Reason string // Why it cannot be resolved
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve path %q: %s", e.Path, e.Reason)
}
