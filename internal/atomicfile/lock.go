package atomicfile

import (
	"os"
)

// Flock is an advisory exclusive lock on a companion ".lock" file.
//
// The lock is advisory: it only excludes other cooperating Flock holders,
// and only on platforms with flock(2) (the lock is a no-op elsewhere).
// It is deliberately not part of WriteFile; storage layers wire it around
// their read-modify-write windows when multi-process isolation matters.
type Flock struct {
	path string
	file *os.File
}

// AcquireFlock takes an exclusive advisory lock guarding the given target
// path. The lock file is the target path with a ".lock" suffix; it is
// created if missing. The call blocks until the lock is held.
func AcquireFlock(target string) (*Flock, error) {
	lockPath := target + ".lock"

	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, &LockError{Path: lockPath, Err: err}
	}

	if err := lockFile(f); err != nil {
		f.Close()
		return nil, &LockError{Path: lockPath, Err: err}
	}

	return &Flock{path: lockPath, file: f}, nil
}

// Release drops the lock. Removing the lock file afterwards is best
// effort; a racing acquirer may already hold a descriptor to it.
func (l *Flock) Release() error {
	if l.file == nil {
		return nil
	}

	err := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil
	os.Remove(l.path)

	if err != nil {
		return &LockError{Path: l.path, Err: err}
	}
	if closeErr != nil {
		return &LockError{Path: l.path, Err: closeErr}
	}
	return nil
}
