//go:build unix

package atomicfile

import (
	"os"
	"syscall"
)

// lockFile takes an exclusive flock(2) lock, blocking until acquired.
func lockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
}

// unlockFile releases the flock(2) lock.
func unlockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
