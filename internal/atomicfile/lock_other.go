//go:build !unix

package atomicfile

import "os"

// Advisory locking is unavailable off unix; the lock degrades to a
// lock-file marker with no exclusion. Acceptable for single-user desktop
// use, which is the only supported deployment on these platforms.

func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
