package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// renameFile is a variable to allow injecting rename failures in tests.
// This indirection lets tests exercise the retry loop without a
// misbehaving filesystem.
var renameFile = os.Rename

// Config controls the atomic write protocol.
type Config struct {
	// RetryCount is the number of rename attempts before giving up.
	// Values below 1 are treated as 1.
	RetryCount int

	// RetryDelay is the fixed sleep between rename attempts.
	RetryDelay time.Duration

	// CleanupTemp enables best-effort removal of stale temp files for the
	// same target after a successful write.
	CleanupTemp bool
}

// DefaultConfig returns the standard write configuration: three rename
// attempts, 10ms apart, with stale temp cleanup enabled.
func DefaultConfig() Config {
	return Config{
		RetryCount:  3,
		RetryDelay:  10 * time.Millisecond,
		CleanupTemp: true,
	}
}

// WriteFile writes data to path using the temp-file + fsync + atomic
// rename sequence described in the package documentation.
//
// On success the target path holds exactly the given content. On failure
// the target path is untouched: it still resolves to its previous content
// (or still does not exist). A temp file may be left behind after a
// failed rename; the next successful write to the same target removes it.
func WriteFile(path string, data []byte, cfg Config) error {
	if cfg.RetryCount < 1 {
		cfg.RetryCount = 1
	}

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		return &PathResolutionError{Path: path, Reason: "path has no file name"}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: OpCreateDir, Path: dir, Err: err}
	}

	tmpPath := filepath.Join(dir, tempName(name))

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return &IOError{Op: OpCreate, Path: tmpPath, Context: "temporary file", Err: err}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &IOError{Op: OpWrite, Path: tmpPath, Context: "temporary file", Err: err}
	}

	// Durability point: the content must be on disk before the rename
	// makes it visible under the target name.
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &IOError{Op: OpSync, Path: tmpPath, Context: "temporary file", Err: err}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: OpWrite, Path: tmpPath, Context: "closing temporary file", Err: err}
	}

	if err := renameWithRetry(tmpPath, path, cfg); err != nil {
		return err
	}

	if cfg.CleanupTemp {
		cleanupTemp(dir, name)
	}

	return nil
}

// renameWithRetry renames tmpPath onto target, retrying transient
// failures with a fixed delay. Only the rename retries; every other part
// of the protocol fails immediately.
func renameWithRetry(tmpPath, target string, cfg Config) error {
	var lastErr error

	for attempt := 0; attempt < cfg.RetryCount; attempt++ {
		if err := renameFile(tmpPath, target); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt+1 < cfg.RetryCount {
			time.Sleep(cfg.RetryDelay)
		}
	}

	return &IOError{
		Op:      OpRename,
		Path:    target,
		Context: fmt.Sprintf("after %d attempts", cfg.RetryCount),
		Err:     lastErr,
	}
}

// tempName builds the hidden temp-file name for a target file name.
// The pid separates concurrent processes; the random suffix separates
// concurrent writers within one process.
func tempName(name string) string {
	return fmt.Sprintf(".%s.tmp.%d.%s", name, os.Getpid(), uuid.NewString()[:8])
}

// tempPrefix is the stale-file match prefix for a target file name.
func tempPrefix(name string) string {
	return fmt.Sprintf(".%s.tmp.", name)
}

// cleanupTemp removes leftover temp files for the given target name.
// Best effort: every error, including the directory scan itself, is
// ignored.
func cleanupTemp(dir, name string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	prefix := tempPrefix(name)
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}

// IsTempName reports whether a file name looks like one of this package's
// temporary files. Used by tooling that scans storage directories.
func IsTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, ".tmp.")
}
