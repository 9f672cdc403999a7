// Package appdir resolves per-application configuration and data
// directories. It exists so callers can point a FileStorage or
// DirStorage at the right place on any OS without hardcoding paths.
//
// Three resolution strategies are available: the OS-standard locations,
// forced XDG layout (~/.config and ~/.local/share on every platform),
// and a caller-supplied base directory. Directories are created on first
// resolution.
package appdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dreamware/migra/internal/atomicfile"
)

// ErrHomeDirNotFound is returned when the user's home or OS-standard
// base directory cannot be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

type strategyKind int

const (
	kindSystem strategyKind = iota
	kindXDG
	kindCustom
)

// Strategy selects how a base directory is resolved.
type Strategy struct {
	kind strategyKind
	base string
}

// System resolves to the OS-standard locations (XDG on Linux,
// ~/Library/Application Support on macOS, %AppData% on Windows).
func System() Strategy { return Strategy{kind: kindSystem} }

// XDG forces the XDG layout on every platform: ~/.config for
// configuration and ~/.local/share for data.
func XDG() Strategy { return Strategy{kind: kindXDG} }

// CustomBase resolves under the given directory: {base}/{app} for
// configuration and {base}/data/{app} for data.
func CustomBase(base string) Strategy { return Strategy{kind: kindCustom, base: base} }

// Paths resolves and creates an application's config and data
// directories. The config and data strategies are independent so an app
// can, for example, keep config in the system location but data under a
// custom base.
type Paths struct {
	app    string
	config Strategy
	data   Strategy
}

// New returns a resolver for the named application using the System
// strategy for both directories.
func New(app string) *Paths {
	return &Paths{app: app, config: System(), data: System()}
}

// WithConfigStrategy sets the configuration directory strategy.
func (p *Paths) WithConfigStrategy(s Strategy) *Paths {
	p.config = s
	return p
}

// WithDataStrategy sets the data directory strategy.
func (p *Paths) WithDataStrategy(s Strategy) *Paths {
	p.data = s
	return p
}

// ConfigDir resolves the configuration directory, creating it if needed.
func (p *Paths) ConfigDir() (string, error) {
	dir, err := p.resolveConfigDir()
	if err != nil {
		return "", err
	}
	return dir, ensureDir(dir)
}

// DataDir resolves the data directory, creating it if needed.
func (p *Paths) DataDir() (string, error) {
	dir, err := p.resolveDataDir()
	if err != nil {
		return "", err
	}
	return dir, ensureDir(dir)
}

// ConfigFile resolves a filename inside the configuration directory.
func (p *Paths) ConfigFile(name string) (string, error) {
	dir, err := p.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DataFile resolves a filename inside the data directory.
func (p *Paths) DataFile(name string) (string, error) {
	dir, err := p.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (p *Paths) resolveConfigDir() (string, error) {
	switch p.config.kind {
	case kindSystem:
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHomeDirNotFound, err)
		}
		return filepath.Join(base, p.app), nil
	case kindXDG:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHomeDirNotFound, err)
		}
		return filepath.Join(home, ".config", p.app), nil
	default:
		return filepath.Join(p.config.base, p.app), nil
	}
}

func (p *Paths) resolveDataDir() (string, error) {
	switch p.data.kind {
	case kindSystem:
		base, err := systemDataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, p.app), nil
	case kindXDG:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHomeDirNotFound, err)
		}
		return filepath.Join(home, ".local", "share", p.app), nil
	default:
		return filepath.Join(p.data.base, "data", p.app), nil
	}
}

// systemDataDir returns the OS-standard base for application data. The
// standard library covers config but not data, so the platform split
// lives here.
func systemDataDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHomeDirNotFound, err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		if dir := os.Getenv("AppData"); dir != "" {
			return dir, nil
		}
		return "", ErrHomeDirNotFound
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHomeDirNotFound, err)
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &atomicfile.IOError{Op: atomicfile.OpCreateDir, Path: dir, Err: err}
	}
	return nil
}
