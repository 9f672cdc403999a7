package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dreamware/migra/internal/atomicfile"
	"github.com/dreamware/migra/internal/codec"
	"github.com/dreamware/migra/internal/migrate"
)

// DirStrategy configures a DirStorage. Start from DefaultDirStrategy and
// adjust with the With methods.
type DirStrategy struct {
	Codec  codec.Codec
	Atomic atomicfile.Config

	// Extension overrides the filename extension; empty means use the
	// codec's own.
	Extension string

	Encoding FilenameEncoding
}

// DefaultDirStrategy returns the JSON codec, default atomic-write
// settings, the codec's extension, and direct id encoding.
func DefaultDirStrategy() DirStrategy {
	return DirStrategy{
		Codec:    codec.JSON(),
		Atomic:   atomicfile.DefaultConfig(),
		Encoding: EncodingDirect,
	}
}

// WithCodec sets the serialization format.
func (s DirStrategy) WithCodec(c codec.Codec) DirStrategy {
	s.Codec = c
	return s
}

// WithAtomic sets the atomic-write configuration.
func (s DirStrategy) WithAtomic(cfg atomicfile.Config) DirStrategy {
	s.Atomic = cfg
	return s
}

// WithExtension overrides the filename extension.
func (s DirStrategy) WithExtension(ext string) DirStrategy {
	s.Extension = strings.TrimPrefix(ext, ".")
	return s
}

// WithEncoding sets the id-to-filename encoding.
func (s DirStrategy) WithEncoding(e FilenameEncoding) DirStrategy {
	s.Encoding = e
	return s
}

// extension returns the effective filename extension.
func (s DirStrategy) extension() string {
	if s.Extension != "" {
		return s.Extension
	}
	return s.Codec.Extension()
}

// DirStorage persists one entity instance per file under a base
// directory. Files are named {encoded_id}.{extension} and hold one flat
// tagged value. Every operation resolves its own path; there is no
// cached state between calls, so sequential calls always observe their
// own prior writes.
type DirStorage struct {
	dir      string
	migrator *migrate.Migrator
	strategy DirStrategy
}

// NewDirStorage creates the base directory if needed and returns a store
// over it.
func NewDirStorage(dir string, m *migrate.Migrator, strategy DirStrategy) (*DirStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &atomicfile.IOError{Op: atomicfile.OpCreateDir, Path: dir, Err: err}
	}
	return &DirStorage{dir: dir, migrator: m, strategy: strategy}, nil
}

// Dir returns the base directory.
func (s *DirStorage) Dir() string { return s.dir }

// Save writes a domain value to the id's file as a flat tagged value at
// the entity's terminal version. The entity's path must have been
// registered with a reverse transform.
func (s *DirStorage) Save(entity, id string, domain any) error {
	path, err := s.idToPath(id)
	if err != nil {
		return err
	}

	tagged, err := s.migrator.SaveDomainFlatValue(entity, domain)
	if err != nil {
		return err
	}
	content, err := s.strategy.Codec.Marshal(tagged)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, content, s.strategy.Atomic)
}

// Load reads the id's file and migrates it to the entity's domain value.
// A missing file is an IOError on the read operation.
func (s *DirStorage) Load(entity, id string) (any, error) {
	path, err := s.idToPath(id)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &atomicfile.IOError{Op: atomicfile.OpRead, Path: path, Err: err}
	}

	var tagged map[string]any
	if err := s.strategy.Codec.Unmarshal(content, &tagged); err != nil {
		return nil, err
	}
	return s.migrator.LoadFlatValue(entity, tagged)
}

// Exists reports whether the id has a stored file.
func (s *DirStorage) Exists(id string) (bool, error) {
	path, err := s.idToPath(id)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &atomicfile.IOError{Op: atomicfile.OpRead, Path: path, Err: err}
	}
	return info.Mode().IsRegular(), nil
}

// Delete removes the id's file. Deleting an id that was never stored is
// not an error.
func (s *DirStorage) Delete(id string) error {
	path, err := s.idToPath(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &atomicfile.IOError{Op: atomicfile.OpDelete, Path: path, Err: err}
	}
	return nil
}

// ListIDs returns every stored id in sorted order, decoded from the
// filenames carrying the configured extension. Temp files from
// in-flight writes are skipped.
func (s *DirStorage) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &atomicfile.IOError{Op: atomicfile.OpReadDir, Path: s.dir, Err: err}
	}

	suffix := "." + s.strategy.extension()
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || atomicfile.IsTempName(name) || !strings.HasSuffix(name, suffix) {
			continue
		}
		id, err := s.strategy.Encoding.decodeID(strings.TrimSuffix(name, suffix))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids, nil
}

// Entry is one id/value pair returned by LoadAll.
type Entry struct {
	ID    string
	Value any
}

// LoadAll loads every stored entity, in id order. All-or-nothing: the
// first failing load fails the whole call with no partial results.
func (s *DirStorage) LoadAll(entity string) ([]Entry, error) {
	ids, err := s.ListIDs()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		value, err := s.Load(entity, id)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{ID: id, Value: value})
	}
	return out, nil
}

// idToPath resolves an id to its file path via the configured encoding.
func (s *DirStorage) idToPath(id string) (string, error) {
	stem, err := s.strategy.Encoding.encodeID(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, fmt.Sprintf("%s.%s", stem, s.strategy.extension())), nil
}
