package storage

import (
	"fmt"
	"maps"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dreamware/migra/internal/atomicfile"
	"github.com/dreamware/migra/internal/codec"
	"github.com/dreamware/migra/internal/migrate"
)

// MissingPolicy controls what NewFileStorage does when the backing file
// does not exist yet.
type MissingPolicy int

const (
	// MissingCreate starts from an empty document; the file appears on
	// the first Save.
	MissingCreate MissingPolicy = iota

	// MissingError fails construction with an IOError.
	MissingError
)

// FileStrategy configures a FileStorage. The zero value is not usable;
// start from DefaultFileStrategy and adjust with the With methods.
type FileStrategy struct {
	Codec   codec.Codec
	Atomic  atomicfile.Config
	Missing MissingPolicy
	Locking bool
}

// DefaultFileStrategy returns the JSON codec, default atomic-write
// settings, create-if-missing, and no advisory locking.
func DefaultFileStrategy() FileStrategy {
	return FileStrategy{
		Codec:   codec.JSON(),
		Atomic:  atomicfile.DefaultConfig(),
		Missing: MissingCreate,
	}
}

// WithCodec sets the serialization format.
func (s FileStrategy) WithCodec(c codec.Codec) FileStrategy {
	s.Codec = c
	return s
}

// WithAtomic sets the atomic-write configuration.
func (s FileStrategy) WithAtomic(cfg atomicfile.Config) FileStrategy {
	s.Atomic = cfg
	return s
}

// WithMissing sets the missing-file policy.
func (s FileStrategy) WithMissing(p MissingPolicy) FileStrategy {
	s.Missing = p
	return s
}

// WithLocking enables an advisory file lock around Save. The lock only
// coordinates with other processes that also acquire it; it is not
// needed for single-process use.
func (s FileStrategy) WithLocking(on bool) FileStrategy {
	s.Locking = on
	return s
}

// FileStorage holds one keyed document in memory and persists it as a
// single file. Named collections inside the document are arrays of flat
// tagged values; Query and Update go through the migrator so collection
// elements written at any registered version come back as current domain
// values. Keys that are not collections pass through Save untouched.
//
// Safe for concurrent use.
type FileStorage struct {
	path     string
	migrator *migrate.Migrator
	strategy FileStrategy

	mu  sync.RWMutex
	doc map[string]any
}

// NewFileStorage loads the document at path into memory. A missing file
// is handled per the strategy's MissingPolicy; an empty file is treated
// as an empty document.
func NewFileStorage(path string, m *migrate.Migrator, strategy FileStrategy) (*FileStorage, error) {
	s := &FileStorage{
		path:     path,
		migrator: m,
		strategy: strategy,
		doc:      make(map[string]any),
	}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if strings.TrimSpace(string(content)) == "" {
			return s, nil
		}
		if err := strategy.Codec.Unmarshal(content, &s.doc); err != nil {
			return nil, err
		}
		return s, nil
	case os.IsNotExist(err):
		if strategy.Missing == MissingError {
			return nil, &atomicfile.IOError{Op: atomicfile.OpRead, Path: path, Err: err}
		}
		return s, nil
	default:
		return nil, &atomicfile.IOError{Op: atomicfile.OpRead, Path: path, Err: err}
	}
}

// Path returns the backing file path.
func (s *FileStorage) Path() string { return s.path }

// Document returns a shallow copy of the in-memory document.
func (s *FileStorage) Document() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.doc)
}

// Collections returns the sorted document keys whose values are arrays.
func (s *FileStorage) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.doc))
	for key, value := range s.doc {
		if _, ok := value.([]any); ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Query loads the named collection and migrates each element to the
// entity's domain value. A missing key yields an empty slice; a key
// holding a non-array value is an error. The batch is all-or-nothing.
func (s *FileStorage) Query(key, entity string) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.doc[key]
	if !ok {
		return []any{}, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, &migrate.DeserializationError{
			Reason: fmt.Sprintf("document key %q holds %T, want an array", key, raw),
		}
	}

	out := make([]any, 0, len(arr))
	for i, elem := range arr {
		tagged, ok := elem.(map[string]any)
		if !ok {
			return nil, &migrate.DeserializationError{
				Reason: fmt.Sprintf("collection %q element %d is %T, want an object", key, i, elem),
			}
		}
		domain, err := s.migrator.LoadFlatValue(entity, tagged)
		if err != nil {
			return nil, err
		}
		out = append(out, domain)
	}
	return out, nil
}

// Update replaces the named collection with the given domain values,
// serialized at the entity's terminal version in the flat shape. Only
// the one key changes; every other document field is left as loaded.
// Update mutates memory only; call Save (or UpdateAndSave) to persist.
func (s *FileStorage) Update(key, entity string, domains []any) error {
	p, err := s.migrator.PathFor(entity)
	if err != nil {
		return err
	}

	arr := make([]any, 0, len(domains))
	for _, domain := range domains {
		tagged, err := s.taggedPayload(p, domain)
		if err != nil {
			return err
		}
		arr = append(arr, tagged)
	}

	s.mu.Lock()
	s.doc[key] = arr
	s.mu.Unlock()
	return nil
}

// UpdateAndSave is Update followed by Save.
func (s *FileStorage) UpdateAndSave(key, entity string, domains []any) error {
	if err := s.Update(key, entity, domains); err != nil {
		return err
	}
	return s.Save()
}

// Save serializes the whole in-memory document and writes it atomically
// over the backing file. With locking enabled the write happens under an
// advisory lock on the target path.
func (s *FileStorage) Save() error {
	s.mu.RLock()
	content, err := s.strategy.Codec.Marshal(s.doc)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if s.strategy.Locking {
		lock, err := atomicfile.AcquireFlock(s.path)
		if err != nil {
			return err
		}
		defer lock.Release()
	}
	return atomicfile.WriteFile(s.path, content, s.strategy.Atomic)
}

// taggedPayload converts a domain value to its flat tagged form by
// round-tripping it through the codec and stamping the terminal version.
//
// The stamp uses the literal "version" key, not the path's resolved
// version key. Documents written by earlier releases carry that literal
// key, so Query with custom keys will not see collections written here;
// keep custom-key paths on the Migrator save methods instead.
func (s *FileStorage) taggedPayload(p *migrate.Path, domain any) (map[string]any, error) {
	data, err := s.strategy.Codec.Marshal(domain)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := s.strategy.Codec.Unmarshal(data, &payload); err != nil {
		return nil, &migrate.SerializationError{
			Reason: fmt.Sprintf("domain value for entity %q does not serialize to an object", p.Entity()),
			Err:    err,
		}
	}
	payload["version"] = p.Terminal()
	return payload, nil
}
