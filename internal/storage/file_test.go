package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/migra/internal/atomicfile"
	"github.com/dreamware/migra/internal/codec"
	"github.com/dreamware/migra/internal/migrate"
)

// note is the domain type used across the storage tests. Version 1.0.0
// carried id and title; 2.0.0 added body.
type note struct {
	ID    string `json:"id" toml:"id" yaml:"id"`
	Title string `json:"title" toml:"title" yaml:"title"`
	Body  string `json:"body" toml:"body" yaml:"body"`
}

func noteV1toV2(payload map[string]any) (map[string]any, error) {
	payload["body"] = ""
	return payload, nil
}

func noteFinalize(payload map[string]any) (any, error) {
	id, ok := payload["id"].(string)
	if !ok {
		return nil, fmt.Errorf("missing id")
	}
	title, _ := payload["title"].(string)
	body, _ := payload["body"].(string)
	return note{ID: id, Title: title, Body: body}, nil
}

func noteReverse(domain any) (map[string]any, error) {
	n, ok := domain.(note)
	if !ok {
		return nil, fmt.Errorf("expected note, got %T", domain)
	}
	return map[string]any{"id": n.ID, "title": n.Title, "body": n.Body}, nil
}

func newNoteMigrator(t *testing.T) *migrate.Migrator {
	t.Helper()

	p, err := migrate.Define("note").
		From("1.0.0").
		Step("2.0.0", noteV1toV2).
		IntoWithSave(noteFinalize, noteReverse)
	require.NoError(t, err)

	m := migrate.New()
	require.NoError(t, m.Register(p))
	return m
}

func TestNewFileStorage(t *testing.T) {
	t.Run("missing file with create policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")

		s, err := NewFileStorage(path, newNoteMigrator(t), DefaultFileStrategy())
		require.NoError(t, err)

		assert.Empty(t, s.Document())
		assert.NoFileExists(t, path)
	})

	t.Run("missing file with error policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		strategy := DefaultFileStrategy().WithMissing(MissingError)

		_, err := NewFileStorage(path, newNoteMigrator(t), strategy)

		var ioErr *atomicfile.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, atomicfile.OpRead, ioErr.Op)
	})

	t.Run("empty file is an empty document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

		s, err := NewFileStorage(path, newNoteMigrator(t), DefaultFileStrategy())
		require.NoError(t, err)
		assert.Empty(t, s.Document())
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{ nope"), 0o644))

		_, err := NewFileStorage(path, newNoteMigrator(t), DefaultFileStrategy())

		var pe *codec.ParseError
		assert.True(t, errors.As(err, &pe))
	})
}

func TestFileStorageQuery(t *testing.T) {
	doc := `{
		"app_name": "demo",
		"notes": [
			{"version": "1.0.0", "id": "1", "title": "old"},
			{"version": "2.0.0", "id": "2", "title": "new", "body": "b"}
		]
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := NewFileStorage(path, newNoteMigrator(t), DefaultFileStrategy())
	require.NoError(t, err)

	t.Run("migrates each element", func(t *testing.T) {
		out, err := s.Query("notes", "note")
		require.NoError(t, err)

		assert.Equal(t, []any{
			note{ID: "1", Title: "old", Body: ""},
			note{ID: "2", Title: "new", Body: "b"},
		}, out)
	})

	t.Run("missing key is empty", func(t *testing.T) {
		out, err := s.Query("absent", "note")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("non-array key", func(t *testing.T) {
		_, err := s.Query("app_name", "note")

		var de *migrate.DeserializationError
		assert.True(t, errors.As(err, &de))
	})

	t.Run("unregistered entity", func(t *testing.T) {
		_, err := s.Query("notes", "ghost")

		var nf *migrate.EntityNotFoundError
		assert.True(t, errors.As(err, &nf))
	})

	t.Run("collections lists array keys sorted", func(t *testing.T) {
		assert.Equal(t, []string{"notes"}, s.Collections())
	})
}

func TestFileStorageUpdate(t *testing.T) {
	doc := `{
		"app_name": "demo",
		"settings": {"theme": "dark"},
		"notes": [
			{"version": "1.0.0", "id": "1", "title": "old"}
		]
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	m := newNoteMigrator(t)
	s, err := NewFileStorage(path, m, DefaultFileStrategy())
	require.NoError(t, err)

	notes, err := s.Query("notes", "note")
	require.NoError(t, err)
	notes[0] = note{ID: "1", Title: "renamed", Body: "added"}
	notes = append(notes, note{ID: "2", Title: "second"})

	require.NoError(t, s.UpdateAndSave("notes", "note", notes))

	t.Run("stamps the terminal version", func(t *testing.T) {
		arr := s.Document()["notes"].([]any)
		for _, elem := range arr {
			assert.Equal(t, "2.0.0", elem.(map[string]any)["version"])
		}
	})

	t.Run("unrelated fields survive the round trip", func(t *testing.T) {
		reloaded, err := NewFileStorage(path, m, DefaultFileStrategy())
		require.NoError(t, err)

		reDoc := reloaded.Document()
		assert.Equal(t, "demo", reDoc["app_name"])
		assert.Equal(t, map[string]any{"theme": "dark"}, reDoc["settings"])

		out, err := reloaded.Query("notes", "note")
		require.NoError(t, err)
		assert.Equal(t, []any{
			note{ID: "1", Title: "renamed", Body: "added"},
			note{ID: "2", Title: "second"},
		}, out)
	})

	t.Run("unregistered entity", func(t *testing.T) {
		err := s.Update("notes", "ghost", nil)

		var nf *migrate.EntityNotFoundError
		assert.True(t, errors.As(err, &nf))
	})
}

func TestFileStorageSave(t *testing.T) {
	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")

		s, err := NewFileStorage(path, newNoteMigrator(t), DefaultFileStrategy())
		require.NoError(t, err)
		require.NoError(t, s.Update("notes", "note", []any{note{ID: "1"}}))
		require.NoError(t, s.Save())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "config.json", entries[0].Name())
	})

	t.Run("save under advisory lock", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		strategy := DefaultFileStrategy().WithLocking(true)

		s, err := NewFileStorage(path, newNoteMigrator(t), strategy)
		require.NoError(t, err)
		require.NoError(t, s.Save())
		assert.FileExists(t, path)
	})

	t.Run("toml round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		strategy := DefaultFileStrategy().WithCodec(codec.TOML())

		m := newNoteMigrator(t)
		s, err := NewFileStorage(path, m, strategy)
		require.NoError(t, err)
		require.NoError(t, s.UpdateAndSave("notes", "note", []any{
			note{ID: "1", Title: "toml note", Body: "b"},
		}))

		reloaded, err := NewFileStorage(path, m, strategy)
		require.NoError(t, err)

		out, err := reloaded.Query("notes", "note")
		require.NoError(t, err)
		assert.Equal(t, []any{note{ID: "1", Title: "toml note", Body: "b"}}, out)
	})
}
