package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestForFormat verifies format-name lookup for every supported codec and
// the failure mode for unknown names.
func TestForFormat(t *testing.T) {
	for _, name := range []string{"json", "toml", "yaml"} {
		c, err := ForFormat(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
		assert.Equal(t, name, c.Extension())
	}

	_, err := ForFormat("xml")
	assert.Error(t, err)
}

// TestRoundTrip verifies every codec reproduces a tagged-value document
// through Marshal then Unmarshal.
func TestRoundTrip(t *testing.T) {
	doc := map[string]any{
		"version": "1.2.0",
		"data": map[string]any{
			"id":    "task-1",
			"title": "write tests",
			"tags":  []any{"a", "b"},
		},
	}

	for _, c := range []Codec{JSON(), TOML(), YAML()} {
		t.Run(c.Name(), func(t *testing.T) {
			out, err := c.Marshal(doc)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, c.Unmarshal(out, &got))

			assert.Equal(t, "1.2.0", got["version"])
			data, ok := got["data"].(map[string]any)
			require.True(t, ok, "data subtree should decode as a map")
			assert.Equal(t, "task-1", data["id"])
			assert.Equal(t, "write tests", data["title"])
		})
	}
}

// TestParseError verifies decode failures wrap as *ParseError with the
// format name attached.
func TestParseError(t *testing.T) {
	cases := map[string][]byte{
		"json": []byte("{ not json"),
		"toml": []byte("= broken"),
		"yaml": []byte(":\n- ]["),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := ForFormat(name)
			require.NoError(t, err)

			var v map[string]any
			err = c.Unmarshal(data, &v)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, name, pe.Format)
			assert.Error(t, pe.Unwrap())
		})
	}
}

// TestTOMLRejectsNonTableRoot verifies the TOML codec reports a
// SerializeError for values that cannot be a TOML document.
func TestTOMLRejectsNonTableRoot(t *testing.T) {
	_, err := TOML().Marshal([]any{"a", "b"})
	require.Error(t, err)

	var se *SerializeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "toml", se.Format)
}
