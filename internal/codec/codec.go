package codec

import (
	"fmt"
)

// Codec converts between generic value trees and one textual format.
//
// Implementations must be pure and stateless; a Codec value is safe for
// concurrent use.
type Codec interface {
	// Name returns the canonical lower-case format name ("json", "toml",
	// "yaml").
	Name() string

	// Extension returns the file extension used for this format, without
	// the leading dot.
	Extension() string

	// Marshal encodes a value tree into the textual format.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes textual data into the value pointed to by v.
	Unmarshal(data []byte, v any) error
}

// ParseError reports a decode failure in a specific format.
type ParseError struct {
	Format string // Codec name that rejected the input
	Err    error  // Underlying decoder error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Format, e.Err)
}

// Unwrap returns the underlying decoder error for errors.Is/As.
func (e *ParseError) Unwrap() error { return e.Err }

// SerializeError reports an encode failure in a specific format.
type SerializeError struct {
	Format string // Codec name that rejected the value
	Err    error  // Underlying encoder error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("failed to serialize to %s: %v", e.Format, e.Err)
}

// Unwrap returns the underlying encoder error for errors.Is/As.
func (e *SerializeError) Unwrap() error { return e.Err }

// ForFormat returns the codec registered for the given format name.
//
// Recognized names are "json", "toml", and "yaml" (case-sensitive,
// matching Codec.Name). Unknown names return an error rather than a nil
// codec so call sites fail fast during configuration, not at first use.
func ForFormat(name string) (Codec, error) {
	switch name {
	case "json":
		return JSON(), nil
	case "toml":
		return TOML(), nil
	case "yaml":
		return YAML(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json, toml, or yaml)", name)
	}
}
