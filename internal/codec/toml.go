package codec

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// tomlCodec implements Codec using BurntSushi/toml.
//
// TOML documents are always tables at the top level, so Marshal only
// accepts map-shaped values; arrays and scalars at the root are a
// SerializeError. That matches how migra uses TOML: whole documents and
// tagged values, never bare arrays.
type tomlCodec struct{}

// TOML returns the TOML codec.
func TOML() Codec { return tomlCodec{} }

func (tomlCodec) Name() string      { return "toml" }
func (tomlCodec) Extension() string { return "toml" }

func (tomlCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, &SerializeError{Format: "toml", Err: err}
	}
	return buf.Bytes(), nil
}

func (tomlCodec) Unmarshal(data []byte, v any) error {
	if err := toml.Unmarshal(data, v); err != nil {
		return &ParseError{Format: "toml", Err: err}
	}
	return nil
}
