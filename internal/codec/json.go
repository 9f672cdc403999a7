package codec

import (
	"bytes"
	"encoding/json"
)

// jsonCodec implements Codec using encoding/json with indented output.
type jsonCodec struct{}

// JSON returns the JSON codec.
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) Name() string      { return "json" }
func (jsonCodec) Extension() string { return "json" }

// Marshal encodes v as indented JSON. Indentation keeps persisted files
// diffable; the decoder does not care either way.
func (jsonCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, &SerializeError{Format: "json", Err: err}
	}
	return buf.Bytes(), nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &ParseError{Format: "json", Err: err}
	}
	return nil
}
