package codec

import (
	"gopkg.in/yaml.v3"
)

// yamlCodec implements Codec using yaml.v3.
type yamlCodec struct{}

// YAML returns the YAML codec.
func YAML() Codec { return yamlCodec{} }

func (yamlCodec) Name() string      { return "yaml" }
func (yamlCodec) Extension() string { return "yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, &SerializeError{Format: "yaml", Err: err}
	}
	return out, nil
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return &ParseError{Format: "yaml", Err: err}
	}
	return nil
}
