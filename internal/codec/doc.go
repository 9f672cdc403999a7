// Package codec converts between the in-memory tagged-value model and the
// textual formats migra persists: JSON, TOML, and YAML.
//
// # Overview
//
// Everything above this package works on generic value trees
// (map[string]any, []any, scalars). A Codec is the single seam where those
// trees become bytes and back. Codecs are pure and stateless: two calls
// with the same input produce the same output, and a Codec value may be
// shared freely across goroutines.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│      Migrator / Storage layers      │
//	│        (map[string]any trees)       │
//	└─────────────────────────────────────┘
//	                 │
//	                 ▼
//	┌─────────────────────────────────────┐
//	│           Codec interface           │
//	│   Marshal(any) / Unmarshal([]byte)  │
//	└─────────────────────────────────────┘
//	                 │
//	    ┌────────────┼────────────┐
//	    ▼            ▼            ▼
//	┌────────┐  ┌────────┐  ┌────────┐
//	│  JSON  │  │  TOML  │  │  YAML  │
//	└────────┘  └────────┘  └────────┘
//
// # Numeric fidelity
//
// Each format's decoder maps numbers differently: JSON yields float64,
// TOML yields int64/float64, YAML yields int/float64. The codec does not
// normalize these; migration steps own any coercion they need.
//
// # Errors
//
// Decode failures surface as *ParseError and encode failures as
// *SerializeError, both carrying the format name so callers can report
// which codec rejected the data.
package codec
