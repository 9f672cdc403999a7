// Package migrate implements migra's version-migration engine: a registry
// of per-entity migration paths that normalize historical payloads into
// the current domain shape.
//
// # Overview
//
// Data written by old releases carries a semantic-version tag. A
// MigrationPath declares, for one named entity, the ordered list of
// versions that ever existed, one transform per non-terminal version, and
// a finalize transform from the terminal version into the domain type.
// Loading walks the chain from the payload's tagged version to the
// terminal version, then finalizes; the caller always receives a domain
// value, never an intermediate version.
//
// # Architecture
//
//	┌──────────────────────────────────────────────┐
//	│                  Migrator                    │
//	├──────────────────────────────────────────────┤
//	│  paths: entity → *Path                       │
//	│  keys:  registry-wide key defaults           │
//	│  codec: bytes ↔ value trees (default JSON)   │
//	├──────────────────────────────────────────────┤
//	│  "1.0.0" ──step──▶ "1.1.0" ──step──▶ "2.0.0" │
//	│                                   │finalize  │
//	│                                   ▼          │
//	│                                domain value  │
//	└──────────────────────────────────────────────┘
//
// Transforms are ordinary Go closures over generic payload trees
// (map[string]any); there is no compile-time coupling between a version
// and a Go type. Shape mismatches are data errors reported by the
// transforms themselves.
//
// # Building and registering paths
//
//	path, err := migrate.Define("task").
//	    From("1.0.0").
//	    Step("1.1.0", addDescription).
//	    Into(taskFromPayload)
//	...
//	m := migrate.New()
//	err = m.Register(path)
//
// The builder is staged at runtime: declaring a step before a starting
// version, finalizing twice, or configuring keys after From surfaces a
// *BuildError at the terminal Into/IntoWithSave call. Register validates
// the version list (no duplicates, strictly increasing semver) and
// resolves the tag key names; an invalid path never partially registers.
//
// # Wire shapes
//
// A tagged value has two wire shapes, both with configurable key names
// (path override > migrator default > package default "version"/"data"):
//
//	nested: {"version": "1.0.0", "data": {...fields...}}
//	flat:   {"version": "1.0.0", ...fields...}
//
// # Concurrency
//
// A Migrator is built once and read-only afterwards; concurrent loads and
// saves are safe. Registering concurrently with in-flight operations is
// not supported and must be serialized by the caller.
package migrate
