// Package storage provides the two persistence layouts for versioned
// entities: a single keyed document holding named collections
// (FileStorage) and a directory with one file per entity instance
// (DirStorage). Both read and write through a migrate.Migrator so that
// data written at any historical version loads as the current domain
// shape, and both persist through the atomicfile writer so a crash never
// leaves a partially written file behind.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│         Application Layer           │
//	└─────────────────────────────────────┘
//	          │                 │
//	          ▼                 ▼
//	┌──────────────────┐  ┌──────────────────┐
//	│   FileStorage    │  │    DirStorage    │
//	│ one document,    │  │ one file per     │
//	│ named collections│  │ entity instance  │
//	└──────────────────┘  └──────────────────┘
//	          │                 │
//	          ▼                 ▼
//	┌─────────────────────────────────────┐
//	│       migrate.Migrator (load)       │
//	│       codec.Codec (bytes)           │
//	│       atomicfile.WriteFile (save)   │
//	└─────────────────────────────────────┘
//
// # FileStorage
//
// FileStorage owns one physical file whose top-level shape is caller
// defined: arbitrary keys, some of which are named collections of flat
// tagged values. The whole document is loaded once at construction and
// held in memory behind a sync.RWMutex; Query and Update touch one named
// collection and leave every other key alone, and Save re-serializes the
// whole document through the atomic writer. Suited to configuration
// style data where the document is small and read often.
//
// # DirStorage
//
// DirStorage keeps one file per entity instance under a base directory,
// named {encoded_id}.{extension}. There is no bulk load and no in-memory
// state: every operation independently resolves the id to a path via the
// configured FilenameEncoding and reads or writes that single file.
// Suited to session style data where instances come and go independently.
//
// # Concurrency
//
// FileStorage is safe for concurrent use within one process; the mutex
// serializes document access. DirStorage methods are safe to call
// concurrently for distinct ids; concurrent writers to the same id race
// at whole-file granularity, each write being individually atomic.
// Neither store coordinates across processes by default. FileStorage can
// additionally take an advisory lock around Save via
// FileStrategy.WithLocking for multi-process setups.
package storage
