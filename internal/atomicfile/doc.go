// Package atomicfile provides migra's crash-consistent single-file write
// primitive: write to a uniquely-named temporary file in the target's
// directory, fsync, then atomically rename over the target.
//
// # Overview
//
// The durability discipline is the classic temp-file-plus-rename pattern:
//
//  1. Ensure the target's parent directory exists.
//  2. Create a hidden temp file next to the target
//     (.{name}.tmp.{pid}.{random}).
//  3. Write the full content, fsync the descriptor, close it.
//  4. Rename the temp file onto the target. Rename is the only operation
//     that changes what the target path resolves to, and it is atomic at
//     the filesystem level, so a concurrent reader observes either the old
//     content or the complete new content, never a partial write.
//  5. Best-effort removal of stale temp files left by earlier crashes;
//     failures there are swallowed.
//
// The rename is retried a bounded number of times with a fixed sleep
// between attempts (some platforms return transient errors when the target
// is briefly held open). Exhausting the retries surfaces an *IOError
// annotated with the attempt count; nothing else in the sequence retries.
//
// # Locking
//
// Flock offers an advisory exclusive lock (flock(2) on unix, a no-op
// elsewhere). It is not part of the write sequence above; storage layers
// that need read-modify-write isolation across processes wire it in
// explicitly.
//
// # Errors
//
// All filesystem failures surface as *IOError carrying the operation kind
// (read, write, create, delete, rename, create-dir, read-dir, sync), the
// path, and optional context. Lock failures surface as *LockError.
package atomicfile
