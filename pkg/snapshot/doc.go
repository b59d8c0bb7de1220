// Package snapshot defines persistence-facing contracts for dumping and
// restoring whole overlay maps, plus an archive helper that orchestrates
// capture, restore, and guarded mutation.
//
// Responsibilities:
//   - Store[T] only loads/saves a single dump for a single Ref.
//   - Archive[K, V] converts between live maps and []overlay.Record dumps and
//     enforces ETag-based optimistic concurrency on mutation.
//   - The core overlay package remains persistence-agnostic; all persistence
//     logic stays behind Store implementations supplied by consumers.
//
// Data flow:
//
//	Store -> Archive.Restore -> overlay.FromRecords -> *overlay.Map[K, V]
//	*overlay.Map[K, V] -> Map.Export -> Archive.Capture -> Store
//
// Deterministic keys:
//
//	Ref.Identifier() provides a canonical storage key format
//	(`shared/<domain>` or `owner/<owner>/<domain>`). Stores may use it or
//	derive their own keys from the Ref fields directly.
package snapshot
