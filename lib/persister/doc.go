// Package persister provides the durable layer of the settings store. It
// defines a common interface and implementations for loading the full
// key-value document at startup and atomically rewriting it on every change.
//
// The package focuses on:
//   - Crash safety: a reader never observes a partially written document
//   - First-run friendliness: a missing backing location is an empty
//     document, not an error, and nothing is created before the first save
//   - Honest failure: an existing but unreadable document is surfaced as a
//     corruption error instead of being silently reinitialized
//
// Key Components:
//
//   - IPersister: Core interface that all persister implementations must
//     satisfy.
//
//   - filePersisterImpl: Keeps the document in one file, encoded by a codec
//     from the codec package. Save runs a write-sync-rename protocol: the
//     document is serialized to a temporary file co-located with the target
//     (renames are only atomic within one filesystem), synced to storage
//     media, and renamed onto the target in a single operation. On any
//     failure the temporary file is removed and the previous document stays
//     untouched.
//
//   - memoryPersisterImpl: Keeps the document in memory only. Useful for
//     ephemeral stores and as a test double with real semantics.
//
// Thread Safety:
//
//	All implementations guard their state with an internal mutex and are
//	safe for concurrent use. The store additionally serializes its own
//	calls, so the internal mutex only matters when a persister is shared
//	outside a store (e.g. a read-only watcher process).
//
// Usage:
//
//	p := persister.NewFilePersister("/home/user/.skv/store.json", codec.NewJSONCodec())
//	entries, err := p.Load() // empty map on first run
//	// ... mutate entries ...
//	err = p.Save(entries)
package persister
