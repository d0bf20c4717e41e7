// Package fstore implements a file-backed settings store based on the
// store.IStore interface. It holds the full key-value mapping in memory as
// the authoritative state and rewrites the whole backing file through a
// persister.IPersister on every mutation.
//
// Key Features:
//   - Crash-safe persistence through the persister's atomic rewrite protocol
//   - Value normalization through the codec on every write
//   - Snapshot semantics for all read operations
//   - Thread-safe operations for concurrent access
//   - Operation and persist metrics in the Prometheus text format
//
// Implementation Details:
//
//   - Single Lock Discipline: One mutex guards the mapping. Every operation
//     holds it for its full critical section, mutators including the disk
//     write. Concurrent mutators therefore serialize end-to-end and the
//     last successfully persisted file always equals a state the mapping
//     actually held. Readers pay for this with mutator-latency blocking,
//     which is the intended trade for a small settings store.
//
//   - Value Normalization: Every value entering the store is encoded and
//     decoded once by the configured codec. Unrepresentable values (e.g.
//     functions or channels) are rejected before the mapping is touched,
//     caller-owned memory is detached, and the in-memory representation
//     matches what a reload from the file would produce. A value read back
//     immediately is therefore identical to the same value read back after
//     a process restart.
//
//   - Failure Semantics: When the persister fails, the operation returns a
//     persistence error but the in-memory mutation stays applied. Memory is
//     the source of truth going forward and the next successful persist
//     reconciles the file. Nothing is retried automatically.
//
//   - Composition Architecture: The store.PersisterFactory injects the
//     persister, so the same implementation serves JSON files, YAML files
//     and purely in-memory stores without modification.
//
// Thread Safety:
//
//	All operations are thread-safe within one process. Two stores opened on
//	the same path, or two processes sharing a file, are NOT coordinated;
//	the last full rewrite wins.
//
// Usage Example:
//
//	// Open a JSON settings store (created on first write)
//	settings, err := fstore.Open("/home/user/.config/app/settings.json")
//	if err != nil { ... }
//
//	// Write a value
//	err = settings.Set("theme", "dark")
//
//	// Read it back with a fallback for first runs
//	theme, err := settings.GetDefault("theme", "light")
//
// Suitable Use Cases:
//
//	The file store is ideal for:
//	- Application settings and user preferences
//	- Small documents that are read often and written rarely
//	- Tool state that must survive restarts and crashed writers
//
// It is not a general database: every mutation rewrites the whole file, so
// large documents or write-heavy workloads belong elsewhere.
package fstore
