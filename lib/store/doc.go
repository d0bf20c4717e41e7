// Package store provides the high-level interface for an embedded,
// file-backed settings store with thread-safe operations and unified error
// handling. It serves as an abstraction layer over the lower-level
// persister.IPersister implementations, adding value normalization,
// snapshot semantics and standardized error reporting.
//
// The package focuses on:
//   - A unified interface (IStore) for settings operations across different
//     persistence backends
//   - Pluggable persistence through the PersisterFactory pattern
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for
//     interacting with a settings store: Set, Update (batched), Delete,
//     Clear, Get, GetDefault, Has, GetAll and GetStoreInfo. All
//     implementations share this common interface, allowing applications to
//     switch between persistence backends without code changes. The
//     interface methods return custom Error values that carry typed error
//     codes.
//
//   - Error System: A structured error reporting mechanism using typed
//     error codes and descriptive messages. Applications can branch on the
//     code (serialization failure, persistence failure, corrupted store)
//     instead of parsing error strings.
//
//   - PersisterFactory: A function type that abstracts the creation of the
//     underlying persister.IPersister, providing dependency injection and
//     flexible configuration of the durable layer.
//
// Implementations:
//
//	The package includes one implementation of the IStore interface:
//
//	- File Store (fstore): Holds the full mapping in memory, guarded by a
//	  single mutex, and rewrites the whole backing file through a persister
//	  on every mutation. Suitable for application settings and other small,
//	  read-mostly documents. Combined with the in-memory persister it also
//	  serves as an ephemeral store.
//	  Available in the "github.com/ValentinKolb/sKV/lib/store/fstore" package.
//
// This interface-driven approach allows applications to:
//   - Swap file formats (codecs) and persistence backends independently
//   - Handle errors in a consistent and type-safe manner
//   - Abstract persistence details from application logic
package store
