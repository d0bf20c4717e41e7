// Package testing provides standardised tests and benchmarks for store
// implementations that satisfy the store.IStore interface.
//
// The package contains:
//   - testing: A comprehensive test suite for validating conformance to the IStore interface contract
//   - benchmark: Performance tests for measuring throughput of common store operations
//
// This package is particularly useful for:
//   - Applications that need to pick a persister and codec combination based
//     on performance characteristics
//   - Store developers implementing the IStore interface
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() store.IStore {
//		s, _ := fstore.Open(filepath.Join(t.TempDir(), "store.json"))
//		return s
//	}
//
//	// Running the standard test suite
//	testing.RunStoreTests(t, "FileStore", factory)
//
//	// Running performance benchmarks
//	testing.RunStoreBenchmarks(b, "FileStore", factory)
package testing
