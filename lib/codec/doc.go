// Package codec provides document serialization for the settings store. It
// defines a common interface and multiple implementations for encoding and
// decoding the full key-value document that the store mirrors onto disk.
//
// The package focuses on:
//   - Providing a consistent interface for different file formats
//   - Lossless round trips of the store's document model (nil, bool, number,
//     string, sequence, mapping)
//   - Classifying unrepresentable values behind a single sentinel error
//   - Allowing embedding applications to register additional formats
//
// Key Components:
//
//   - ICodec: Core interface that all codec implementations must satisfy.
//
//   - jsonCodecImpl: Implementation using JSON encoding with indented output,
//     useful for hand-editing store files and interoperability. Numbers
//     normalize to float64 across a round trip. This is the default codec.
//
//   - yamlCodecImpl: Implementation using YAML encoding, producing terser
//     files. Integers survive a round trip as int, and an empty file is a
//     valid empty document.
//
//   - Registry: Register/Get/Names manage codec factories by name over a
//     concurrent map, so codec selection can be driven by configuration.
//
// Thread Safety:
//
//	All codec implementations are stateless and safe for concurrent use
//	across multiple goroutines. The registry may be read and written
//	concurrently.
//
// Usage:
//
//	Codecs are typically resolved once by name and reused:
//
//	  c, err := codec.Get(codec.DefaultCodec)
//	  if err != nil { ... }
//	  data, err := c.Encode(map[string]any{"theme": "dark"})
//	  // ... write data ...
//	  entries, err := c.Decode(data)
package codec
