package codec

import (
	"errors"
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ErrUnsupportedValue is wrapped by Encode when a document contains a value
// the format cannot represent (e.g. a function, a channel or a NaN float).
// Callers can detect this class of failure with errors.Is.
var ErrUnsupportedValue = errors.New("value cannot be represented by the codec")

// ICodec is the generic interface for document codecs. A codec translates
// between the in-memory document model (a mapping from string keys to
// nil, bool, number, string, []any or nested map[string]any values) and a
// single byte representation on disk.
//
// All implementations must be stateless and safe for concurrent use.
type ICodec interface {
	// Name returns the registry name of the codec (e.g. "json").
	Name() string
	// Encode serializes the full document. The returned bytes must be
	// parseable by Decode of the same codec without loss.
	Encode(entries map[string]any) (data []byte, err error)
	// Decode parses a document previously produced by Encode. Input that
	// does not describe a mapping at the top level is an error.
	Decode(data []byte) (entries map[string]any, err error)
}

// CodecFactory is a function type that creates a new codec instance.
// This is used to abstract the creation of the codec from its users.
type CodecFactory func() ICodec

// --------------------------------------------------------------------------
// Codec Registry
// --------------------------------------------------------------------------

// DefaultCodec is the name of the codec used when none is configured.
const DefaultCodec = "json"

// registry holds all known codec factories keyed by name. Built-in codecs
// register themselves in init, additional codecs may be registered by
// embedding applications at any time.
var registry = xsync.NewMapOf[string, CodecFactory]()

// Register makes a codec factory available under the given name.
// Registering the same name twice replaces the previous factory.
func Register(name string, factory CodecFactory) {
	registry.Store(name, factory)
}

// Get returns a new codec instance for the given name.
func Get(name string) (ICodec, error) {
	factory, ok := registry.Load(name)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (registered: %v)", name, Names())
	}
	return factory(), nil
}

// Names returns the names of all registered codecs in sorted order.
func Names() []string {
	var names []string
	registry.Range(func(name string, _ CodecFactory) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
