package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/sKV/lib/persister"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// PersisterFactory is a function type that creates the persister used by the
// store. This is used to abstract the creation of the persister from the
// store implementation.
type PersisterFactory func() persister.IPersister

// IStore is the generic interface for interacting with a settings store.
// All write operations return only a *Error (nil on success),
// while read operations return the requested data along with a *Error (nil on success).
//
// Values are structured documents: nil, bool, numbers, string, []any and
// map[string]any nest freely. On every write a value is normalized through
// the store's codec, so unrepresentable values are rejected up front and a
// value read back after a restart equals the value read back immediately.
type IStore interface {
	// Set inserts or updates a key-value pair and persists the full store.
	Set(key string, value any) (err error)
	// Update applies a batch of key-value pairs as if each were Set
	// individually, but persists the full store exactly once. Keys not in
	// entries are untouched. If any value is rejected by the codec the
	// store is not modified at all.
	Update(entries map[string]any) (err error)
	// Delete removes a key-value pair and persists the full store. Deleting
	// an absent key is a no-op and does not persist.
	Delete(key string) (err error)
	// Clear removes all key-value pairs and persists the empty store.
	Clear() (err error)
	// Get returns the value for a key. The boolean return value indicates
	// whether a value for the key was found. The returned value is a copy,
	// mutating it does not affect the store.
	Get(key string) (value any, loaded bool, err error)
	// GetDefault returns the value for a key if present, else the given
	// fallback. The fallback is returned as-is and is never stored.
	GetDefault(key string, fallback any) (value any, err error)
	// Has returns whether a key exists in the store.
	Has(key string) (loaded bool, err error)
	// GetAll returns a snapshot of all key-value pairs. The snapshot is a
	// deep copy, mutating it does not affect the store.
	GetAll() (entries map[string]any, err error)
	// GetStoreInfo returns metadata about the store and its persister.
	// It is not guaranteed that all fields are filled in.
	GetStoreInfo() (info StoreInfo, err error)
}

// StoreInfo holds metadata about a store instance.
type StoreInfo struct {
	// Entries is the current number of keys in the store.
	Entries int
	// Persister describes the durable layer backing the store.
	Persister persister.Info
}

// String returns a formatted string representation of the store info
func (i StoreInfo) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Store state
	addSection("Store")
	addField("Entries", strconv.Itoa(i.Entries))

	// Durable layer
	addSection("Persister")
	addField("Type", i.Persister.Type)
	if i.Persister.Location != "" {
		addField("Location", i.Persister.Location)
	}
	if i.Persister.Codec != "" {
		addField("Codec", i.Persister.Codec)
	}
	if i.Persister.SizeBytes >= 0 {
		addField("Size", fmt.Sprintf("%d bytes", i.Persister.SizeBytes))
	} else {
		addField("Size", "unknown")
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCSerializationError:
		errorCode = "SerializationError"
	case RetCPersistenceError:
		errorCode = "PersistenceError"
	case RetCCorruptStore:
		errorCode = "CorruptStore"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("StoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new StoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Operation executed successfully.
	RetCInternalError                     // 1: Operation failed due to an internal error.
	RetCSerializationError                // 2: A value cannot be represented by the codec.
	RetCPersistenceError                  // 3: Writing the store to its backing location failed.
	RetCCorruptStore                      // 4: The backing location exists but cannot be read as a store.
)
