package persister

import (
	"errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ErrCorrupted is wrapped by Load when a backing location exists but cannot
// be read or parsed as a document. It is never returned for a location that
// simply does not exist yet. Callers can detect this class of failure with
// errors.Is.
var ErrCorrupted = errors.New("store file is corrupted")

// IPersister is the generic interface for durably materializing the full
// store document and reconstructing it at startup. Implementations must be
// safe for concurrent use.
type IPersister interface {
	// Load reconstructs the last saved document. If the backing location
	// does not exist yet an empty document is returned and the location is
	// NOT created. An existing but unreadable location is an error wrapping
	// ErrCorrupted.
	Load() (entries map[string]any, err error)
	// Save durably replaces the persisted document with the given one. The
	// replacement is atomic: after a failed Save the previously persisted
	// document is still intact, and a concurrent Load never observes a
	// partially written document.
	Save(entries map[string]any) (err error)
	// Info returns metadata about the persister for diagnostics.
	// It is not guaranteed that all fields are filled in.
	Info() (info Info)
}

// Info describes a persister.
type Info struct {
	// Type names the implementation (e.g. "file" or "memory").
	Type string
	// Location is the backing location, empty when there is none.
	Location string
	// Codec is the name of the codec used for encoding, empty when the
	// persister does not encode.
	Codec string
	// SizeBytes is the encoded size of the last loaded or saved document,
	// -1 when unknown.
	SizeBytes int64
}
