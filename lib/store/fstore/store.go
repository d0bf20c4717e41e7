package fstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ValentinKolb/sKV/lib/codec"
	"github.com/ValentinKolb/sKV/lib/persister"
	"github.com/ValentinKolb/sKV/lib/store"
)

type storeImpl struct {
	mu        sync.Mutex
	data      map[string]any
	persister persister.IPersister
	codec     codec.ICodec
}

// New creates a new file store instance. The persister created by the
// factory is loaded synchronously, so the store is fully usable (or an
// error is returned) when New returns. The codec must be the one the
// persister encodes with, it is also used to normalize values on write.
func New(factory store.PersisterFactory, c codec.ICodec) (store.IStore, error) {
	p := factory()

	data, err := p.Load()
	if err != nil {
		if errors.Is(err, persister.ErrCorrupted) {
			return nil, store.NewError(store.RetCCorruptStore, fmt.Sprintf("load store: %v", err))
		}
		return nil, store.NewError(store.RetCPersistenceError, fmt.Sprintf("load store: %v", err))
	}

	return &storeImpl{
		data:      data,
		persister: p,
		codec:     c,
	}, nil
}

// Open creates a file store backed by a JSON encoded file at path. This is
// the default way to open a settings store:
//
//	settings, err := fstore.Open("/home/user/.config/app/settings.json")
//
// On first use the file does not exist yet and the store starts empty; the
// file and its directory chain are created by the first successful write.
func Open(path string) (store.IStore, error) {
	c := codec.NewJSONCodec()
	return New(func() persister.IPersister {
		return persister.NewFilePersister(path, c)
	}, c)
}

// normalize passes a value through the codec. This rejects values the codec
// cannot represent, detaches the result from caller-owned memory and makes
// the in-memory representation identical to what a reload from disk would
// produce.
//
// Thread-safety: The codec is stateless, callers need no lock for this.
func (s *storeImpl) normalize(value any) (any, error) {
	raw, err := s.codec.Encode(map[string]any{"value": value})
	if err != nil {
		return nil, err
	}
	decoded, err := s.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	return decoded["value"], nil
}

// copyValue returns a value detached from internal state. Scalars are
// immutable and returned as-is, composite values are round-tripped through
// the codec.
func (s *storeImpl) copyValue(value any) (any, error) {
	switch value.(type) {
	case map[string]any, []any:
		return s.normalize(value)
	default:
		return value, nil
	}
}

// normalizeError converts a failed normalize into the matching store error.
func normalizeError(key string, err error) *store.Error {
	if errors.Is(err, codec.ErrUnsupportedValue) {
		return store.NewError(store.RetCSerializationError, fmt.Sprintf("value for key %q: %v", key, err))
	}
	return store.NewError(store.RetCInternalError, fmt.Sprintf("normalize value for key %q: %v", key, err))
}

// persist writes the full in-memory state through the persister.
//
// Thread-safety: Must be called with s.mu held, the save and the state it
// saves have to be serialized as one unit against other mutators.
func (s *storeImpl) persist() error {
	start := time.Now()
	err := s.persister.Save(s.data)
	persistDuration.UpdateDuration(start)

	if err != nil {
		persistErrors.Inc()
		if errors.Is(err, codec.ErrUnsupportedValue) {
			return store.NewError(store.RetCSerializationError, fmt.Sprintf("persist store: %v", err))
		}
		return store.NewError(store.RetCPersistenceError, fmt.Sprintf("persist store: %v", err))
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value any) error {
	setCalls.Inc()

	norm, err := s.normalize(value)
	if err != nil {
		return normalizeError(key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = norm
	return s.persist()
}

func (s *storeImpl) Update(entries map[string]any) error {
	updateCalls.Inc()

	// validate the full batch before touching the store
	normalized := make(map[string]any, len(entries))
	for key, value := range entries {
		norm, err := s.normalize(value)
		if err != nil {
			return normalizeError(key, err)
		}
		normalized[key] = norm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, norm := range normalized {
		s.data[key] = norm
	}
	return s.persist()
}

func (s *storeImpl) Delete(key string) error {
	deleteCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.persist()
}

func (s *storeImpl) Clear() error {
	clearCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = map[string]any{}
	return s.persist()
}

func (s *storeImpl) Get(key string) (any, bool, error) {
	getCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}

	copied, err := s.copyValue(value)
	if err != nil {
		return nil, false, store.NewError(store.RetCInternalError, fmt.Sprintf("copy value for key %q: %v", key, err))
	}
	return copied, true, nil
}

func (s *storeImpl) GetDefault(key string, fallback any) (any, error) {
	getDefaultCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return fallback, nil
	}

	copied, err := s.copyValue(value)
	if err != nil {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("copy value for key %q: %v", key, err))
	}
	return copied, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	hasCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.data[key]
	return ok, nil
}

func (s *storeImpl) GetAll() (map[string]any, error) {
	getAllCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make(map[string]any, len(s.data))
	for key, value := range s.data {
		copied, err := s.copyValue(value)
		if err != nil {
			return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("copy value for key %q: %v", key, err))
		}
		entries[key] = copied
	}
	return entries, nil
}

func (s *storeImpl) GetStoreInfo() (store.StoreInfo, error) {
	infoCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	return store.StoreInfo{
		Entries:   len(s.data),
		Persister: s.persister.Info(),
	}, nil
}
