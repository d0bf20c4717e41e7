package fstore

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/sKV/lib/codec"
	"github.com/ValentinKolb/sKV/lib/persister"
	"github.com/ValentinKolb/sKV/lib/store"
)

// ----------------------------------------------------------------------------
// Test helpers
// ----------------------------------------------------------------------------

// countingPersisterImpl wraps another persister and counts Save calls.
type countingPersisterImpl struct {
	persister.IPersister
	saves atomic.Int64
}

func (p *countingPersisterImpl) Save(entries map[string]any) error {
	p.saves.Add(1)
	return p.IPersister.Save(entries)
}

// flakyPersisterImpl wraps another persister and fails Save while failing
// is set. Toggled by single-goroutine tests only.
type flakyPersisterImpl struct {
	persister.IPersister
	failing bool
}

func (p *flakyPersisterImpl) Save(entries map[string]any) error {
	if p.failing {
		return errors.New("simulated disk failure")
	}
	return p.IPersister.Save(entries)
}

// newCountingStore creates a memory-backed store that counts persist calls.
func newCountingStore(t *testing.T) (store.IStore, *countingPersisterImpl) {
	t.Helper()
	counting := &countingPersisterImpl{IPersister: persister.NewMemoryPersister()}
	s, err := New(func() persister.IPersister { return counting }, codec.NewJSONCodec())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s, counting
}

// errCode extracts the store error code, failing the test if err is not a
// *store.Error.
func errCode(t *testing.T, err error) store.RetCode {
	t.Helper()
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected *store.Error, got %T: %v", err, err)
	}
	return storeErr.Code
}

// ----------------------------------------------------------------------------
// Test functions
// ----------------------------------------------------------------------------

// TestOpenMissingFile tests that opening a store on a missing file yields an
// empty store and that the file is only created by the first write.
func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	entries, err := s.GetAll()
	if err != nil {
		t.Fatalf("Failed to get all entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty store, got %d entries", len(entries))
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no file before the first write, stat returned %v", err)
	}

	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected file after the first write, stat returned %v", err)
	}
}

// TestOpenExistingFile tests that a store picks up entries written by a
// previous instance.
func TestOpenExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{
  "language": "de",
  "retries": 3,
  "verbose": true
}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	value, loaded, err := s.Get("language")
	if err != nil || !loaded {
		t.Fatalf("Failed to get value: loaded=%v, err=%v", loaded, err)
	}
	if value != "de" {
		t.Errorf("Expected 'de', got %v", value)
	}

	value, loaded, err = s.Get("retries")
	if err != nil || !loaded {
		t.Fatalf("Failed to get value: loaded=%v, err=%v", loaded, err)
	}
	if value != float64(3) {
		t.Errorf("Expected 3, got %v (%T)", value, value)
	}
}

// TestOpenCorruptFile tests that opening a store on an unreadable file fails
// with RetCCorruptStore and leaves the file untouched.
func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	garbage := []byte(`{"broken": `)
	if err := os.WriteFile(path, garbage, 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatal("Expected error for corrupt file, got nil")
	}
	if code := errCode(t, err); code != store.RetCCorruptStore {
		t.Errorf("Expected RetCCorruptStore, got %v", code)
	}

	after, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("Failed to re-read file: %v", readErr)
	}
	if string(after) != string(garbage) {
		t.Error("Corrupt file was modified by the failed open")
	}
}

// TestReopenRoundTrip tests that a store reopened from disk holds exactly
// the entries of the store that wrote the file.
func TestReopenRoundTrip(t *testing.T) {
	for name, c := range map[string]codec.CodecFactory{
		"JSON": codec.NewJSONCodec,
		"YAML": codec.NewYAMLCodec,
	} {
		t.Run(name, func(t *testing.T) {
			c := c()
			path := filepath.Join(t.TempDir(), "settings."+c.Name())
			factory := func() persister.IPersister {
				return persister.NewFilePersister(path, c)
			}

			s, err := New(factory, c)
			if err != nil {
				t.Fatalf("Failed to open store: %v", err)
			}

			entries := map[string]any{
				"server": map[string]any{
					"host": "localhost",
					"port": 8080,
					"tls":  true,
				},
				"tags":    []any{"alpha", "beta"},
				"timeout": 2.5,
				"comment": nil,
			}
			if err := s.Update(entries); err != nil {
				t.Fatalf("Failed to update store: %v", err)
			}

			before, err := s.GetAll()
			if err != nil {
				t.Fatalf("Failed to get all entries: %v", err)
			}

			reopened, err := New(factory, c)
			if err != nil {
				t.Fatalf("Failed to reopen store: %v", err)
			}
			after, err := reopened.GetAll()
			if err != nil {
				t.Fatalf("Failed to get all entries: %v", err)
			}

			if !reflect.DeepEqual(before, after) {
				t.Errorf("Entries changed across reopen:\nbefore: %v\nafter:  %v", before, after)
			}
		})
	}
}

// TestSetPersistsOnce tests that every Set call persists exactly once.
func TestSetPersistsOnce(t *testing.T) {
	s, counting := newCountingStore(t)

	for i, key := range []string{"a", "b", "c"} {
		if err := s.Set(key, i); err != nil {
			t.Fatalf("Failed to set value: %v", err)
		}
		if got := counting.saves.Load(); got != int64(i+1) {
			t.Errorf("Expected %d persist calls after %d sets, got %d", i+1, i+1, got)
		}
	}
}

// TestUpdatePersistsOnce tests that a batch update persists exactly once
// regardless of the batch size.
func TestUpdatePersistsOnce(t *testing.T) {
	s, counting := newCountingStore(t)

	err := s.Update(map[string]any{
		"host":    "localhost",
		"port":    8080,
		"verbose": true,
		"tags":    []any{"a", "b", "c"},
	})
	if err != nil {
		t.Fatalf("Failed to update store: %v", err)
	}

	if got := counting.saves.Load(); got != 1 {
		t.Errorf("Expected exactly 1 persist call for the batch, got %d", got)
	}

	// an empty batch still persists once
	if err := s.Update(map[string]any{}); err != nil {
		t.Fatalf("Failed to apply empty update: %v", err)
	}
	if got := counting.saves.Load(); got != 2 {
		t.Errorf("Expected 2 persist calls after empty update, got %d", got)
	}
}

// TestDeleteAbsentDoesNotPersist tests that deleting a missing key is a
// no-op that skips persistence.
func TestDeleteAbsentDoesNotPersist(t *testing.T) {
	s, counting := newCountingStore(t)

	if err := s.Delete("missing"); err != nil {
		t.Fatalf("Failed to delete missing key: %v", err)
	}
	if got := counting.saves.Load(); got != 0 {
		t.Errorf("Expected no persist call for absent key, got %d", got)
	}

	if err := s.Set("present", 1); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	if err := s.Delete("present"); err != nil {
		t.Fatalf("Failed to delete key: %v", err)
	}
	if got := counting.saves.Load(); got != 2 {
		t.Errorf("Expected 2 persist calls (set + delete), got %d", got)
	}
}

// TestSetUnserializableValue tests that an unserializable value is rejected
// with RetCSerializationError before the store or the file change.
func TestSetUnserializableValue(t *testing.T) {
	s, counting := newCountingStore(t)

	err := s.Set("callback", func() {})
	if err == nil {
		t.Fatal("Expected error for unserializable value, got nil")
	}
	if code := errCode(t, err); code != store.RetCSerializationError {
		t.Errorf("Expected RetCSerializationError, got %v", code)
	}

	loaded, getErr := s.Has("callback")
	if getErr != nil {
		t.Fatalf("Failed to check key: %v", getErr)
	}
	if loaded {
		t.Error("Rejected value must not appear in the store")
	}
	if got := counting.saves.Load(); got != 0 {
		t.Errorf("Expected no persist call for rejected value, got %d", got)
	}
}

// TestUpdateUnserializableBatch tests that a batch containing one bad value
// is rejected as a whole, without partial application.
func TestUpdateUnserializableBatch(t *testing.T) {
	s, counting := newCountingStore(t)

	err := s.Update(map[string]any{
		"good": "value",
		"bad":  make(chan int),
	})
	if err == nil {
		t.Fatal("Expected error for unserializable batch, got nil")
	}
	if code := errCode(t, err); code != store.RetCSerializationError {
		t.Errorf("Expected RetCSerializationError, got %v", code)
	}

	loaded, getErr := s.Has("good")
	if getErr != nil {
		t.Fatalf("Failed to check key: %v", getErr)
	}
	if loaded {
		t.Error("No key of a rejected batch may appear in the store")
	}
	if got := counting.saves.Load(); got != 0 {
		t.Errorf("Expected no persist call for rejected batch, got %d", got)
	}
}

// TestSetCyclicValue tests that a self-referential value is rejected with
// RetCSerializationError before the store or the file change, and that the
// store stays usable afterwards.
func TestSetCyclicValue(t *testing.T) {
	for name, factory := range map[string]codec.CodecFactory{
		"JSON": codec.NewJSONCodec,
		"YAML": codec.NewYAMLCodec,
	} {
		t.Run(name, func(t *testing.T) {
			counting := &countingPersisterImpl{IPersister: persister.NewMemoryPersister()}
			s, err := New(func() persister.IPersister { return counting }, factory())
			if err != nil {
				t.Fatalf("Failed to create store: %v", err)
			}

			cyclic := map[string]any{}
			cyclic["self"] = cyclic

			err = s.Set("cyclic", cyclic)
			if err == nil {
				t.Fatal("Expected error for self-referential value, got nil")
			}
			if code := errCode(t, err); code != store.RetCSerializationError {
				t.Errorf("Expected RetCSerializationError, got %v", code)
			}

			loaded, hasErr := s.Has("cyclic")
			if hasErr != nil {
				t.Fatalf("Failed to check key: %v", hasErr)
			}
			if loaded {
				t.Error("Rejected value must not appear in the store")
			}
			if got := counting.saves.Load(); got != 0 {
				t.Errorf("Expected no persist call for rejected value, got %d", got)
			}

			// the store keeps working after the rejection
			if err := s.Set("plain", "value"); err != nil {
				t.Fatalf("Failed to set value after rejection: %v", err)
			}
		})
	}
}

// TestPersistFailureKeepsMutation tests that a failed persist surfaces
// RetCPersistenceError while the in-memory value stays applied, and that
// the next successful persist writes the full state to disk.
func TestPersistFailureKeepsMutation(t *testing.T) {
	c := codec.NewJSONCodec()
	path := filepath.Join(t.TempDir(), "settings.json")
	flaky := &flakyPersisterImpl{IPersister: persister.NewFilePersister(path, c)}

	s, err := New(func() persister.IPersister { return flaky }, c)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := s.Set("stable", "before"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	flaky.failing = true
	err = s.Set("volatile", "during")
	if err == nil {
		t.Fatal("Expected error for failed persist, got nil")
	}
	if code := errCode(t, err); code != store.RetCPersistenceError {
		t.Errorf("Expected RetCPersistenceError, got %v", code)
	}

	// the mutation survives in memory
	value, loaded, getErr := s.Get("volatile")
	if getErr != nil || !loaded {
		t.Fatalf("Failed to get value: loaded=%v, err=%v", loaded, getErr)
	}
	if value != "during" {
		t.Errorf("Expected 'during', got %v", value)
	}

	// the file still holds the last successful state
	onDisk, loadErr := persister.NewFilePersister(path, c).Load()
	if loadErr != nil {
		t.Fatalf("Failed to load file: %v", loadErr)
	}
	if _, ok := onDisk["volatile"]; ok {
		t.Error("Failed persist must not change the file")
	}

	// the next successful persist reconciles disk with memory
	flaky.failing = false
	if err := s.Set("volatile", "after"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	onDisk, loadErr = persister.NewFilePersister(path, c).Load()
	if loadErr != nil {
		t.Fatalf("Failed to load file: %v", loadErr)
	}
	if onDisk["volatile"] != "after" || onDisk["stable"] != "before" {
		t.Errorf("Expected reconciled file, got %v", onDisk)
	}
}

// TestConcurrentWritersMatchDisk tests that after concurrent writes the file
// holds exactly the in-memory state.
func TestConcurrentWritersMatchDisk(t *testing.T) {
	c := codec.NewJSONCodec()
	path := filepath.Join(t.TempDir(), "settings.json")
	factory := func() persister.IPersister {
		return persister.NewFilePersister(path, c)
	}

	s, err := New(factory, c)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	const numWorkers = 10
	const opsPerWorker = 20

	var wg sync.WaitGroup
	errs := make(chan error, numWorkers*opsPerWorker)
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < opsPerWorker; j++ {
				key := string(rune('a'+worker)) + "-key"
				if err := s.Set(key, j); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent set failed: %v", err)
	}

	inMemory, err := s.GetAll()
	if err != nil {
		t.Fatalf("Failed to get all entries: %v", err)
	}
	onDisk, err := factory().Load()
	if err != nil {
		t.Fatalf("Failed to load file: %v", err)
	}

	if !reflect.DeepEqual(inMemory, onDisk) {
		t.Errorf("Disk state diverged from memory:\nmemory: %v\ndisk:   %v", inMemory, onDisk)
	}
}

// TestGetStoreInfo tests that store info reports entry count and the
// persister description.
func TestGetStoreInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	if err := s.Update(map[string]any{"a": 1, "b": 2}); err != nil {
		t.Fatalf("Failed to update store: %v", err)
	}

	info, err := s.GetStoreInfo()
	if err != nil {
		t.Fatalf("Failed to get store info: %v", err)
	}
	if info.Entries != 2 {
		t.Errorf("Expected 2 entries, got %d", info.Entries)
	}
	if info.Persister.Type != "file" {
		t.Errorf("Expected persister type 'file', got %q", info.Persister.Type)
	}
	if info.Persister.Location != path {
		t.Errorf("Expected location %q, got %q", path, info.Persister.Location)
	}
	if info.Persister.Codec != "json" {
		t.Errorf("Expected codec 'json', got %q", info.Persister.Codec)
	}
	if info.Persister.SizeBytes <= 0 {
		t.Errorf("Expected positive file size, got %d", info.Persister.SizeBytes)
	}
}

// TestOpCounters tests that every operation bumps its own counter, in
// particular that GetDefault and GetStoreInfo do not report as plain gets.
func TestOpCounters(t *testing.T) {
	s, _ := newCountingStore(t)
	if err := s.Set("present", 1); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	getBefore := getCalls.Get()
	getDefaultBefore := getDefaultCalls.Get()
	infoBefore := infoCalls.Get()

	if _, err := s.GetDefault("missing", "fallback"); err != nil {
		t.Fatalf("Failed to get default: %v", err)
	}
	if _, err := s.GetStoreInfo(); err != nil {
		t.Fatalf("Failed to get store info: %v", err)
	}

	if got := getDefaultCalls.Get(); got != getDefaultBefore+1 {
		t.Errorf("Expected getdefault counter at %d, got %d", getDefaultBefore+1, got)
	}
	if got := infoCalls.Get(); got != infoBefore+1 {
		t.Errorf("Expected info counter at %d, got %d", infoBefore+1, got)
	}
	if got := getCalls.Get(); got != getBefore {
		t.Errorf("Expected get counter unchanged at %d, got %d", getBefore, got)
	}
}
