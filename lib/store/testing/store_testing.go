package testing

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/ValentinKolb/sKV/lib/store"
)

// StoreFactory is a function that creates a new, empty instance of an
// IStore implementation
type StoreFactory func() store.IStore

// RunStoreTests runs a comprehensive test suite for an IStore implementation.
// The factory must return a fresh, empty store on every call.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("GetDefault", func(t *testing.T) {
			testGetDefault(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Update", func(t *testing.T) {
			testUpdate(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("GetAll", func(t *testing.T) {
			testGetAll(t, factory())
		})

		t.Run("ValueIsolation", func(t *testing.T) {
			testValueIsolation(t, factory())
		})

		t.Run("NumericValues", func(t *testing.T) {
			testNumericValues(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("StoreInfo", func(t *testing.T) {
			testStoreInfo(t, factory())
		})

		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// asFloat converts any numeric value to float64. Codecs differ in how they
// decode whole numbers (one reads 42 as float64, another as int), tests
// that store integers compare through this helper.
func asFloat(t testing.TB, value any) float64 {
	t.Helper()
	switch v := value.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float64:
		return v
	default:
		t.Fatalf("Expected numeric value, got %T (%v)", value, value)
		return 0
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s store.IStore) {
	testKey := "test-key"

	if err := s.Set(testKey, "test-value1"); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	result, loaded, err := s.Get(testKey)
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	if !loaded {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if result != "test-value1" {
		t.Errorf("Expected value test-value1, got %v", result)
	}

	// overwriting must replace the value
	if err := s.Set(testKey, "test-value2"); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	result, loaded, err = s.Get(testKey)
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	if !loaded || result != "test-value2" {
		t.Errorf("Expected value test-value2, got %v (loaded %v)", result, loaded)
	}

	// missing keys report loaded=false, not an error
	result, loaded, err = s.Get("nonexistent-key")
	if err != nil {
		t.Fatalf("Unexpected error during Get of missing key: %v", err)
	}
	if loaded {
		t.Errorf("Expected nonexistent key to return loaded=false (value %v)", result)
	}

	// a stored null is present, distinct from absence
	if err := s.Set("null-key", nil); err != nil {
		t.Fatalf("Unexpected error during Set of nil value: %v", err)
	}
	result, loaded, err = s.Get("null-key")
	if err != nil {
		t.Fatalf("Unexpected error during Get of nil value: %v", err)
	}
	if !loaded {
		t.Errorf("Expected stored null to be loaded")
	}
	if result != nil {
		t.Errorf("Expected nil value, got %v", result)
	}
}

func testGetDefault(t *testing.T, s store.IStore) {
	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	// present key wins over the fallback
	value, err := s.GetDefault("theme", "light")
	if err != nil {
		t.Fatalf("Unexpected error during GetDefault: %v", err)
	}
	if value != "dark" {
		t.Errorf("Expected dark, got %v", value)
	}

	// absent key yields the fallback
	value, err = s.GetDefault("missing", "light")
	if err != nil {
		t.Fatalf("Unexpected error during GetDefault: %v", err)
	}
	if value != "light" {
		t.Errorf("Expected fallback light, got %v", value)
	}

	// a nil fallback is a valid fallback
	value, err = s.GetDefault("missing", nil)
	if err != nil {
		t.Fatalf("Unexpected error during GetDefault: %v", err)
	}
	if value != nil {
		t.Errorf("Expected nil fallback, got %v", value)
	}

	// a stored null beats the fallback
	if err := s.Set("stored-null", nil); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	value, err = s.GetDefault("stored-null", "fallback")
	if err != nil {
		t.Fatalf("Unexpected error during GetDefault: %v", err)
	}
	if value != nil {
		t.Errorf("Expected stored null, got %v", value)
	}
}

func testHas(t *testing.T, s store.IStore) {
	testKey := "has-test-key"

	loaded, err := s.Has(testKey)
	if err != nil {
		t.Fatalf("Unexpected error during Has: %v", err)
	}
	if loaded {
		t.Errorf("Expected Has to return false for nonexistent key")
	}

	if err := s.Set(testKey, "value"); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	loaded, err = s.Has(testKey)
	if err != nil {
		t.Fatalf("Unexpected error during Has: %v", err)
	}
	if !loaded {
		t.Errorf("Expected Has to return true after Set")
	}

	// null values count as present
	if err := s.Set("null-key", nil); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	loaded, err = s.Has("null-key")
	if err != nil {
		t.Fatalf("Unexpected error during Has: %v", err)
	}
	if !loaded {
		t.Errorf("Expected Has to return true for stored null")
	}
}

func testDelete(t *testing.T, s store.IStore) {
	testKey := "delete-test-key"

	if err := s.Set(testKey, "delete-test-value"); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	if err := s.Delete(testKey); err != nil {
		t.Fatalf("Unexpected error during Delete: %v", err)
	}

	_, loaded, err := s.Get(testKey)
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	if loaded {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}
	loaded, err = s.Has(testKey)
	if err != nil {
		t.Fatalf("Unexpected error during Has: %v", err)
	}
	if loaded {
		t.Errorf("Expected Has to return false after Delete")
	}

	// deleting an absent key is a no-op, not an error
	if err := s.Delete("nonexistent-key"); err != nil {
		t.Errorf("Unexpected error deleting nonexistent key: %v", err)
	}
}

func testUpdate(t *testing.T, s store.IStore) {
	if err := s.Set("untouched", "before"); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	if err := s.Update(map[string]any{
		"a": "1",
		"b": true,
		"c": nil,
	}); err != nil {
		t.Fatalf("Unexpected error during Update: %v", err)
	}

	entries, err := s.GetAll()
	if err != nil {
		t.Fatalf("Unexpected error during GetAll: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("Expected 4 entries after Update, got %d: %+v", len(entries), entries)
	}
	if entries["a"] != "1" || entries["b"] != true {
		t.Errorf("Update values wrong: %+v", entries)
	}
	if value, ok := entries["c"]; !ok || value != nil {
		t.Errorf("Expected stored null for key c, got %v (present %v)", value, ok)
	}

	// keys not named in the batch stay untouched
	if entries["untouched"] != "before" {
		t.Errorf("Update modified unrelated key: %v", entries["untouched"])
	}

	// batch values overwrite existing keys
	if err := s.Update(map[string]any{"a": "2"}); err != nil {
		t.Fatalf("Unexpected error during second Update: %v", err)
	}
	value, _, err := s.Get("a")
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	if value != "2" {
		t.Errorf("Expected overwritten value 2, got %v", value)
	}

	// an empty batch is allowed
	if err := s.Update(map[string]any{}); err != nil {
		t.Errorf("Unexpected error during empty Update: %v", err)
	}
}

func testClear(t *testing.T, s store.IStore) {
	for i := 0; i < 5; i++ {
		if err := s.Set(fmt.Sprintf("key-%d", i), "value"); err != nil {
			t.Fatalf("Unexpected error during Set: %v", err)
		}
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Unexpected error during Clear: %v", err)
	}

	entries, err := s.GetAll()
	if err != nil {
		t.Fatalf("Unexpected error during GetAll: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty store after Clear, got %+v", entries)
	}

	loaded, err := s.Has("key-0")
	if err != nil {
		t.Fatalf("Unexpected error during Has: %v", err)
	}
	if loaded {
		t.Errorf("Expected keys to be gone after Clear")
	}

	// clearing an empty store is allowed
	if err := s.Clear(); err != nil {
		t.Errorf("Unexpected error clearing empty store: %v", err)
	}
}

func testGetAll(t *testing.T, s store.IStore) {
	entries, err := s.GetAll()
	if err != nil {
		t.Fatalf("Unexpected error during GetAll: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("Expected empty non-nil snapshot from fresh store, got %+v", entries)
	}

	if err := s.Update(map[string]any{
		"plain":  "value",
		"nested": map[string]any{"inner": "value"},
	}); err != nil {
		t.Fatalf("Unexpected error during Update: %v", err)
	}

	entries, err = s.GetAll()
	if err != nil {
		t.Fatalf("Unexpected error during GetAll: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %+v", entries)
	}

	// the snapshot is detached: adding and mutating must not reach the store
	entries["added"] = "sneaky"
	entries["nested"].(map[string]any)["inner"] = "changed"

	loaded, err := s.Has("added")
	if err != nil {
		t.Fatalf("Unexpected error during Has: %v", err)
	}
	if loaded {
		t.Errorf("Snapshot mutation leaked a new key into the store")
	}

	value, _, err := s.Get("nested")
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	if value.(map[string]any)["inner"] != "value" {
		t.Errorf("Snapshot mutation leaked into a stored value: %+v", value)
	}
}

func testValueIsolation(t *testing.T, s store.IStore) {
	// mutating the caller's value after Set must not reach the store
	input := []any{"a"}
	if err := s.Set("list", input); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	input[0] = "changed"

	value, _, err := s.Get("list")
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	if list := value.([]any); len(list) != 1 || list[0] != "a" {
		t.Errorf("Caller mutation leaked into the store: %v", value)
	}

	// mutating a returned value must not reach the store without a re-Set
	if err := s.Set("empty-list", []any{}); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	value, _, err = s.Get("empty-list")
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	external := append(value.([]any), "external")
	_ = external

	value, _, err = s.Get("empty-list")
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	if list := value.([]any); len(list) != 0 {
		t.Errorf("Read-side mutation leaked into the store: %v", value)
	}

	// the same holds for nested mappings
	if err := s.Set("doc", map[string]any{"k": "v"}); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}
	value, _, err = s.Get("doc")
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	value.(map[string]any)["k"] = "changed"

	value, _, err = s.Get("doc")
	if err != nil {
		t.Fatalf("Unexpected error during Get: %v", err)
	}
	if value.(map[string]any)["k"] != "v" {
		t.Errorf("Mapping mutation leaked into the store: %v", value)
	}
}

func testNumericValues(t *testing.T, s store.IStore) {
	if err := s.Update(map[string]any{
		"int":      42,
		"negative": -7,
		"float":    1.5,
		"zero":     0,
		"big":      1 << 40,
	}); err != nil {
		t.Fatalf("Unexpected error during Update: %v", err)
	}

	expected := map[string]float64{
		"int":      42,
		"negative": -7,
		"float":    1.5,
		"zero":     0,
		"big":      1 << 40,
	}
	for key, want := range expected {
		value, loaded, err := s.Get(key)
		if err != nil {
			t.Fatalf("Unexpected error during Get of %s: %v", key, err)
		}
		if !loaded {
			t.Errorf("Key %s not found", key)
			continue
		}
		if got := asFloat(t, value); got != want {
			t.Errorf("Numeric mismatch for key %s: expected %v, got %v", key, want, got)
		}
	}
}

func testEdgeCases(t *testing.T, s store.IStore) {
	// empty keys are valid keys
	if err := s.Set("", "value for empty key"); err != nil {
		t.Fatalf("Unexpected error during Set of empty key: %v", err)
	}
	value, loaded, err := s.Get("")
	if err != nil {
		t.Fatalf("Unexpected error during Get of empty key: %v", err)
	}
	if !loaded || value != "value for empty key" {
		t.Errorf("Empty key mismatch: %v (loaded %v)", value, loaded)
	}

	// keys may contain anything a string can hold
	oddKeys := []string{
		"key with spaces",
		"key/with/slashes",
		"key.with.dots",
		"schlüssel-ünïcode-統一",
		"key\nwith\nnewlines",
	}
	for _, key := range oddKeys {
		if err := s.Set(key, "v"); err != nil {
			t.Fatalf("Unexpected error during Set of key %q: %v", key, err)
		}
		if loaded, err := s.Has(key); err != nil || !loaded {
			t.Errorf("Key %q not found after Set (err %v)", key, err)
		}
	}

	// long keys
	longKey := ""
	for i := 0; i < 100; i++ {
		longKey += "0123456789"
	}
	if err := s.Set(longKey, "value for long key"); err != nil {
		t.Fatalf("Unexpected error during Set of long key: %v", err)
	}
	if loaded, err := s.Has(longKey); err != nil || !loaded {
		t.Errorf("Long key not found after Set (err %v)", err)
	}

	// deeply nested values
	nested := any("leaf")
	for i := 0; i < 10; i++ {
		nested = map[string]any{"level": nested}
	}
	if err := s.Set("deep", nested); err != nil {
		t.Fatalf("Unexpected error during Set of nested value: %v", err)
	}
	value, _, err = s.Get("deep")
	if err != nil {
		t.Fatalf("Unexpected error during Get of nested value: %v", err)
	}
	for i := 0; i < 10; i++ {
		m, ok := value.(map[string]any)
		if !ok {
			t.Fatalf("Nesting level %d has type %T", i, value)
		}
		value = m["level"]
	}
	if value != "leaf" {
		t.Errorf("Expected leaf at the bottom, got %v", value)
	}

	// larger sequences
	large := make([]any, 1000)
	for i := range large {
		large[i] = fmt.Sprintf("element-%d", i)
	}
	if err := s.Set("large-list", large); err != nil {
		t.Fatalf("Unexpected error during Set of large list: %v", err)
	}
	value, _, err = s.Get("large-list")
	if err != nil {
		t.Fatalf("Unexpected error during Get of large list: %v", err)
	}
	if list := value.([]any); len(list) != 1000 || list[999] != "element-999" {
		t.Errorf("Large list mismatch (len %d)", len(value.([]any)))
	}
}

func testStoreInfo(t *testing.T, s store.IStore) {
	info, err := s.GetStoreInfo()
	if err != nil {
		t.Fatalf("Unexpected error during GetStoreInfo: %v", err)
	}
	if info.Entries != 0 {
		t.Errorf("Expected 0 entries in fresh store, got %d", info.Entries)
	}
	if info.Persister.Type == "" {
		t.Errorf("Expected persister type to be set")
	}

	for i := 0; i < 3; i++ {
		if err := s.Set(fmt.Sprintf("key-%d", i), i); err != nil {
			t.Fatalf("Unexpected error during Set: %v", err)
		}
	}
	if info, err = s.GetStoreInfo(); err != nil || info.Entries != 3 {
		t.Errorf("Expected 3 entries, got %d (err %v)", info.Entries, err)
	}

	if err := s.Delete("key-0"); err != nil {
		t.Fatalf("Unexpected error during Delete: %v", err)
	}
	if info, err = s.GetStoreInfo(); err != nil || info.Entries != 2 {
		t.Errorf("Expected 2 entries after Delete, got %d (err %v)", info.Entries, err)
	}
}

func testConcurrentWriters(t *testing.T, s store.IStore) {
	numWorkers := 20
	keysPerWorker := 5

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	errs := make(chan error, numWorkers*keysPerWorker)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i)
				value := fmt.Sprintf("value-%d-%d", workerId, i)
				if err := s.Set(key, value); err != nil {
					errs <- fmt.Errorf("set %s: %w", key, err)
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent Set failed: %v", err)
	}

	// every key must have landed with its own value, no lost updates
	for w := 0; w < numWorkers; w++ {
		for i := 0; i < keysPerWorker; i++ {
			key := fmt.Sprintf("worker-%d-key-%d", w, i)
			expected := fmt.Sprintf("value-%d-%d", w, i)

			value, loaded, err := s.Get(key)
			if err != nil {
				t.Fatalf("Unexpected error during Get of %s: %v", key, err)
			}
			if !loaded {
				t.Errorf("Key %s lost", key)
				continue
			}
			if value != expected {
				t.Errorf("Value mismatch for key %s: expected %s, got %v", key, expected, value)
			}
		}
	}

	entries, err := s.GetAll()
	if err != nil {
		t.Fatalf("Unexpected error during GetAll: %v", err)
	}
	if len(entries) != numWorkers*keysPerWorker {
		t.Errorf("Expected %d entries, got %d", numWorkers*keysPerWorker, len(entries))
	}
}

func testRealisticUsage(t *testing.T, s store.IStore) {
	numWorkers := 8
	opsPerWorker := 50

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	errs := make(chan error, numWorkers*opsPerWorker)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			for i := 0; i < opsPerWorker; i++ {
				// mix hot shared keys with worker-private keys
				var key string
				if i%5 == 0 {
					key = fmt.Sprintf("hot-key-%d", i%10)
				} else {
					key = fmt.Sprintf("worker-%d-key-%d", workerId, i)
				}

				var err error
				switch i % 10 {
				case 0, 1, 2, 3, 4:
					err = s.Set(key, fmt.Sprintf("value-%d-%d", workerId, i))
				case 5, 6:
					_, _, err = s.Get(key)
				case 7:
					_, err = s.Has(key)
				case 8:
					err = s.Delete(key)
				case 9:
					err = s.Update(map[string]any{key: "batch-value"})
				}
				if err != nil {
					errs <- fmt.Errorf("op %d on %s: %w", i, key, err)
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}

	// the store must be internally consistent once the writers are done
	first, err := s.GetAll()
	if err != nil {
		t.Fatalf("Unexpected error during GetAll: %v", err)
	}
	second, err := s.GetAll()
	if err != nil {
		t.Fatalf("Unexpected error during GetAll: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Store changed without writers:\nFirst: %+v\nSecond: %+v", first, second)
	}

	for key, expected := range first {
		value, loaded, err := s.Get(key)
		if err != nil {
			t.Fatalf("Unexpected error during Get of %s: %v", key, err)
		}
		if !loaded {
			t.Errorf("Key %s in snapshot but not loadable", key)
			continue
		}
		if !reflect.DeepEqual(value, expected) {
			t.Errorf("Mismatch between Get and GetAll for key %s: %v vs %v", key, value, expected)
		}
	}
}
