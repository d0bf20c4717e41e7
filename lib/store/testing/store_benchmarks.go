package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/sKV/lib/store"
)

// RunStoreBenchmarks runs all benchmarks for an IStore implementation.
// The factory must return a fresh, empty store on every call. For persistent
// stores every mutation includes a full rewrite of the backing file and the
// write numbers are dominated by that.
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory())
		})

		b.Run("SetExisting", func(b *testing.B) {
			benchmarkSetExisting(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Has", func(b *testing.B) {
			benchmarkHas(b, factory())
		})

		b.Run("Update", func(b *testing.B) {
			benchmarkUpdate(b, factory())
		})

		b.Run("GetAll", func(b *testing.B) {
			benchmarkGetAll(b, factory())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Set operation with new keys
func benchmarkSet(b *testing.B, s store.IStore) {
	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx := atomic.AddInt64(&counter, 1)
			_ = s.Set(fmt.Sprintf("bench-key-%d", idx), fmt.Sprintf("bench-value-%d", idx))
		}
	})
}

// Benchmark for Set operation overwriting existing keys
func benchmarkSetExisting(b *testing.B, s store.IStore) {
	numKeys := 100
	for i := 0; i < numKeys; i++ {
		_ = s.Set(fmt.Sprintf("bench-key-%d", i), "initial")
	}

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx := atomic.AddInt64(&counter, 1)
			key := fmt.Sprintf("bench-key-%d", idx%int64(numKeys))
			_ = s.Set(key, fmt.Sprintf("bench-value-%d", idx))
		}
	})
}

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, s store.IStore) {
	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		_ = s.Set(fmt.Sprintf("bench-key-%d", i), fmt.Sprintf("bench-value-%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("bench-key-%d", counter%numKeys)
			_, _, _ = s.Get(key)
			counter++
		}
	})
}

// Parallel benchmarking for Has operation
func benchmarkHas(b *testing.B, s store.IStore) {
	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		_ = s.Set(fmt.Sprintf("bench-key-%d", i), fmt.Sprintf("bench-value-%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			// every second lookup misses
			key := fmt.Sprintf("bench-key-%d", counter%(numKeys*2))
			_, _ = s.Has(key)
			counter++
		}
	})
}

// Benchmark for batched writes via Update
func benchmarkUpdate(b *testing.B, s store.IStore) {
	batchSize := 10

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx := atomic.AddInt64(&counter, 1)
			batch := make(map[string]any, batchSize)
			for i := 0; i < batchSize; i++ {
				batch[fmt.Sprintf("batch-%d-key-%d", idx, i)] = fmt.Sprintf("value-%d", i)
			}
			_ = s.Update(batch)
		}
	})
}

// Benchmark for snapshot reads via GetAll
func benchmarkGetAll(b *testing.B, s store.IStore) {
	numKeys := 100
	for i := 0; i < numKeys; i++ {
		_ = s.Set(fmt.Sprintf("bench-key-%d", i), fmt.Sprintf("bench-value-%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = s.GetAll()
		}
	})
}

// Benchmark for mixed usage patterns (read-mostly, as settings stores are)
func benchmarkMixedUsage(b *testing.B, s store.IStore) {
	numKeys := 100
	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		keys[i] = fmt.Sprintf("bench-key-%d", i)
		_ = s.Set(keys[i], fmt.Sprintf("bench-value-%d", i))
	}

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		localCounter := 0
		for pb.Next() {
			idx := int(atomic.AddInt64(&counter, 1)-1) % numKeys
			key := keys[idx]

			// 8 reads for every 2 writes
			switch localCounter % 10 {
			case 0, 1, 2, 3, 4, 5:
				_, _, _ = s.Get(key)
			case 6, 7:
				_, _ = s.Has(key)
			case 8:
				_ = s.Set(key, fmt.Sprintf("mixed-value-%d", localCounter))
			case 9:
				_ = s.Delete(key)
			}

			localCounter++
		}
	})
}
