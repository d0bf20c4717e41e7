package fstore

import (
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/sKV/lib/codec"
	"github.com/ValentinKolb/sKV/lib/persister"
	"github.com/ValentinKolb/sKV/lib/store"
	storetesting "github.com/ValentinKolb/sKV/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "FileStoreJSON", func() store.IStore {
		s, err := Open(filepath.Join(t.TempDir(), "store.json"))
		if err != nil {
			t.Fatalf("Failed to open store: %v", err)
		}
		return s
	})

	storetesting.RunStoreTests(t, "FileStoreYAML", func() store.IStore {
		c := codec.NewYAMLCodec()
		path := filepath.Join(t.TempDir(), "store.yaml")
		s, err := New(func() persister.IPersister {
			return persister.NewFilePersister(path, c)
		}, c)
		if err != nil {
			t.Fatalf("Failed to open store: %v", err)
		}
		return s
	})

	storetesting.RunStoreTests(t, "MemoryStore", func() store.IStore {
		s, err := New(persister.NewMemoryPersister, codec.NewJSONCodec())
		if err != nil {
			t.Fatalf("Failed to open store: %v", err)
		}
		return s
	})
}

func Benchmark(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "FileStoreJSON", func() store.IStore {
		s, err := Open(filepath.Join(b.TempDir(), "store.json"))
		if err != nil {
			b.Fatalf("Failed to open store: %v", err)
		}
		return s
	})

	storetesting.RunStoreBenchmarks(b, "MemoryStore", func() store.IStore {
		s, err := New(persister.NewMemoryPersister, codec.NewJSONCodec())
		if err != nil {
			b.Fatalf("Failed to open store: %v", err)
		}
		return s
	})
}
