package persister

import (
	"maps"
	"sync"
)

type memoryPersisterImpl struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewMemoryPersister creates a persister without a backing location. The
// document only lives as long as the persister itself. This is intended for
// ephemeral stores and for tests that need a real persister without disk.
//
// Save and Load copy the top level of the document, so callers cannot alias
// the retained mapping itself. Nested values are shared.
func NewMemoryPersister() IPersister {
	return &memoryPersisterImpl{
		entries: map[string]any{},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (p *memoryPersisterImpl) Load() (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return maps.Clone(p.entries), nil
}

func (p *memoryPersisterImpl) Save(entries map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries = maps.Clone(entries)
	return nil
}

func (p *memoryPersisterImpl) Info() Info {
	return Info{
		Type:      "memory",
		SizeBytes: -1,
	}
}
