package persister

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ValentinKolb/sKV/lib/codec"
)

type filePersisterImpl struct {
	mu    sync.Mutex
	path  string
	codec codec.ICodec
	size  int64
}

// NewFilePersister creates a persister that keeps the document in a single
// file at path, encoded with the given codec. The file and its parent
// directories are only created by the first successful Save.
//
// Save replaces the file atomically: the document is written to a temporary
// file in the same directory, synced to storage media, and renamed onto
// path in one filesystem operation. A crash mid-write therefore leaves
// either the old or the new document, never a truncated mix.
func NewFilePersister(path string, c codec.ICodec) IPersister {
	return &filePersisterImpl{
		path:  path,
		codec: c,
		size:  -1,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (p *filePersisterImpl) Load() (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			// first run, the file is created by the first Save
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	entries, err := p.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupted, p.path, err)
	}

	p.size = int64(len(data))
	return entries, nil
}

func (p *filePersisterImpl) Save(entries map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := p.codec.Encode(entries)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory %s: %w", dir, err)
	}

	// the temp file must live in the same directory as the target, renames
	// across filesystems are not atomic
	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after the successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("replace %s: %w", p.path, err)
	}

	p.size = int64(len(data))
	return nil
}

func (p *filePersisterImpl) Info() Info {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Info{
		Type:      "file",
		Location:  p.path,
		Codec:     p.codec.Name(),
		SizeBytes: p.size,
	}
}
