// Package fs implements file-backed storage: the corpus registry, a local
// staging area, and the loader for uploaded files.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fwojciec/docrag"
)

// Ensure Registry implements docrag.CorpusRegistry at compile time.
var _ docrag.CorpusRegistry = (*Registry)(nil)

// Registry is a corpus registry persisted as a flat JSON object mapping
// labels to handles. Every mutation rewrites the file atomically before it
// returns. Registry is safe for concurrent use.
type Registry struct {
	path string

	mu      sync.RWMutex
	entries map[string]string
}

// OpenRegistry loads the registry stored at path. A missing file yields an
// empty registry; the file is created on the first mutation.
func OpenRegistry(path string) (*Registry, error) {
	r := &Registry{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(data, &r.entries); err != nil {
		return nil, docrag.Errorf(docrag.EINTERNAL, "corrupt registry file %s: %v", path, err)
	}
	return r, nil
}

// Path returns the file the registry is saved to.
func (r *Registry) Path() string {
	return r.path
}

func (r *Registry) Lookup(label string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.entries[label]
	return handle, ok
}

func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]string, 0, len(r.entries))
	for label := range r.entries {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Entries returns a copy of the label to handle mapping.
func (r *Registry) Entries() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.entries))
	for label, handle := range r.entries {
		out[label] = handle
	}
	return out
}

func (r *Registry) Register(ctx context.Context, label, handle string) error {
	if strings.TrimSpace(label) == "" {
		return docrag.Errorf(docrag.EINVALID, "corpus label required")
	}
	if handle == "" {
		return docrag.Errorf(docrag.EINVALID, "corpus handle required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[label]; ok {
		if existing == handle {
			return nil
		}
		return docrag.Errorf(docrag.ECONFLICT, "corpus %q is already registered to %s", label, existing)
	}

	r.entries[label] = handle
	if err := r.save(); err != nil {
		delete(r.entries, label)
		return err
	}
	return nil
}

func (r *Registry) Unregister(ctx context.Context, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.entries[label]
	if !ok {
		return docrag.Errorf(docrag.ENOTFOUND, "corpus %q not found", label)
	}

	delete(r.entries, label)
	if err := r.save(); err != nil {
		r.entries[label] = handle
		return err
	}
	return nil
}

// save writes the entries to a temp file next to the registry and renames
// it into place. Callers must hold mu.
func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(r.path, append(data, '\n'))
}

// writeFileAtomic replaces path with data so readers never see a partial
// file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
