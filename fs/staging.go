package fs

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/docrag"
)

// Ensure StagingStore implements docrag.StagingStore at compile time.
var _ docrag.StagingStore = (*StagingStore)(nil)

// AddressScheme prefixes addresses returned by StagingStore.Put.
const AddressScheme = "file://"

// StagingStore keeps staged objects as flat files in a single directory.
// Keys are path-escaped into file names, so "staging/run/0.txt" becomes
// "staging%2Frun%2F0.txt".
type StagingStore struct {
	dir string
}

// NewStagingStore creates a StagingStore rooted at dir. The directory is
// created on first write.
func NewStagingStore(dir string) (*StagingStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &StagingStore{dir: abs}, nil
}

// Dir returns the directory objects are stored in.
func (s *StagingStore) Dir() string {
	return s.dir
}

func (s *StagingStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return AddressScheme + filepath.ToSlash(path), nil
}

func (s *StagingStore) Read(ctx context.Context, address string) ([]byte, error) {
	if !strings.HasPrefix(address, AddressScheme) {
		return nil, docrag.Errorf(docrag.EINVALID, "not a local staging address: %s", address)
	}
	path := filepath.FromSlash(strings.TrimPrefix(address, AddressScheme))
	if filepath.Dir(path) != s.dir {
		return nil, docrag.Errorf(docrag.EINVALID, "address outside staging area: %s", address)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, docrag.Errorf(docrag.ENOTFOUND, "staged object not found: %s", address)
	}
	return data, err
}

func (s *StagingStore) Delete(ctx context.Context, key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *StagingStore) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		// Skip directories and in-flight temp files.
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		key, err := url.PathUnescape(e.Name())
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *StagingStore) pathFor(key string) (string, error) {
	if key == "" {
		return "", docrag.Errorf(docrag.EINVALID, "staging key required")
	}
	if strings.HasPrefix(key, ".") {
		return "", docrag.Errorf(docrag.EINVALID, "staging key must not start with a dot: %s", key)
	}
	return filepath.Join(s.dir, url.PathEscape(key)), nil
}
