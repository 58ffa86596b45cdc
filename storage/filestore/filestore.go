// Package filestore persists client state as a single JSON file on disk.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-storefront/storage"
)

var _ storage.Storage = (*FileStore)(nil)

// FileStore stores key/value pairs in one JSON object file. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// half-written file behind. A missing or corrupt file reads as empty
// rather than failing — lost client state is recoverable, a client that
// refuses to start is not.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// New creates a FileStore backed by the file at path, creating parent
// directories as needed.
func New(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[filestore.New] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "[filestore.New] create data directory")
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	value, ok := values[key]
	return value, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	values[key] = value
	return f.save(values)
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *FileStore) GetOrSet(key, value string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	if existing, ok := values[key]; ok {
		return existing, nil
	}
	values[key] = value
	if err := f.save(values); err != nil {
		return "", err
	}
	return value, nil
}

// load reads the backing file. Unreadable or malformed content is treated
// as an empty store.
func (f *FileStore) load() map[string]string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return make(map[string]string)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string)
	}
	return values
}

func (f *FileStore) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore.save] marshal values")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storefront-*")
	if err != nil {
		return errors.Wrap(err, "[FileStore.save] create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.save] write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.save] close temp file")
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.save] replace store file")
	}
	return nil
}
