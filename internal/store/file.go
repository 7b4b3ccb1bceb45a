package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// errCorrupt marks a storage file that exists but does not hold a JSON object.
var errCorrupt = errors.New("corrupt storage file")

// FileStore persists all keys as one JSON object on disk.
type FileStore struct {
	mu       sync.Mutex
	path     string
	readFile func(name string) ([]byte, error)
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, readFile: os.ReadFile}
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.readLocked()
	switch {
	case errors.Is(err, errCorrupt):
		// A corrupt file is replaced; I/O errors leave it alone.
		values = make(map[string]string)
	case err != nil:
		return err
	}
	values[key] = value
	return f.writeLocked(values)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.readLocked()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.writeLocked(values)
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) readLocked() (map[string]string, error) {
	b, err := f.readFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	values := make(map[string]string)
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("%w %s: %w", errCorrupt, f.path, err)
	}
	return values, nil
}

func (f *FileStore) writeLocked(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
