package kv

import (
	"context"
	"os"
	"path/filepath"
)

// FileStore keeps one file per key in a directory. Writes go through a
// temporary file and a rename so readers never see a torn value.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store in dir, creating the directory if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

// Get reads the value stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes data under key.
func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes the file for key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// path converts a key to a file path. The first two hash characters name a
// subdirectory to keep directories small.
func (s *FileStore) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

var _ Store = (*FileStore)(nil)
