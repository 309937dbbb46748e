package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File stores one JSON file per key in a directory. Writes go through a
// temp file and rename so that a crash mid-write never truncates the
// previous document.
type File struct {
	dir string
}

// OpenFile creates the data directory if needed and returns a provider
// rooted at it.
func OpenFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *File) Load(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &PersistenceError{Op: "load", Key: key, Err: err}
	}
	return data, true, nil
}

func (f *File) Save(key string, data []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func (f *File) Keys() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Key: "*", Err: err}
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}
