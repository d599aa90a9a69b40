package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/bmsync/internal/model"
)

// Storage defines the interface for persisting the managed bookmark tree.
type Storage interface {
	Load() ([]model.Node, error)
	Save(tree []model.Node) error
}

// Settings is a flat string key/value store for sync configuration.
type Settings interface {
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
}

// JSONStorage implements Storage using a JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the tree from the JSON file.
// Returns an empty tree if the file doesn't exist.
func (s *JSONStorage) Load() ([]model.Node, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Node{}, nil
		}
		return nil, err
	}

	tree, err := model.DecodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return tree, nil
}

// Save writes the tree to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Save(tree []model.Node) error {
	if err := model.Validate(tree); err != nil {
		return err
	}

	data, err := model.EncodeTree(tree)
	if err != nil {
		return err
	}

	return WriteFileAtomic(s.path, data, 0644)
}

// JSONSettings implements Settings on a small JSON object file.
type JSONSettings struct {
	path string
}

// NewJSONSettings creates settings backed by the given file.
func NewJSONSettings(path string) *JSONSettings {
	return &JSONSettings{path: path}
}

// Get returns the requested keys. Missing keys map to "".
func (s *JSONSettings) Get(_ context.Context, keys ...string) (map[string]string, error) {
	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = all[k]
	}
	return out, nil
}

// Set merges values into the stored settings.
func (s *JSONSettings) Set(_ context.Context, values map[string]string) error {
	all, err := s.readAll()
	if err != nil {
		return err
	}
	for k, v := range values {
		all[k] = v
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.path, data, 0600)
}

func (s *JSONSettings) readAll() (map[string]string, error) {
	all := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return all, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return all, nil
}

// WriteFileAtomic writes data via a temp file and rename so readers never see a
// partial file. Creates the directory if it doesn't exist.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// DefaultDataDir returns the default data directory: ~/.config/bm
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bm"), nil
}

// Open opens the storage backend named by kind ("sqlite" or "json") inside
// dataDir, together with the matching settings store. The returned close
// function releases any database handle.
func Open(kind, dataDir string) (Storage, Settings, func() error, error) {
	switch kind {
	case "", "sqlite":
		s, err := NewSQLiteStorage(filepath.Join(dataDir, "bookmarks.db"))
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, s.Close, nil
	case "json":
		s := NewJSONStorage(filepath.Join(dataDir, "bookmarks.json"))
		kv := NewJSONSettings(filepath.Join(dataDir, "settings.json"))
		return s, kv, func() error { return nil }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown storage %q (want sqlite or json)", kind)
}
