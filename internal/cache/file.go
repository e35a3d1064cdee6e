package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// FileStore keeps one JSON file per entry under a root directory.
//
// The key is used verbatim as the file name: entry K lives at
// <dir>/<K[:2]>/<K>.json. Unreadable entries are treated as misses and
// removed.
type FileStore struct {
	dir    string
	logger *log.Logger
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
// A nil logger discards output.
func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Get reads the entry stored under key.
func (s *FileStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	path := s.path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("file store get: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil || len(e.PNG) == 0 {
		s.drop(path, err)
		return nil, false, nil
	}
	return &e, true, nil
}

func (s *FileStore) drop(path string, cause error) {
	s.logger.Warn("dropping unreadable cache entry", "path", path, "err", cause)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove unreadable cache entry", "path", path, "err", err)
	}
}

// Put writes e under key. The file is replaced atomically.
func (s *FileStore) Put(_ context.Context, key string, e *Entry) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if e == nil {
		return ErrNilEntry
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("file store put: %w", err)
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file store put: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), key+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store put: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file store put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store put: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store put: %w", err)
	}
	return nil
}

// Delete removes the entry under key. Missing keys are not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file store delete: %w", err)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key[:2], key+".json")
}

var _ Store = (*FileStore)(nil)
