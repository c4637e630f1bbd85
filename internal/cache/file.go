package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"go.uber.org/zap"
)

// FileStore keeps every entry in a single JSON document on disk so cached
// results survive process restarts. The document is loaded once at
// construction and rewritten on every Set; an unreadable or malformed
// document degrades to an empty store rather than failing, so corrupt cache
// state is indistinguishable from a cache miss.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	items  map[string]json.RawMessage
	logger *zap.Logger
}

// NewFileStore loads (or initializes) the JSON document at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &FileStore{
		path:   path,
		items:  make(map[string]json.RawMessage),
		logger: logger.Named("filecache"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cache document unreadable, starting empty",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return s
	}

	if err := json.Unmarshal(data, &s.items); err != nil {
		logger.Warn("cache document malformed, starting empty",
			zap.String("path", path),
			zap.Error(err),
		)
		s.items = make(map[string]json.RawMessage)
	}

	return s
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	raw, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	// The value must be valid JSON; the on-disk document is itself JSON.
	if !json.Valid(value) {
		return fmt.Errorf("filecache: value for %q is not valid JSON", key)
	}

	valueCopy := make(json.RawMessage, len(value))
	copy(valueCopy, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = valueCopy
	return s.persistLocked()
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return nil
	}
	delete(s.items, key)
	return s.persistLocked()
}

// Len returns the number of entries currently stored. Useful for tests.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// persistLocked writes the whole document atomically: marshal, write to a
// temp file in the same directory, rename over the target. A reader never
// observes a torn entry.
func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("filecache: marshal document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filecache: create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("filecache: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filecache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filecache: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filecache: replace cache document: %w", err)
	}

	return nil
}
