package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore implements Store using a JSON file under a data directory.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// NewFileStore opens (or creates) the store file in dir. A file that does not
// parse is moved to storage.json.corrupt and the store starts empty.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &FileStore{
		path:   filepath.Join(dir, "storage.json"),
		values: map[string]string{},
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := s.load(); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
				return nil, err
			}
			aside := s.path + ".corrupt"
			logger.Warn("discarding unreadable local storage",
				zap.String("path", s.path), zap.String("moved_to", aside), zap.Error(err))
			if err := os.Rename(s.path, aside); err != nil {
				logger.Warn("failed to move local storage aside", zap.Error(err))
			}
			s.values = map[string]string{}
		}
	}
	return s, nil
}

// Path is the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return nil
	}
	if err := json.Unmarshal(content, &s.values); err != nil {
		return fmt.Errorf("corrupt storage file %s: %w", s.path, err)
	}
	return nil
}

// save writes through a temp file so a crash never leaves half a file.
func (s *FileStore) save() error {
	content, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) GetString(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FileStore) SetString(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}
