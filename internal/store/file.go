package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var safeName = regexp.MustCompile(`^[a-z0-9-]+$`)

// FileStore keeps each logical document as a standalone JSON file under a
// data directory. This is the default backend and matches the layout of the
// clinic's existing data files.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the data directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) (string, error) {
	if !safeName.MatchString(name) {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, name string, out interface{}, def interface{}) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		b, err = json.MarshalIndent(def, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode default for %s: %w", name, err)
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Save(ctx context.Context, name string, doc interface{}) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
