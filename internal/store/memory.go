package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store used by tests. It round-trips documents
// through JSON so code under test sees the same encoding behavior as the
// file backend.
type MemStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{docs: map[string][]byte{}}
}

func (s *MemStore) Load(ctx context.Context, name string, out interface{}, def interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.docs[name]
	if !ok {
		var err error
		b, err = json.Marshal(def)
		if err != nil {
			return fmt.Errorf("failed to encode default for %s: %w", name, err)
		}
		s.docs[name] = b
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

func (s *MemStore) Save(ctx context.Context, name string, doc interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	s.mu.Lock()
	s.docs[name] = b
	s.mu.Unlock()
	return nil
}
