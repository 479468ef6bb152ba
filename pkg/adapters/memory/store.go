package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/vdom"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the tree in memory. Trees are kept encoded so later changes
// to the caller's nodes never leak into the store.
func (s *Store) Save(ctx context.Context, uri string, node vdom.Node) error {
	data, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[uri] = data
	return nil
}

// Load retrieves a fresh copy of the tree.
func (s *Store) Load(ctx context.Context, uri string) (vdom.Node, error) {
	s.mu.RLock()
	data, ok := s.data[uri]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return vdom.Unmarshal(data)
}

// Delete removes the tree.
func (s *Store) Delete(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, uri)
	return nil
}

// List returns the uris with a saved tree, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.data))
	for uri := range s.data {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris, nil
}
