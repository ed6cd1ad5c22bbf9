package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/aastree/pkg/domain"
)

// Store implements ports.PackageStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Package
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Package),
	}
}

// Save keeps a deep copy so later edits to pkg do not leak into the store.
func (s *Store) Save(ctx context.Context, name string, pkg *domain.Package) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	cp := pkg.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = cp
	return nil
}

// Load returns a copy of the stored package.
func (s *Store) Load(ctx context.Context, name string) (*domain.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkg, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPackageNotFound, name)
	}
	return pkg.Clone(), nil
}

// Delete removes the package.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
