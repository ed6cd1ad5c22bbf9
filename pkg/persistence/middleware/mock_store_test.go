package middleware_test

import (
	"context"
	"fmt"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It keeps the saved pointers so tests can inspect what reached it.
type MockStore struct {
	data map[string]*domain.Package
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Package),
	}
}

func (s *MockStore) Save(ctx context.Context, name string, pkg *domain.Package) error {
	s.data[name] = pkg
	return nil
}

func (s *MockStore) Load(ctx context.Context, name string) (*domain.Package, error) {
	pkg, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPackageNotFound, name)
	}
	return pkg, nil
}

func (s *MockStore) Delete(ctx context.Context, name string) error {
	delete(s.data, name)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.PackageStore = (*MockStore)(nil)
