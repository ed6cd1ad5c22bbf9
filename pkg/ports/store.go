package ports

import (
	"context"

	"github.com/aretw0/aastree/pkg/domain"
)

// PackageStore persists packages under a name.
type PackageStore interface {
	// Save persists pkg under name, replacing any previous content.
	Save(ctx context.Context, name string, pkg *domain.Package) error

	// Load retrieves the package stored under name.
	// Returns domain.ErrPackageNotFound if nothing is stored under name.
	Load(ctx context.Context, name string) (*domain.Package, error)

	// Delete removes the package. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names.
	List(ctx context.Context) ([]string, error)
}

// Watchable is implemented by stores that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that receives the name of each changed package.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
