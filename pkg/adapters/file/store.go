package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/aastree/internal/logging"
	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// Store implements ports.PackageStore and ports.Watchable on the local
// filesystem. Each package is one file in BasePath.
type Store struct {
	BasePath string
	Format   aasfile.Format
	logger   *slog.Logger
}

type Option func(*Store)

// WithFormat selects the file format. Defaults to JSON.
func WithFormat(format aasfile.Format) Option {
	return func(s *Store) {
		s.Format = format
	}
}

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".aastree/packages".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".aastree", "packages")
	}
	s := &Store{BasePath: basePath, Format: aasfile.JSON, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(name string) string {
	return filepath.Join(s.BasePath, name+"."+string(s.Format))
}

func (s *Store) nameOf(path string) (string, bool) {
	base := filepath.Base(path)
	ext := "." + string(s.Format)
	if !strings.HasSuffix(base, ext) || strings.HasPrefix(base, "tmp-") {
		return "", false
	}
	return strings.TrimSuffix(base, ext), true
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid package name %q", name)
	}
	return nil
}

// Save writes the package atomically.
func (s *Store) Save(ctx context.Context, name string, pkg *domain.Package) error {
	if err := validName(name); err != nil {
		return err
	}
	data, err := aasfile.Marshal(pkg, s.Format)
	if err != nil {
		return fmt.Errorf("failed to encode package: %w", err)
	}
	return aasfile.WriteAtomic(s.path(name), data)
}

// Load reads the package file.
func (s *Store) Load(ctx context.Context, name string) (*domain.Package, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPackageNotFound, name)
		}
		return nil, fmt.Errorf("failed to read package file: %w", err)
	}
	return aasfile.Unmarshal(data, s.Format, name)
}

// Delete removes the package file.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete package file: %w", err)
	}
	return nil
}

// List returns the names of all package files.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := s.nameOf(entry.Name()); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Watch reports the names of package files that are written, created,
// removed or renamed in BasePath.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure package directory: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(s.BasePath); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.BasePath, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				name, ok := s.nameOf(event.Name)
				if !ok {
					continue
				}
				s.logger.Debug("Package file changed", "name", name, "op", event.Op.String())
				select {
				case out <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("File watcher error", "err", err)
			}
		}
	}()
	return out, nil
}
