package aasfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/aastree/pkg/domain"
)

// Read loads the package stored at path. The format follows the extension.
func Read(path string) (*domain.Package, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPackageNotFound, path)
		}
		return nil, fmt.Errorf("failed to read package file: %w", err)
	}
	pkg, err := Unmarshal(data, format, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	pkg.File = path
	return pkg, nil
}

// Write stores pkg at path atomically: the content goes to a temporary file
// in the same directory which is then renamed over the destination.
func Write(pkg *domain.Package, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Marshal(pkg, format)
	if err != nil {
		return fmt.Errorf("failed to encode package: %w", err)
	}
	return WriteAtomic(path, data)
}

// WriteAtomic writes data to path through a synced temporary file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to replace %s: %w", path, err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
