package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements ports.PackageStore on a SQLite database. Each package
// is one row holding its JSON document.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. The special path
// ":memory:" keeps everything in memory.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives as long as its connection.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS packages (
			name TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	return &Store{db: db}, nil
}

// Save inserts or replaces the package row.
func (s *Store) Save(ctx context.Context, name string, pkg *domain.Package) error {
	if name == "" {
		return errors.New("package name is required")
	}
	data, err := aasfile.Marshal(pkg, aasfile.JSON)
	if err != nil {
		return fmt.Errorf("failed to marshal package: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO packages (name, data, updated_at)
		VALUES (?, ?, ?)
	`, name, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save package: %w", err)
	}
	return tx.Commit()
}

// Load reads the package row.
func (s *Store) Load(ctx context.Context, name string) (*domain.Package, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM packages WHERE name = ?`, name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPackageNotFound, name)
		}
		return nil, fmt.Errorf("failed to load package: %w", err)
	}
	pkg, err := aasfile.Unmarshal(data, aasfile.JSON, name)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal package: %w", err)
	}
	return pkg, nil
}

// Delete removes the package row.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM packages WHERE name = ?`, name)
	return err
}

// List returns all package names in alphabetical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM packages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
