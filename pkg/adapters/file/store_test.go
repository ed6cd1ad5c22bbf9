package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/adapters/file"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	for _, format := range []aasfile.Format{aasfile.JSON, aasfile.YAML, aasfile.AASX} {
		t.Run(string(format), func(t *testing.T) {
			store := file.New(t.TempDir(), file.WithFormat(format))
			ports.RunPackageStoreContract(t, store)
		})
	}
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "motor", domain.NewPackage("motor")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-motor.json-123"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"motor"}, names)
}

func TestFileStore_RejectsPathNames(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	assert.Error(t, store.Save(ctx, "../escape", domain.NewPackage("x")))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFileStore_Watch(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "motor", domain.NewPackage("motor")))

	select {
	case name := <-events:
		assert.Equal(t, "motor", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	for range events {
	}
}
