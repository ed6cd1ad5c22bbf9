package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/aastree/pkg/adapters/sqlite"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ports.RunPackageStoreContract(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "packages.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "motor", domain.NewPackage("motor")))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"motor"}, names)
	pkg, err := store.Load(ctx, "motor")
	require.NoError(t, err)
	assert.Equal(t, "motor", pkg.Name)
}
