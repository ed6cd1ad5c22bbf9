package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPackageStoreContract runs a suite of tests to verify that a PackageStore
// implementation adheres to the interface contract.
func RunPackageStoreContract(t *testing.T, store PackageStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		pkg := contractPackage(name)
		require.NoError(t, store.Save(ctx, name, pkg), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Submodels(), 1)
		sm := loaded.Submodels()[0]
		assert.Equal(t, "urn:contract:sm", sm.ID)
		prop, ok := sm.Element("Speed")
		require.True(t, ok)
		assert.Equal(t, 1.5, prop.(*domain.Property).Value)
		require.Len(t, loaded.Shells(), 1)
		assert.Equal(t, 1, loaded.Shells()[0].Submodels.Len())
		f, ok := loaded.Files.Get("notes.txt")
		require.True(t, ok)
		assert.Equal(t, []byte("hello"), f.Data)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		pkg := contractPackage(name)
		require.NoError(t, pkg.Add(domain.NewAsset("urn:contract:asset", "Asset")))
		require.NoError(t, store.Save(ctx, name, pkg))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Len(t, loaded.Assets(), 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrPackageNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, contractPackage(name)))
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrPackageNotFound, "Load after Delete should return ErrPackageNotFound")
		assert.NoError(t, store.Delete(ctx, name), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, id1, contractPackage(id1)))
		require.NoError(t, store.Save(ctx, id2, contractPackage(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}

func contractPackage(name string) *domain.Package {
	pkg := domain.NewPackage(name)
	sm := domain.NewSubmodel("urn:contract:sm", "Contract",
		domain.NewProperty("Speed", domain.ValueTypeDouble, 1.5))
	shell := domain.NewShell("urn:contract:shell", "Shell")
	_ = shell.Submodels.Add(domain.ReferenceTo(sm))
	_ = pkg.Add(shell)
	_ = pkg.Add(sm)
	pkg.Files.Add("notes.txt", "text/plain", []byte("hello"))
	return pkg
}
