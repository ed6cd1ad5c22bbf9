package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/aastree/pkg/adapters/memory"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunPackageStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pkg := domain.NewPackage("iso")
	sm := domain.NewSubmodel("urn:sm", "Original")
	require.NoError(t, pkg.Add(sm))
	require.NoError(t, store.Save(ctx, "iso", pkg))

	sm.IDShort = "Changed"
	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "Original", loaded.Submodels()[0].IDShort)

	loaded.Submodels()[0].IDShort = "AlsoChanged"
	again, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Submodels()[0].IDShort)
}
