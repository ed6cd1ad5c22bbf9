package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/aastree/pkg/adapters/memory"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/persistence/middleware"
	"github.com/aretw0/aastree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretPackage(serial string) *domain.Package {
	pkg := domain.NewPackage("motor")
	_ = pkg.Add(domain.NewSubmodel("urn:sm:plate", "Nameplate",
		domain.NewProperty("SerialNumber", domain.ValueTypeString, serial)))
	return pkg
}

func serialOf(t *testing.T, pkg *domain.Package) any {
	t.Helper()
	require.Len(t, pkg.Submodels(), 1)
	e, ok := pkg.Submodels()[0].Element("SerialNumber")
	require.True(t, ok)
	return e.(*domain.Property).Value
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunPackageStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)
	ctx := context.Background()

	require.NoError(t, secureStore.Save(ctx, "motor", secretPackage("SN-42")))

	stored, err := underlyingStore.Load(ctx, "motor")
	require.NoError(t, err)
	assert.Empty(t, stored.Submodels(), "envelope must not expose content")
	_, ok := stored.Files.Get(middleware.EnvelopeFile)
	assert.True(t, ok)

	loaded, err := secureStore.Load(ctx, "motor")
	require.NoError(t, err)
	assert.Equal(t, "SN-42", serialOf(t, loaded))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	require.NoError(t, secureStoreOld.Save(ctx, "motor", secretPackage("old")))

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "motor")
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "old", serialOf(t, loaded))

	// Saving again re-encrypts with the new key.
	require.NoError(t, secureStoreNew.Save(ctx, "motor", secretPackage("new")))
	_, err = secureStoreOld.Load(ctx, "motor")
	assert.Error(t, err, "old key alone must no longer decrypt")
}

func TestEncryptionMiddleware_RejectsPlainPackage(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlyingStore.Save(ctx, "plain", secretPackage("x")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(ctx, "plain")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}
