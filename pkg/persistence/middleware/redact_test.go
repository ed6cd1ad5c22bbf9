package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewRedactMiddleware([]string{"Serial", "(?i)pin"})(underlyingStore)
	ctx := context.Background()

	pkg := domain.NewPackage("motor")
	sm := domain.NewSubmodel("urn:sm:plate", "Nameplate",
		domain.NewProperty("SerialNumber", domain.ValueTypeString, "SN-42"),
		domain.NewProperty("Manufacturer", domain.ValueTypeString, "ACME"),
		domain.NewCollection("Service",
			domain.NewProperty("PIN", domain.ValueTypeInt, 1234)),
	)
	require.NoError(t, pkg.Add(sm))

	require.NoError(t, secureStore.Save(ctx, "motor", pkg))

	// The caller's package is untouched.
	serial, _ := sm.Element("SerialNumber")
	assert.Equal(t, "SN-42", serial.(*domain.Property).Value)

	stored, err := underlyingStore.Load(ctx, "motor")
	require.NoError(t, err)
	storedSM := stored.Submodels()[0]
	serial, _ = storedSM.Element("SerialNumber")
	assert.Equal(t, middleware.Masked, serial.(*domain.Property).Value)
	maker, _ := storedSM.Element("Manufacturer")
	assert.Equal(t, "ACME", maker.(*domain.Property).Value)
	service, _ := storedSM.Element("Service")
	pin, _ := service.(*domain.Collection).Element("PIN")
	assert.Nil(t, pin.(*domain.Property).Value)
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	key := make([]byte, 32)
	store := middleware.Chain(underlyingStore,
		middleware.NewRedactMiddleware([]string{"Serial"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "motor", secretPackage("SN-1")))

	loaded, err := store.Load(ctx, "motor")
	require.NoError(t, err)
	assert.Equal(t, middleware.Masked, serialOf(t, loaded), "redaction runs before encryption")
}
