package domain_test

import (
	"testing"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackage_Snapshots(t *testing.T) {
	pkg := domain.NewPackage("demo")
	shell := domain.NewShell("urn:shell:1", "Shell1")
	sm := domain.NewSubmodel("urn:sm:1", "Nameplate")

	require.NoError(t, pkg.Add(shell))
	require.NoError(t, pkg.Add(sm))
	assert.ErrorIs(t, pkg.Add(domain.NewSubmodel("urn:sm:1", "Dup")), domain.ErrDuplicate)
	assert.ErrorIs(t, pkg.Add("not identifiable"), domain.ErrUnsupportedParent)

	assert.Equal(t, []*domain.Shell{shell}, pkg.Shells())
	assert.Equal(t, []*domain.Submodel{sm}, pkg.Submodels())
	assert.Empty(t, pkg.Assets())

	got, ok := pkg.ObjStore.Get("urn:sm:1")
	require.True(t, ok)
	assert.Same(t, sm, got)

	assert.True(t, pkg.ObjStore.Discard(sm))
	_, ok = pkg.ObjStore.Get("urn:sm:1")
	assert.False(t, ok)
}

func TestObjectStore_LiveIdentifiers(t *testing.T) {
	pkg := domain.NewPackage("demo")
	sm := domain.NewSubmodel("urn:sm:1", "Nameplate")
	require.NoError(t, pkg.Add(sm))

	sm.ID = "urn:sm:2"
	_, ok := pkg.ObjStore.Get("urn:sm:1")
	assert.False(t, ok)
	got, ok := pkg.ObjStore.Get("urn:sm:2")
	require.True(t, ok)
	assert.Same(t, sm, got)
}

func TestPackage_Clone(t *testing.T) {
	pkg := domain.NewPackage("demo")
	sm := domain.NewSubmodel("urn:sm:1", "Nameplate", domain.NewProperty("Serial", domain.ValueTypeString, "A1"))
	require.NoError(t, pkg.Add(sm))
	pkg.Files.Add("a.txt", "text/plain", []byte("a"))

	cp := pkg.Clone()
	require.Len(t, cp.Submodels(), 1)
	cpSM := cp.Submodels()[0]
	assert.NotSame(t, sm, cpSM)
	assert.Equal(t, sm.IDShort, cpSM.IDShort)

	serial, ok := cpSM.Element("Serial")
	require.True(t, ok)
	serial.(*domain.Property).Value = "B2"
	orig, _ := sm.Element("Serial")
	assert.Equal(t, "A1", orig.(*domain.Property).Value)

	cp.Files.Add("b.txt", "text/plain", nil)
	assert.Equal(t, 1, pkg.Files.Len())
}

func TestPackage_String(t *testing.T) {
	pkg := domain.NewPackage("")
	assert.Equal(t, "new package", pkg.String())
	pkg.File = "/tmp/motor.aasx"
	assert.Equal(t, "motor", pkg.String())
}

func TestFileContainer(t *testing.T) {
	fc := domain.NewFileContainer()
	fc.Add("manual.pdf", "application/pdf", []byte("%PDF"))
	fc.Add("photo.png", "image/png", []byte{1, 2, 3})

	f := domain.StoredFile{Name: "photo.png", Container: fc}
	assert.Equal(t, "image/png", f.ContentType())
	assert.Equal(t, 3, f.Size())

	assert.True(t, fc.Remove("manual.pdf"))
	assert.Equal(t, []string{"photo.png"}, fc.Names())
}

func TestProperty_SetAttr(t *testing.T) {
	p := domain.NewProperty("speed", domain.ValueTypeInt, 10)

	require.NoError(t, p.SetAttr("value", 20))
	assert.Equal(t, 20, p.Value)
	assert.ErrorIs(t, p.SetAttr("value", "fast"), domain.ErrCoercion)
	assert.False(t, p.CheckAttr("value", "fast"))

	require.NoError(t, p.SetAttr("value_type", "xs:string"))
	require.NoError(t, p.SetAttr("value", "fast"))
	assert.ErrorIs(t, p.SetAttr("value_type", "xs:nope"), domain.ErrCoercion)
	assert.ErrorIs(t, p.SetAttr("id_short", "x"), domain.ErrUnhandledAttr)
}

func TestValueType_Parse(t *testing.T) {
	v, err := domain.ValueTypeDouble.Parse("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	assert.Equal(t, "1.5", domain.ValueTypeDouble.Format(v))

	vt, ok := domain.ValueTypeOf(true)
	require.True(t, ok)
	assert.Equal(t, domain.ValueTypeBoolean, vt)

	_, err = domain.ValueTypeInt.Parse("x")
	assert.Error(t, err)
}
