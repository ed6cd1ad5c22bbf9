package model_test

import (
	"testing"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ByNameAndRow(t *testing.T) {
	f := newFixture(t)
	m, doc := packageModel(t, f.pkg)

	idx, err := m.Resolve("motor/submodels/TechnicalData/Limits")
	require.NoError(t, err)
	assert.Same(t, f.coll, m.Data(idx, tree.RoleObject))

	byRow, err := m.Resolve("/#0/#2/#0/")
	require.NoError(t, err)
	assert.Same(t, f.sm, m.Data(byRow, tree.RoleObject))

	root, err := m.Resolve("")
	require.NoError(t, err)
	assert.False(t, root.IsValid())

	_, err = m.Resolve("motor/nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.Resolve("motor/#9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, "motor", m.PathOf(doc))
	assert.Equal(t, "motor/submodels/TechnicalData/Limits", m.PathOf(idx))
}

func TestPathOf_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.shell.Description["x/y"] = "slashed"
	m := detail(f.shell)

	desc, err := m.Resolve("description")
	require.NoError(t, err)
	for row := range m.RowCount(desc) {
		entry := m.Index(row, 0, desc)
		path := m.PathOf(entry)
		back, err := m.Resolve(path)
		require.NoError(t, err, path)
		assert.Equal(t, entry, back, path)
	}
	slashed := m.Index(m.RowCount(desc)-1, 0, desc)
	assert.Equal(t, "description/#2", m.PathOf(slashed))

	// Duplicate names fall back to positions.
	pkg := domain.NewPackage("twins")
	require.NoError(t, pkg.Add(domain.NewSubmodel("urn:sm:t", "T",
		domain.NewProperty("p", domain.ValueTypeInt, 1),
		domain.NewProperty("p", domain.ValueTypeInt, 2))))
	pm, _ := packageModel(t, pkg)
	second, err := pm.Resolve("twins/submodels/T/#1")
	require.NoError(t, err)
	assert.Equal(t, 2, pm.Data(second, tree.RoleObject).(*domain.Property).Value)
	assert.Equal(t, "twins/submodels/T/#1", pm.PathOf(second))
}
