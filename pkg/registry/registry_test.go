package registry_test

import (
	"testing"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/registry"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_Lookup(t *testing.T) {
	r := registry.NewRegistry()
	registry.Set[domain.Submodel](r, registry.ClassInfo{RedirectAttr: "submodel_element"})

	info, ok := r.Lookup(domain.NewSubmodel("urn:a", "A"))
	assert.True(t, ok, "pointer falls back to element type")
	assert.Equal(t, "submodel_element", info.RedirectAttr)

	_, ok = r.Lookup(domain.NewShell("urn:s", "S"))
	assert.False(t, ok)

	_, ok = r.Lookup(nil)
	assert.False(t, ok)
}

func TestAAS_Defaults(t *testing.T) {
	r := registry.AAS()

	assert.Equal(t, "value", r.RedirectAttr(domain.NewCollection("c")))
	assert.False(t, r.NoPopulate(domain.NewReference()), "references expand to their keys")
	assert.True(t, r.NoPopulate(domain.Key{}))
	assert.Contains(t, r.PackViewAttrs(domain.NewPackage("p")), "supplementary_files")
	assert.Equal(t, []string{"id_short", "category", "value_type", "value", "semantic_id"},
		r.DetailAttrs(domain.NewProperty("p", domain.ValueTypeInt, 1)))
}
