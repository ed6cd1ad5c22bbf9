package registry

import (
	"reflect"
	"time"

	"github.com/aretw0/aastree/pkg/domain"
)

// AAS returns a registry with the presentation rules for the domain package.
func AAS() *Registry {
	r := NewRegistry()

	Set[domain.Package](r, ClassInfo{
		DetailAttrs:   []string{"name", "file", "shells", "assets", "submodels", "concept_descriptions"},
		PackViewAttrs: []string{"shells", "assets", "submodels", "concept_descriptions", "supplementary_files"},
		SnapshotAttrs: []string{"shells", "assets", "submodels", "concept_descriptions"},
		SnapshotOwner: "obj_store",
	})
	Set[domain.Shell](r, ClassInfo{
		DetailAttrs: []string{"id", "id_short", "description", "asset", "derived_from", "submodels"},
	})
	Set[domain.Submodel](r, ClassInfo{
		DetailAttrs:  []string{"id", "id_short", "description", "semantic_id", "submodel_element"},
		RedirectAttr: "submodel_element",
	})
	Set[domain.Collection](r, ClassInfo{
		DetailAttrs:  []string{"id_short", "ordered", "semantic_id", "value"},
		RedirectAttr: "value",
	})
	Set[domain.Property](r, ClassInfo{
		DetailAttrs: []string{"id_short", "category", "value_type", "value", "semantic_id"},
	})
	Set[domain.StoredFile](r, ClassInfo{
		DetailAttrs: []string{"name", "content_type", "size"},
	})
	Set[domain.Key](r, ClassInfo{NoPopulate: true})
	Set[domain.ValueType](r, ClassInfo{NoPopulate: true})
	Set[domain.AssetKind](r, ClassInfo{NoPopulate: true})
	r.Register(reflect.TypeFor[time.Time](), ClassInfo{NoPopulate: true})

	return r
}
