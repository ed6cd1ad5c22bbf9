package aastree

import (
	"strings"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/model"
	"github.com/aretw0/aastree/pkg/tree"
)

// ValueTypeShim lets a property value edit change the property's value_type
// when the new value does not fit the current one. Both edits undo together.
var ValueTypeShim = model.DiscriminatorShim("value_type", func(v any) (any, bool) {
	vt, ok := domain.ValueTypeOf(v)
	return vt, ok
})

// CanPaste reports whether obj may be pasted at idx of the package view:
// identifiables onto a sibling of their kind or their container row,
// submodel elements onto another submodel element.
func (e *Editor) CanPaste(obj any, idx model.Index) bool {
	if obj == nil || !idx.IsValid() {
		return false
	}
	name, _ := e.pack.Data(idx, tree.RoleName).(string)
	curr := e.pack.Data(idx, tree.RoleObject)
	switch obj.(type) {
	case *domain.Shell:
		_, ok := curr.(*domain.Shell)
		return ok || name == "shells"
	case *domain.Asset:
		_, ok := curr.(*domain.Asset)
		return ok || name == "assets"
	case *domain.Submodel:
		_, ok := curr.(*domain.Submodel)
		return ok || name == "submodels"
	case *domain.ConceptDescription:
		_, ok := curr.(*domain.ConceptDescription)
		return ok || name == "concept_descriptions"
	case domain.SubmodelElement:
		_, ok := curr.(domain.SubmodelElement)
		return ok
	}
	return false
}

// AddLabel names the add action available at idx of the package view, or
// returns "" when nothing can be added there.
func (e *Editor) AddLabel(idx model.Index) string {
	curr := e.pack.Data(idx, tree.RoleObject)
	if _, ok := curr.(*domain.Package); ok || !idx.IsValid() {
		return "Add package"
	}
	name, _ := e.pack.Data(idx, tree.RoleName).(string)
	switch name {
	case "shells", "assets", "submodels", "concept_descriptions":
		return "Add " + strings.TrimSuffix(strings.ReplaceAll(name, "_", " "), "s")
	}
	if _, ok := curr.(*domain.Submodel); ok {
		return "Add submodel element"
	}
	return ""
}
