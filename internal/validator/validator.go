package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/aastree/pkg/domain"
)

// ValidatePackage checks for broken references, identifiables without
// identifier and property values that do not fit their value type.
func ValidatePackage(pkg *domain.Package) error {
	var errors []string

	checkRef := func(owner, attr string, ref *domain.Reference) {
		if ref == nil || len(ref.Keys) == 0 {
			return
		}
		if _, err := ref.Resolve(pkg.ObjStore); err != nil {
			errors = append(errors, fmt.Sprintf("Broken reference: '%s' %s -> %s", owner, attr, ref))
		}
	}

	var walk func(owner string, elems *domain.Set)
	walk = func(owner string, elems *domain.Set) {
		if elems == nil {
			return
		}
		for _, item := range elems.Items() {
			switch el := item.(type) {
			case *domain.Property:
				name := owner + "/" + el.IDShort
				checkRef(name, "semantic_id", el.SemanticID)
				if el.Value != nil && !el.ValueType.Accepts(el.Value) {
					errors = append(errors, fmt.Sprintf("Type mismatch: '%s' value %v is not a valid %s", name, el.Value, el.ValueType))
				}
			case *domain.ReferenceElement:
				checkRef(owner+"/"+el.IDShort, "value", el.Value)
			case *domain.Collection:
				name := owner + "/" + el.IDShort
				checkRef(name, "semantic_id", el.SemanticID)
				walk(name, el.Value)
			}
		}
	}

	for _, item := range pkg.ObjStore.Items() {
		obj, ok := item.(domain.Identifiable)
		if ok && obj.Identifier() == "" {
			errors = append(errors, fmt.Sprintf("Missing identifier: '%s'", obj.IDShortName()))
		}
	}
	for _, shell := range pkg.Shells() {
		checkRef(shell.IDShort, "asset", shell.Asset)
		checkRef(shell.IDShort, "derived_from", shell.DerivedFrom)
		if shell.Submodels != nil {
			for _, item := range shell.Submodels.Items() {
				if ref, ok := item.(*domain.Reference); ok {
					checkRef(shell.IDShort, "submodels", ref)
				}
			}
		}
	}
	for _, sm := range pkg.Submodels() {
		checkRef(sm.IDShort, "semantic_id", sm.SemanticID)
		walk(sm.IDShort, sm.Elements)
	}
	for _, cd := range pkg.ConceptDescriptions() {
		if cd.IsCaseOf == nil {
			continue
		}
		for _, item := range cd.IsCaseOf.Items() {
			if ref, ok := item.(*domain.Reference); ok {
				checkRef(cd.IDShort, "is_case_of", ref)
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
