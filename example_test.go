package aastree_test

import (
	"fmt"
	"log"

	"github.com/aretw0/aastree"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/model"
	"github.com/aretw0/aastree/pkg/tree"
)

// find returns the first row under parent whose name is name.
func find(m *model.Model, parent model.Index, name string) model.Index {
	for row := range m.RowCount(parent) {
		idx := m.Index(row, tree.ColumnName, parent)
		if m.Data(idx, tree.RoleName) == name {
			return idx
		}
	}
	return model.Index{}
}

// ExampleEditor_Detail edits a property through a detail model and reverts
// the edit again.
func ExampleEditor_Detail() {
	pkg := domain.NewPackage("motor")
	prop := domain.NewProperty("MaxRPM", domain.ValueTypeInt, 3000)
	if err := pkg.Add(domain.NewSubmodel("urn:sm:tech", "TechnicalData", prop)); err != nil {
		log.Fatal(err)
	}

	ed := aastree.New()
	pm := ed.Model()
	doc, err := pm.Add(pkg, model.Index{})
	if err != nil {
		log.Fatal(err)
	}

	item := find(pm, find(pm, doc, "submodels"), "TechnicalData")
	detail, err := ed.Detail(item)
	if err != nil {
		log.Fatal(err)
	}

	elems := find(detail, model.Index{}, "submodel_element")
	value := find(detail, find(detail, elems, "Property 0"), "value")
	if !detail.SetData(value, 4500, tree.RoleEdit) {
		log.Fatal(detail.LastError())
	}
	fmt.Printf("%s = %v (changed: %v)\n", prop.IDShort, prop.Value, pm.Data(item, tree.RoleIsChanged))

	detail.Undo()
	fmt.Printf("after undo: %v\n", prop.Value)
	// Output:
	// MaxRPM = 4500 (changed: true)
	// after undo: 3000
}
