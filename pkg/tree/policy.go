package tree

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/aretw0/aastree/internal/attr"
	"github.com/aretw0/aastree/internal/classify"
	"github.com/aretw0/aastree/pkg/domain"
)

// Policy selects how a node computes its children.
type Policy int

const (
	// Nested shows mapping entries, sequence elements and object attributes.
	Nested Policy = iota
	// PackageView shows registered package collections and container elements.
	PackageView
)

func (p Policy) String() string {
	if p == PackageView {
		return "package"
	}
	return "nested"
}

// Enumerate computes the child specs of n from its current value without
// creating nodes.
func (n *Node) Enumerate() []Spec {
	if n.explicit {
		return nil
	}
	src := n.Source()
	if n.policy == PackageView {
		return n.packageSpecs(src)
	}
	return n.nestedSpecs(src)
}

// RowOf returns the position of v among the children n would enumerate, or -1.
// Mapping entries match by key.
func (n *Node) RowOf(v any) int {
	if n.explicit {
		for i, c := range n.children {
			if domain.Same(c.value, v) {
				return i
			}
		}
		return -1
	}
	specs := n.Enumerate()
	key, isEntry := v.(domain.KeyValue)
	for i, s := range specs {
		if isEntry {
			if kv, ok := s.Value.(domain.KeyValue); ok && kv.Key == key.Key {
				return i
			}
			continue
		}
		if domain.Same(s.Value, v) {
			return i
		}
	}
	if isEntry {
		return -1
	}
	for i, s := range specs {
		if reflect.DeepEqual(s.Value, v) {
			return i
		}
	}
	return -1
}

// SpecAt returns the spec of the child that n would enumerate at row.
func (n *Node) SpecAt(row int) (Spec, bool) {
	specs := n.Enumerate()
	if row < 0 || row >= len(specs) {
		return Spec{}, false
	}
	return specs[row], true
}

func (n *Node) nestedSpecs(src any) []Spec {
	c := classify.Of(src, n.reg)
	switch c.Shape {
	case classify.Mapping:
		entries := classify.Entries(src)
		specs := make([]Spec, len(entries))
		for i, kv := range entries {
			specs[i] = Spec{Value: kv, Policy: Nested}
		}
		return specs
	case classify.Sequence:
		items := classify.Items(src)
		hint := classify.ElemType(src)
		specs := make([]Spec, len(items))
		for i, it := range items {
			label := fmt.Sprintf("%s %d", attr.TypeName(reflect.TypeOf(it)), i)
			specs[i] = Spec{Value: it, Label: label, TypeHint: hint, Policy: Nested}
		}
		return specs
	case classify.Opaque:
		specs := make([]Spec, 0, len(c.Attrs))
		for _, name := range c.Attrs {
			v, hint, err := attr.Get(src, name)
			if err != nil {
				continue
			}
			specs = append(specs, Spec{Value: v, Label: name, AttrName: name, TypeHint: hint, Policy: Nested})
		}
		return specs
	}
	return nil
}

func (n *Node) packageSpecs(src any) []Spec {
	if src == nil {
		return nil
	}
	info, _ := n.reg.Lookup(src)
	switch {
	case len(info.PackViewAttrs) > 0:
		specs := make([]Spec, 0, len(info.PackViewAttrs))
		for _, name := range info.PackViewAttrs {
			v, hint, err := attr.Get(src, name)
			if err != nil {
				continue
			}
			s := Spec{Value: v, Label: name, AttrName: name, TypeHint: hint, Policy: PackageView}
			if slices.Contains(info.SnapshotAttrs, name) && info.SnapshotOwner != "" {
				if owner, _, err := attr.Get(src, info.SnapshotOwner); err == nil {
					s.Value = owner
					s.TypeHint = nil
					s.View = snapshotView(src, name)
				}
			}
			specs = append(specs, s)
		}
		return specs
	case info.RedirectAttr != "":
		members, _, err := attr.Get(src, info.RedirectAttr)
		if err != nil {
			return nil
		}
		return elementSpecs(classify.Items(members))
	}
	if fc, ok := src.(*domain.FileContainer); ok {
		names := fc.Names()
		specs := make([]Spec, len(names))
		for i, name := range names {
			specs[i] = Spec{Value: domain.StoredFile{Name: name, Container: fc}, Policy: PackageView}
		}
		return specs
	}
	switch classify.Of(src, n.reg).Shape {
	case classify.Sequence:
		return elementSpecs(classify.Items(src))
	case classify.Mapping:
		entries := classify.Entries(src)
		specs := make([]Spec, len(entries))
		for i, kv := range entries {
			specs[i] = Spec{Value: kv, Policy: PackageView}
		}
		return specs
	}
	return nil
}

func elementSpecs(items []any) []Spec {
	specs := make([]Spec, len(items))
	for i, it := range items {
		specs[i] = Spec{Value: it, Policy: PackageView}
	}
	return specs
}

func snapshotView(owner any, name string) func() any {
	return func() any {
		v, _, err := attr.Get(owner, name)
		if err != nil {
			return nil
		}
		return v
	}
}
