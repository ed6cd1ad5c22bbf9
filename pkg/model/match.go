package model

import (
	"reflect"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/tree"
)

// Iter returns the materialized descendants of parent in depth-first order.
// Subtrees that were never expanded are not populated.
func (m *Model) Iter(parent Index) []Index {
	var out []Index
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		for _, c := range n.Materialized() {
			out = append(out, m.IndexOf(c, 0))
			walk(c)
		}
	}
	walk(m.nodeOf(parent))
	return out
}

// Match searches the descendants of start for nodes whose role value matches.
// RoleObject matches by identity or equality, RoleType matches nodes whose
// value is assignable to the given reflect.Type, and RoleDisplay or RoleName
// compare the label. A negative hits is unbounded; zero returns nothing.
func (m *Model) Match(start Index, role Role, value any, hits int) []Index {
	if hits == 0 {
		return nil
	}
	var out []Index
	for _, idx := range m.Iter(start) {
		if !m.matches(idx.node, role, value) {
			continue
		}
		out = append(out, idx)
		if hits > 0 && len(out) == hits {
			break
		}
	}
	return out
}

func (m *Model) matches(n *tree.Node, role Role, value any) bool {
	switch role {
	case tree.RoleObject:
		return domain.Equal(n.Value(), value)
	case tree.RoleType:
		t, ok := value.(reflect.Type)
		if !ok || n.Value() == nil {
			return false
		}
		return reflect.TypeOf(n.Value()).AssignableTo(t)
	case tree.RoleDisplay, tree.RoleName:
		return n.Label() == value
	}
	return reflect.DeepEqual(n.Data(role, tree.ColumnName), value)
}
