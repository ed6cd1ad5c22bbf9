package model

import (
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/tree"
)

// LinkedItem resolves the reference under idx against its package and returns
// the index of the target in the link model. Unresolvable links yield the
// invalid index.
func (m *Model) LinkedItem(idx Index) Index {
	if !idx.IsValid() || !idx.node.IsLink() {
		return Index{}
	}
	ref := idx.node.Value().(domain.Resolver)
	pkg := idx.node.Package()
	if pkg == nil {
		return Index{}
	}
	obj, err := ref.Resolve(pkg.ObjStore)
	if err != nil {
		m.logger.Debug("Link does not resolve", "label", idx.node.Label(), "err", err)
		return Index{}
	}
	found := m.linkModel.Match(Index{}, tree.RoleObject, obj, 1)
	if len(found) == 0 {
		return Index{}
	}
	return found[0]
}
