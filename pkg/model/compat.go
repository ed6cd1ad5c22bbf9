package model

import (
	"fmt"

	"github.com/aretw0/aastree/pkg/domain"
)

// DiscriminatorShim returns a CompatShim that, when a value does not fit its
// attribute, rewrites the sibling attribute named attrName to the
// discriminator derived from the value. The sibling edit is recorded together
// with the original edit.
func DiscriminatorShim(attrName string, discriminate func(value any) (any, bool)) CompatShim {
	return func(m *Model, target Index, value any) error {
		if target.node.AttrName() == attrName {
			return fmt.Errorf("%w: %s is the discriminator", domain.ErrCoercion, attrName)
		}
		d, ok := discriminate(value)
		if !ok {
			return fmt.Errorf("%w: no %s for %T", domain.ErrCoercion, attrName, value)
		}
		parent := m.Parent(target)
		for row := range m.RowCount(parent) {
			sibling := m.Index(row, 0, parent)
			if sibling.node.AttrName() == attrName {
				return m.SetValue(sibling, d)
			}
		}
		return fmt.Errorf("%w: sibling %q", domain.ErrNotFound, attrName)
	}
}
