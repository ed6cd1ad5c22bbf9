package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/aretw0/aastree/internal/attr"
	"github.com/aretw0/aastree/internal/classify"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/tree"
)

// SetValue replaces the value under idx. The string "None" is stored as nil.
func (m *Model) SetValue(idx Index, value any) error {
	if !idx.IsValid() {
		return m.reject(domain.EventSet, "", fmt.Errorf("%w: cannot set the root", domain.ErrUnsupportedParent))
	}
	_, err := m.do(Edit{Op: OpSet, Target: idx.node, Value: value}, domain.EventSet)
	return err
}

// Add inserts value under parent and returns the index of the new row.
// Packages are always added at the top level.
func (m *Model) Add(value any, parent Index) (Index, error) {
	inv, err := m.do(Edit{Op: OpAdd, Target: m.nodeOf(parent), Value: value, Pos: -1}, domain.EventAdd)
	if err != nil {
		return Index{}, err
	}
	return m.IndexOf(inv.Target, 0), nil
}

// Clear removes the row under idx from its container.
func (m *Model) Clear(idx Index) error {
	return m.clearRow(idx, NoDefault)
}

// ClearTo resets the attribute under idx to def. Container members are removed instead.
func (m *Model) ClearTo(idx Index, def any) error {
	return m.clearRow(idx, def)
}

func (m *Model) clearRow(idx Index, def any) error {
	if !idx.IsValid() {
		return m.reject(domain.EventClear, "", fmt.Errorf("%w: cannot clear the root", domain.ErrNotDeletable))
	}
	_, err := m.do(Edit{Op: OpClear, Target: idx.node, Value: def}, domain.EventClear)
	return err
}

// Undo reverts the most recent edit. An entry that can no longer be applied
// is dropped and false is returned.
func (m *Model) Undo() bool {
	e, ok := m.history.popUndo()
	if !ok {
		return false
	}
	inv, err := m.replay(e)
	if err != nil {
		m.logger.Debug("Dropping undo entry", "edit", e.String(), "err", err)
		m.hooks.Emit(domain.NewEditEvent(domain.EventUndo, e.String(), nil, err))
		return false
	}
	m.history.pushRedo(inv)
	m.hooks.Emit(domain.NewEditEvent(domain.EventUndo, e.String(), nil, nil))
	return true
}

// Redo reapplies the most recently undone edit.
func (m *Model) Redo() bool {
	e, ok := m.history.popRedo()
	if !ok {
		return false
	}
	inv, err := m.replay(e)
	if err != nil {
		m.logger.Debug("Dropping redo entry", "edit", e.String(), "err", err)
		m.hooks.Emit(domain.NewEditEvent(domain.EventRedo, e.String(), nil, err))
		return false
	}
	m.history.pushUndo(inv)
	m.hooks.Emit(domain.NewEditEvent(domain.EventRedo, e.String(), nil, nil))
	return true
}

func (m *Model) replay(e Edit) (Edit, error) {
	m.replaying = true
	defer func() { m.replaying = false }()
	return m.apply(e)
}

// do applies a forward edit. Edits issued while another one is applied, such
// as the compat shim adjusting a sibling, are grouped with the outer edit.
func (m *Model) do(e Edit, evt domain.EventType) (Edit, error) {
	label := ""
	if e.Target != nil {
		label = e.Target.Label()
	}
	outer := m.depth == 0
	if outer {
		m.pending = nil
	}
	m.depth++
	inv, err := m.apply(e)
	m.depth--

	if !outer {
		if err == nil {
			m.pending = append(m.pending, inv)
		}
		return inv, err
	}
	nested := m.pending
	m.pending = nil
	if err != nil {
		for i := len(nested) - 1; i >= 0; i-- {
			if _, rbErr := m.apply(nested[i]); rbErr != nil {
				m.logger.Warn("Failed to roll back nested edit", "edit", nested[i].String(), "err", rbErr)
			}
		}
		return Edit{}, m.reject(evt, label, err)
	}
	if len(nested) > 0 {
		m.history.pushUndo(Edit{Op: OpGroup, Group: append(nested, inv)})
	} else {
		m.history.pushUndo(inv)
	}
	m.history.clearRedo()
	m.hooks.Emit(domain.NewEditEvent(evt, label, e.Value, nil))
	return inv, nil
}

func (m *Model) reject(evt domain.EventType, label string, err error) error {
	m.lastErr = fmt.Sprintf("%s %s failed: %v", evt, label, err)
	m.logger.Warn("Edit rejected", "op", string(evt), "label", label, "err", err)
	m.hooks.Emit(domain.NewEditEvent(evt, label, nil, err))
	if m.signals.OnDataChanged != nil {
		m.signals.OnDataChanged(Index{}, Index{}, []Role{tree.RoleChangeFailed})
	}
	return err
}

// apply performs e and returns its inverse.
func (m *Model) apply(e Edit) (inv Edit, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("edit %s panicked: %v", e.String(), r)
		}
	}()

	if e.Op == OpGroup {
		return m.applyGroup(e)
	}
	if e.Target == nil || !e.Target.Attached() {
		return Edit{}, domain.ErrStaleTarget
	}
	switch e.Op {
	case OpSet:
		return m.setValue(e.Target, e.Value)
	case OpAdd:
		node, err := m.add(e.Target, e.Value, e.Pos)
		if err != nil {
			return Edit{}, err
		}
		if e.Replaces != nil {
			m.history.rebind(e.Replaces, node)
		}
		return Edit{Op: OpClear, Target: node, Value: NoDefault}, nil
	case OpClear:
		return m.clear(e.Target, e.Value)
	}
	return Edit{}, fmt.Errorf("unknown edit op %d", e.Op)
}

func (m *Model) applyGroup(e Edit) (Edit, error) {
	invs := make([]Edit, 0, len(e.Group))
	for _, member := range e.Group {
		inv, err := m.apply(member)
		if err != nil {
			for i := len(invs) - 1; i >= 0; i-- {
				if _, rerr := m.apply(invs[i]); rerr != nil {
					m.logger.Warn("Failed to roll back grouped edit", "edit", invs[i].String(), "err", rerr)
				}
			}
			return Edit{}, err
		}
		invs = append(invs, inv)
	}
	return Edit{Op: OpGroup, Group: invs}, nil
}

// container returns the object that receives edits for target under parent.
// Elements that are not attributes of the parent are redirected to the
// registered member container.
func (m *Model) container(parent, target *tree.Node) any {
	v := parent.Value()
	if target != nil && target.AttrName() != "" {
		return v
	}
	if redirect := parent.Registry().RedirectAttr(v); redirect != "" {
		if sub, _, err := attr.Get(v, redirect); err == nil {
			return sub
		}
	}
	return v
}

func (m *Model) setValue(target *tree.Node, value any) (Edit, error) {
	if s, ok := value.(string); ok && s == "None" {
		value = nil
	}
	parent := target.Parent()
	if parent == nil {
		return Edit{}, fmt.Errorf("%w: node has no parent", domain.ErrUnsupportedParent)
	}
	old := target.Value()

	if kv, ok := parent.Value().(domain.KeyValue); ok && (target.AttrName() == "key" || target.AttrName() == "value") {
		if target.AttrName() == "key" {
			kv.Key = value
		} else {
			kv.Value = value
		}
		return m.setValue(parent, kv)
	}

	if pkg, ok := packageCollection(parent); ok {
		if err := pkg.ObjStore.Replace(old, value); err != nil {
			return Edit{}, err
		}
		refreshCollection(parent, pkg)
		target.SetValue(value)
		m.markChanged(target)
		return Edit{Op: OpSet, Target: target, Value: old}, nil
	}

	container := m.container(parent, target)
	switch classify.ContainerOf(container) {
	case classify.ContainerList:
		row := target.Row()
		if l, ok := container.(domain.MutableList); ok {
			l.Set(row, value)
		} else {
			elem := reflect.ValueOf(container).Index(row)
			cv, err := attr.Coerce(value, elem.Type())
			if err != nil {
				return Edit{}, err
			}
			elem.Set(cv)
			value = cv.Interface()
		}
		target.SetValue(value)

	case classify.ContainerSet:
		if err := container.(domain.MutableSet).Replace(old, value); err != nil {
			return Edit{}, err
		}
		target.SetValue(value)

	case classify.ContainerMapping:
		oldKV, ok := old.(domain.KeyValue)
		if !ok {
			return Edit{}, fmt.Errorf("%w: %T is not a mapping entry", domain.ErrUnsupportedParent, old)
		}
		newKV, ok := value.(domain.KeyValue)
		if !ok {
			newKV = domain.KeyValue{Key: oldKV.Key, Value: value}
		}
		stored, err := replaceEntry(container, oldKV, newKV)
		if err != nil {
			return Edit{}, err
		}
		target.SetValue(stored)
		if row, want := target.Row(), parent.RowOf(stored); want >= 0 && want != row {
			parent.MoveChild(row, want)
		}

	default:
		name := target.AttrName()
		if name == "" {
			return Edit{}, fmt.Errorf("%w: %T has no editable members", domain.ErrUnsupportedParent, container)
		}
		err := attr.Set(container, name, value)
		if errors.Is(err, domain.ErrCoercion) && m.shim != nil && !m.replaying {
			if shimErr := m.shim(m, m.IndexOf(target, 0), value); shimErr == nil {
				err = attr.Set(container, name, value)
			} else {
				m.logger.Debug("Compat shim declined", "attr", name, "err", shimErr)
			}
		}
		if err != nil {
			return Edit{}, err
		}
		fresh, _, err := attr.Get(container, name)
		if err != nil {
			return Edit{}, err
		}
		target.SetValue(fresh)
	}

	m.markChanged(target)
	return Edit{Op: OpSet, Target: target, Value: old}, nil
}

// replaceEntry rewrites a mapping entry, keeping its position when the key changes.
func replaceEntry(container any, oldKV, newKV domain.KeyValue) (domain.KeyValue, error) {
	if mp, ok := container.(domain.Mapping); ok {
		pos := mp.IndexOf(oldKV.Key)
		if newKV.Key != oldKV.Key {
			if _, exists := mp.Get(newKV.Key); exists {
				return domain.KeyValue{}, fmt.Errorf("%w: key %v", domain.ErrDuplicate, newKV.Key)
			}
			mp.Delete(oldKV.Key)
		}
		mp.InsertAt(pos, newKV.Key, newKV.Value)
		return newKV, nil
	}
	rv := reflect.ValueOf(container)
	k, err := attr.Coerce(newKV.Key, rv.Type().Key())
	if err != nil {
		return domain.KeyValue{}, err
	}
	v, err := attr.Coerce(newKV.Value, rv.Type().Elem())
	if err != nil {
		return domain.KeyValue{}, err
	}
	oldK := reflect.ValueOf(oldKV.Key)
	if !k.Equal(oldK) {
		if rv.MapIndex(k).IsValid() {
			return domain.KeyValue{}, fmt.Errorf("%w: key %v", domain.ErrDuplicate, newKV.Key)
		}
		rv.SetMapIndex(oldK, reflect.Value{})
	}
	rv.SetMapIndex(k, v)
	return domain.KeyValue{Key: k.Interface(), Value: v.Interface()}, nil
}

// packageCollection reports whether parent lists one of the addable
// collections of its package, either as a snapshot or as a nested attribute.
func packageCollection(parent *tree.Node) (*domain.Package, bool) {
	pkg := parent.Package()
	if pkg == nil || !slices.Contains(pkg.AddableAttrs(), parent.Label()) {
		return nil, false
	}
	if parent.IsSnapshot() {
		return pkg, true
	}
	owner := parent.Parent()
	return pkg, owner != nil && domain.Same(owner.Value(), pkg)
}

// refreshCollection rebinds a nested collection node to the current snapshot
// while keeping its children.
func refreshCollection(parent *tree.Node, pkg *domain.Package) {
	if parent.IsSnapshot() {
		return
	}
	if fresh, _, err := attr.Get(pkg, parent.AttrName()); err == nil {
		parent.Swap(fresh)
	}
}

type inserter interface {
	Insert(i int, v any) error
}

func (m *Model) add(parent *tree.Node, value any, pos int) (*tree.Node, error) {
	if pkg, ok := value.(*domain.Package); ok {
		row := pos
		if row < 0 || row > m.root.Len() {
			row = m.root.Len()
		}
		node := m.root.InsertChild(row, tree.Spec{Value: pkg, Policy: tree.PackageView, New: true})
		m.rowsInserted(m.root, row, row)
		return node, nil
	}

	// Materialize first so the new child is inserted rather than enumerated.
	parent.Children()
	container := m.container(parent, nil)

	if pkg, ok := packageCollection(parent); ok {
		if err := pkg.Insert(pos, value); err != nil {
			return nil, err
		}
		refreshCollection(parent, pkg)
		node, err := m.attachIdentifiable(parent, pkg, value)
		if err != nil {
			pkg.ObjStore.Discard(value)
			refreshCollection(parent, pkg)
			return nil, err
		}
		return node, nil
	}

	// rollback undoes the container insert when no row can show the value.
	var rollback func()
	switch classify.ContainerOf(container) {
	case classify.ContainerSet:
		set := container.(domain.MutableSet)
		if err := set.InsertAt(pos, value); err != nil {
			return nil, err
		}
		rollback = func() { set.Discard(value) }
	case classify.ContainerList:
		if l, ok := container.(domain.MutableList); ok {
			at := clampPos(pos, l.Len())
			l.Insert(pos, value)
			rollback = func() { l.RemoveAt(at) }
			break
		}
		at := clampPos(pos, reflect.ValueOf(container).Len())
		grown, err := sliceInsert(container, pos, value)
		if err != nil {
			return nil, err
		}
		if err := m.writeBack(parent, grown); err != nil {
			return nil, err
		}
		rollback = func() {
			shrunk, _ := sliceRemove(grown, at)
			if err := m.writeBack(parent, shrunk); err != nil {
				m.logger.Warn("Failed to roll back insert", "label", parent.Label(), "err", err)
			}
		}
	case classify.ContainerMapping:
		kv, ok := value.(domain.KeyValue)
		if !ok {
			return nil, fmt.Errorf("%w: mappings accept key/value entries, got %T", domain.ErrUnsupportedParent, value)
		}
		if err := insertEntry(container, pos, kv); err != nil {
			return nil, err
		}
		rollback = func() { removeEntry(container, kv.Key) }
	case classify.ContainerAddable:
		var err error
		if ins, ok := container.(inserter); ok && pos >= 0 {
			err = ins.Insert(pos, value)
		} else {
			err = container.(domain.Adder).Add(value)
		}
		if err != nil {
			return nil, err
		}
		if d, ok := container.(discarder); ok {
			rollback = func() { d.Discard(value) }
		}
	default:
		return nil, fmt.Errorf("%w: cannot add %T to %T", domain.ErrUnsupportedParent, value, container)
	}

	node, err := m.attach(parent, value)
	if err != nil && rollback != nil {
		rollback()
	}
	return node, err
}

type discarder interface {
	Discard(v any) bool
}

// clampPos returns the index an insert at pos lands on in a sequence of n items.
func clampPos(pos, n int) int {
	if pos < 0 || pos >= n {
		return n
	}
	return pos
}

// attachIdentifiable creates the row of an identifiable just registered in
// pkg. The row lands in the package collection of its kind, which is not
// necessarily parent.
func (m *Model) attachIdentifiable(parent *tree.Node, pkg *domain.Package, value any) (*tree.Node, error) {
	if row := parent.RowOf(value); row >= 0 {
		return m.insertRow(parent, row), nil
	}
	if owner := parent.Parent(); owner != nil {
		for _, sibling := range owner.Children() {
			if sibling == parent || !slices.Contains(pkg.AddableAttrs(), sibling.Label()) {
				continue
			}
			refreshCollection(sibling, pkg)
			if row := sibling.RowOf(value); row >= 0 {
				return m.insertRow(sibling, row), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no collection of %s shows %T", domain.ErrUnsupportedParent, pkg, value)
}

// attach creates the node for a value just inserted into the container of
// parent. The value may surface one level below, for example in a snapshot
// collection of a package.
func (m *Model) attach(parent *tree.Node, value any) (*tree.Node, error) {
	if row := parent.RowOf(value); row >= 0 {
		return m.insertRow(parent, row), nil
	}
	for _, child := range parent.Children() {
		if row := child.RowOf(value); row >= 0 {
			return m.insertRow(child, row), nil
		}
	}
	parent.Invalidate()
	return nil, fmt.Errorf("%w: inserted value is not visible under %s", domain.ErrNotFound, parent.Label())
}

func (m *Model) insertRow(parent *tree.Node, row int) *tree.Node {
	spec, _ := parent.SpecAt(row)
	spec.New = true
	node := parent.InsertChild(row, spec)
	m.rowsInserted(parent, row, row)
	m.markChanged(parent)
	return node
}

func insertEntry(container any, pos int, kv domain.KeyValue) error {
	if mp, ok := container.(domain.Mapping); ok {
		if _, exists := mp.Get(kv.Key); exists {
			return fmt.Errorf("%w: key %v", domain.ErrDuplicate, kv.Key)
		}
		mp.InsertAt(pos, kv.Key, kv.Value)
		return nil
	}
	rv := reflect.ValueOf(container)
	if rv.IsNil() {
		return fmt.Errorf("%w: nil map", domain.ErrUnsupportedParent)
	}
	k, err := attr.Coerce(kv.Key, rv.Type().Key())
	if err != nil {
		return err
	}
	if rv.MapIndex(k).IsValid() {
		return fmt.Errorf("%w: key %v", domain.ErrDuplicate, kv.Key)
	}
	v, err := attr.Coerce(kv.Value, rv.Type().Elem())
	if err != nil {
		return err
	}
	rv.SetMapIndex(k, v)
	return nil
}

func removeEntry(container any, key any) {
	if mp, ok := container.(domain.Mapping); ok {
		mp.Delete(key)
		return
	}
	rv := reflect.ValueOf(container)
	if k, err := attr.Coerce(key, rv.Type().Key()); err == nil {
		rv.SetMapIndex(k, reflect.Value{})
	}
}

func sliceInsert(container any, pos int, value any) (any, error) {
	rv := reflect.ValueOf(container)
	cv, err := attr.Coerce(value, rv.Type().Elem())
	if err != nil {
		return nil, err
	}
	if pos < 0 || pos > rv.Len() {
		pos = rv.Len()
	}
	out := reflect.MakeSlice(rv.Type(), 0, rv.Len()+1)
	out = reflect.AppendSlice(out, rv.Slice(0, pos))
	out = reflect.Append(out, cv)
	out = reflect.AppendSlice(out, rv.Slice(pos, rv.Len()))
	return out.Interface(), nil
}

func sliceRemove(container any, pos int) (any, any) {
	rv := reflect.ValueOf(container)
	removed := rv.Index(pos).Interface()
	out := reflect.MakeSlice(rv.Type(), 0, rv.Len()-1)
	out = reflect.AppendSlice(out, rv.Slice(0, pos))
	out = reflect.AppendSlice(out, rv.Slice(pos+1, rv.Len()))
	return out.Interface(), removed
}

// writeBack stores a reallocated native slice into the attribute it was read from.
func (m *Model) writeBack(node *tree.Node, value any) error {
	owner := node.Parent()
	if owner == nil || node.AttrName() == "" {
		return fmt.Errorf("%w: %s is not an attribute", domain.ErrUnsupportedParent, node.Label())
	}
	if err := attr.Set(owner.Value(), node.AttrName(), value); err != nil {
		return err
	}
	node.Swap(value)
	return nil
}

func (m *Model) clear(target *tree.Node, def any) (Edit, error) {
	parent := target.Parent()
	if parent == nil {
		return Edit{}, fmt.Errorf("%w: node has no parent", domain.ErrNotDeletable)
	}
	row := target.Row()
	value := target.Value()
	container := m.container(parent, target)

	var inv Edit
	if pkg, ok := packageCollection(parent); ok {
		pos := pkg.ObjStore.IndexOf(value)
		if !pkg.ObjStore.Discard(value) {
			return Edit{}, fmt.Errorf("%w: %v is not in %s", domain.ErrNotFound, value, pkg)
		}
		refreshCollection(parent, pkg)
		parent.RemoveChild(row)
		m.rowsRemoved(parent, row, row)
		m.markChanged(parent)
		return Edit{Op: OpAdd, Target: parent, Value: value, Pos: pos, Replaces: target}, nil
	}

	switch classify.ContainerOf(container) {
	case classify.ContainerList:
		if l, ok := container.(domain.MutableList); ok {
			value = l.RemoveAt(row)
		} else {
			shrunk, removed := sliceRemove(container, row)
			if err := m.writeBack(parent, shrunk); err != nil {
				return Edit{}, err
			}
			value = removed
		}
		inv = Edit{Op: OpAdd, Target: parent, Value: value, Pos: row}

	case classify.ContainerMapping:
		kv, ok := value.(domain.KeyValue)
		if !ok {
			return Edit{}, fmt.Errorf("%w: %T is not a mapping entry", domain.ErrNotDeletable, value)
		}
		pos := -1
		if mp, ok := container.(domain.Mapping); ok {
			pos = mp.IndexOf(kv.Key)
			mp.Delete(kv.Key)
		} else {
			reflect.ValueOf(container).SetMapIndex(reflect.ValueOf(kv.Key), reflect.Value{})
		}
		inv = Edit{Op: OpAdd, Target: parent, Value: kv, Pos: pos}

	case classify.ContainerSet:
		set := container.(domain.MutableSet)
		pos := set.IndexOf(value)
		if !set.Discard(value) {
			return Edit{}, fmt.Errorf("%w: %v is not a member", domain.ErrNotFound, value)
		}
		inv = Edit{Op: OpAdd, Target: parent, Value: value, Pos: pos}

	default:
		if _, none := def.(noDefault); !none {
			return m.setValue(target, def)
		}
		pkg, ok := value.(*domain.Package)
		if !ok || !parent.IsRoot() {
			return Edit{}, fmt.Errorf("%w: %s", domain.ErrNotDeletable, target.Label())
		}
		inv = Edit{Op: OpAdd, Target: parent, Value: pkg, Pos: row}
	}

	parent.RemoveChild(row)
	m.rowsRemoved(parent, row, row)
	m.markChanged(parent)
	inv.Replaces = target
	return inv, nil
}
