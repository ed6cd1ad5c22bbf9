package model

import (
	"fmt"

	"github.com/aretw0/aastree/pkg/tree"
	"github.com/mohae/deepcopy"
)

// Color is a foreground styling hint.
type Color string

const (
	ColorTypeError Color = "#ff0000"
	ColorLink      Color = "#0000ee"
	ColorNew       Color = "#008000"
	ColorChanged   Color = "#4169e1"
)

// Font is a font styling hint.
type Font struct {
	Bold      bool
	Italic    bool
	Underline bool
}

// Data returns the value of role for the cell under idx. The invalid index
// addresses the root.
func (m *Model) Data(idx Index, role Role) any {
	column := m.columnOf(idx)
	switch role {
	case tree.RoleForeground:
		return m.foreground(idx, column)
	case tree.RoleFont:
		return m.font(idx, column)
	case tree.RoleChangeFailed:
		return m.lastErr
	case tree.RoleUndo:
		return m.history.Undos()
	case tree.RoleRedo:
		return m.history.Redos()
	case tree.RoleColumnName:
		return column.String()
	case tree.RoleLinkedItem:
		return m.LinkedItem(idx)
	case tree.RolePackItem:
		if m.packModel != nil {
			return m.packModel.IndexOf(m.packNode, 0)
		}
		return Index{}
	case tree.RoleCopy:
		v, err := m.Copy(idx)
		if err != nil {
			return nil
		}
		return v
	}
	return m.nodeOf(idx).Data(role, column)
}

func (m *Model) foreground(idx Index, column Column) any {
	if !idx.IsValid() {
		return nil
	}
	node := idx.node
	switch {
	case (column == tree.ColumnValue || column == tree.ColumnType) && !node.TypeCheck():
		return ColorTypeError
	case node.IsLink():
		return ColorLink
	case column == tree.ColumnName && node.IsNew():
		return ColorNew
	case column == tree.ColumnName && node.IsChanged():
		return ColorChanged
	}
	return nil
}

func (m *Model) font(idx Index, column Column) Font {
	switch {
	case idx.IsValid() && idx.node.IsLink():
		return Font{Underline: true}
	case column == tree.ColumnName:
		return Font{Bold: true, Underline: true}
	case column != tree.ColumnType && column != tree.ColumnTypeHint:
		return Font{Italic: true}
	}
	return Font{}
}

// Copy returns a detached copy of the cell content. Name and value columns
// copy the object; type columns copy their display text.
func (m *Model) Copy(idx Index) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to copy %s: %v", m.nodeOf(idx).Label(), r)
			m.reject("copy", m.nodeOf(idx).Label(), err)
		}
	}()
	node := m.nodeOf(idx)
	switch m.columnOf(idx) {
	case tree.ColumnType, tree.ColumnTypeHint:
		return node.Data(tree.RoleDisplay, m.columnOf(idx)), nil
	}
	return deepcopy.Copy(node.Value()), nil
}

// SetData dispatches role-addressed edits. It reports whether the edit was applied;
// the reason of a rejection is available through RoleChangeFailed. An []Edit
// given with RoleUndo or RoleRedo replaces that stack instead of stepping it.
func (m *Model) SetData(idx Index, value any, role Role) bool {
	var err error
	switch role {
	case tree.RoleEdit:
		err = m.SetValue(idx, value)
	case tree.RoleAddItem:
		_, err = m.Add(value, idx)
	case tree.RoleClearRow:
		err = m.clearRow(idx, value)
	case tree.RoleUndo:
		if edits, ok := value.([]Edit); ok {
			m.history.setUndo(edits)
			return true
		}
		return m.Undo()
	case tree.RoleRedo:
		if edits, ok := value.([]Edit); ok {
			m.history.setRedo(edits)
			return true
		}
		return m.Redo()
	case tree.RoleUpdate:
		m.Update(idx)
	default:
		err = m.reject("set_data", m.nodeOf(idx).Label(), fmt.Errorf("role %s is not editable", role))
	}
	return err == nil
}
