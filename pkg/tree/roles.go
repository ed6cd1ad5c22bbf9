package tree

// Role selects which aspect of a node a data query or edit addresses.
type Role int

const (
	RoleDisplay Role = iota
	RoleEdit
	RoleForeground
	RoleFont
	RoleObject
	RoleName
	RoleType
	RoleTypeHint
	RoleTypeCheck
	RoleIsLink
	RoleIsNew
	RoleIsChanged
	RolePackage
	RoleParentObject
	RoleLinkedItem
	RolePackItem
	RoleChangeFailed
	RoleAddItem
	RoleClearRow
	RoleUndo
	RoleRedo
	RoleUpdate
	RoleCopy
	RoleColumnName
)

var roleNames = map[Role]string{
	RoleDisplay:      "display",
	RoleEdit:         "edit",
	RoleForeground:   "foreground",
	RoleFont:         "font",
	RoleObject:       "object",
	RoleName:         "name",
	RoleType:         "type",
	RoleTypeHint:     "type_hint",
	RoleTypeCheck:    "type_check",
	RoleIsLink:       "is_link",
	RoleIsNew:        "is_new",
	RoleIsChanged:    "is_changed",
	RolePackage:      "package",
	RoleParentObject: "parent_object",
	RoleLinkedItem:   "linked_item",
	RolePackItem:     "pack_item",
	RoleChangeFailed: "change_failed",
	RoleAddItem:      "add_item",
	RoleClearRow:     "clear_row",
	RoleUndo:         "undo",
	RoleRedo:         "redo",
	RoleUpdate:       "update",
	RoleCopy:         "copy",
	RoleColumnName:   "column_name",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "unknown"
}

// Column identifies a presentation column.
type Column int

const (
	ColumnName Column = iota
	ColumnValue
	ColumnType
	ColumnTypeHint
)

// DefaultColumns is the column layout used by edit models.
var DefaultColumns = []Column{ColumnName, ColumnValue, ColumnType, ColumnTypeHint}

func (c Column) String() string {
	switch c {
	case ColumnName:
		return "Name"
	case ColumnValue:
		return "Value"
	case ColumnType:
		return "Type"
	case ColumnTypeHint:
		return "Type hint"
	}
	return ""
}
