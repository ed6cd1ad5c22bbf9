package tree

import (
	"fmt"
	"reflect"

	"github.com/aretw0/aastree/internal/attr"
	"github.com/aretw0/aastree/internal/classify"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/registry"
	"github.com/google/uuid"
)

// Spec describes a child before it becomes a Node.
type Spec struct {
	Value    any
	Label    string
	AttrName string
	TypeHint reflect.Type
	Policy   Policy
	// View, when set, produces the value enumerated for children while Value
	// keeps the live object that edits are applied to.
	View func() any
	New  bool
}

// Node wraps one value of the edited graph.
type Node struct {
	id        uuid.UUID
	value     any
	view      func() any
	label     string
	attrName  string
	typeHint  reflect.Type
	policy    Policy
	reg       *registry.Registry
	pkg       *domain.Package
	parent    *Node
	children  []*Node
	populated bool
	root      bool
	explicit  bool
	detached  bool
	isNew     bool
	changed   bool
}

// NewRoot creates the invisible root of a tree.
// A root without a value has explicit children managed through InsertChild and RemoveChild.
func NewRoot(policy Policy, reg *registry.Registry, value any) *Node {
	if reg == nil {
		reg = registry.NewRegistry()
	}
	n := &Node{
		id:       uuid.New(),
		value:    value,
		policy:   policy,
		reg:      reg,
		root:     true,
		explicit: value == nil,
	}
	n.populated = n.explicit
	if pkg, ok := value.(*domain.Package); ok {
		n.pkg = pkg
	}
	return n
}

func (n *Node) newChild(s Spec) *Node {
	c := &Node{
		id:       uuid.New(),
		value:    s.Value,
		view:     s.View,
		label:    s.Label,
		attrName: s.AttrName,
		typeHint: s.TypeHint,
		policy:   s.Policy,
		reg:      n.reg,
		pkg:      n.pkg,
		parent:   n,
		isNew:    s.New,
	}
	if pkg, ok := s.Value.(*domain.Package); ok {
		c.pkg = pkg
	}
	return c
}

// ID is a stable identifier for the lifetime of the node.
func (n *Node) ID() uuid.UUID { return n.id }

// Value returns the wrapped object.
func (n *Node) Value() any { return n.value }

// Source returns the value whose members are enumerated as children.
func (n *Node) Source() any {
	if n.view != nil {
		return n.view()
	}
	return n.value
}

// IsSnapshot reports whether children come from a computed view.
func (n *Node) IsSnapshot() bool { return n.view != nil }

func (n *Node) AttrName() string             { return n.attrName }
func (n *Node) TypeHint() reflect.Type       { return n.typeHint }
func (n *Node) Policy() Policy               { return n.policy }
func (n *Node) Registry() *registry.Registry { return n.reg }
func (n *Node) Package() *domain.Package     { return n.pkg }
func (n *Node) IsNew() bool                  { return n.isNew }
func (n *Node) IsChanged() bool              { return n.changed }
func (n *Node) IsRoot() bool                 { return n.root }

// Parent returns nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Label returns the display name, derived from the value when none was given.
func (n *Node) Label() string {
	if n.label != "" {
		return n.label
	}
	switch v := n.value.(type) {
	case domain.Referable:
		if v.IDShortName() != "" {
			return v.IDShortName()
		}
	case domain.StoredFile:
		return v.Name
	case domain.KeyValue:
		return fmt.Sprint(v.Key)
	}
	return FormatValue(n.value, n.reg)
}

// Attached reports whether the node is still reachable from its root.
func (n *Node) Attached() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.detached {
			return false
		}
		if cur.parent == nil {
			return cur.root
		}
	}
	return false
}

// Populated reports whether children have been materialized.
func (n *Node) Populated() bool { return n.populated }

// Children returns the children, populating them on first access.
func (n *Node) Children() []*Node {
	n.ensure()
	return append([]*Node(nil), n.children...)
}

// Materialized returns the children without forcing population.
func (n *Node) Materialized() []*Node {
	return append([]*Node(nil), n.children...)
}

// Len returns the number of children, populating them if needed.
func (n *Node) Len() int {
	n.ensure()
	return len(n.children)
}

// Child returns the child at row, or nil.
func (n *Node) Child(row int) *Node {
	n.ensure()
	if row < 0 || row >= len(n.children) {
		return nil
	}
	return n.children[row]
}

// HasChildren reports whether the node would have at least one child.
func (n *Node) HasChildren() bool {
	if n.populated {
		return len(n.children) > 0
	}
	return len(n.Enumerate()) > 0
}

// Row returns the position among the parent's children, or -1.
func (n *Node) Row() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Path returns the rows from the root down to n.
func (n *Node) Path() []int {
	var rows []int
	for cur := n; cur.parent != nil; cur = cur.parent {
		rows = append([]int{cur.Row()}, rows...)
	}
	return rows
}

// Root returns the topmost ancestor.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (n *Node) ensure() {
	if n.populated {
		return
	}
	n.populated = true
	specs := n.Enumerate()
	n.children = make([]*Node, 0, len(specs))
	for _, s := range specs {
		n.children = append(n.children, n.newChild(s))
	}
}

// Invalidate discards materialized children; they are rebuilt on next access.
// On an explicit root every child is invalidated instead.
func (n *Node) Invalidate() {
	if n.explicit {
		for _, c := range n.children {
			c.Invalidate()
		}
		return
	}
	for _, c := range n.children {
		c.detach()
	}
	n.children = nil
	n.populated = false
}

// SetValue rebinds the node to v and invalidates its subtree.
func (n *Node) SetValue(v any) {
	n.value = v
	if pkg, ok := v.(*domain.Package); ok {
		n.pkg = pkg
	}
	n.Invalidate()
}

// SetPackage binds the package used for contextual lookups of n and of the
// children it creates afterwards.
func (n *Node) SetPackage(pkg *domain.Package) { n.pkg = pkg }

// Swap replaces the value while keeping materialized children.
func (n *Node) Swap(v any) { n.value = v }

func (n *Node) detach() {
	n.detached = true
	for _, c := range n.children {
		c.detach()
	}
}

// InsertChild adds a node built from s at row. A row outside the range appends.
// When the node was not yet populated, population already covers the new value
// and the existing child at row is returned.
func (n *Node) InsertChild(row int, s Spec) *Node {
	if !n.populated {
		n.ensure()
		if c := n.Child(row); c != nil {
			c.isNew = c.isNew || s.New
			return c
		}
	}
	c := n.newChild(s)
	if row < 0 || row >= len(n.children) {
		n.children = append(n.children, c)
		return c
	}
	n.children = append(n.children, nil)
	copy(n.children[row+1:], n.children[row:])
	n.children[row] = c
	return c
}

// RemoveChild detaches and returns the child at row.
func (n *Node) RemoveChild(row int) *Node {
	if row < 0 || row >= len(n.children) {
		return nil
	}
	c := n.children[row]
	n.children = append(n.children[:row], n.children[row+1:]...)
	c.detach()
	return c
}

// MoveChild moves the child at from to position to.
func (n *Node) MoveChild(from, to int) {
	if from == to || from < 0 || from >= len(n.children) || to < 0 || to >= len(n.children) {
		return
	}
	c := n.children[from]
	n.children = append(n.children[:from], n.children[from+1:]...)
	n.children = append(n.children[:to], append([]*Node{c}, n.children[to:]...)...)
}

// SetChanged marks the node as modified.
func (n *Node) SetChanged(changed bool) { n.changed = changed }

// SetNew marks the node as inserted.
func (n *Node) SetNew(isNew bool) { n.isNew = isNew }

// ClearState resets the new and changed flags of the materialized subtree.
func (n *Node) ClearState() {
	n.isNew = false
	n.changed = false
	for _, c := range n.children {
		c.ClearState()
	}
}

// TypeCheck reports whether the value satisfies the declared type of its slot.
func (n *Node) TypeCheck() bool {
	if n.parent != nil && n.attrName != "" {
		if c, ok := n.parent.value.(domain.AttributeChecker); ok && !c.CheckAttr(n.attrName, n.value) {
			return false
		}
	}
	if n.typeHint == nil {
		return true
	}
	if n.value == nil {
		switch n.typeHint.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			return true
		}
		return false
	}
	return reflect.TypeOf(n.value).AssignableTo(n.typeHint)
}

// IsLink reports whether the value points at another object.
func (n *Node) IsLink() bool {
	if _, ok := n.value.(domain.Resolver); !ok {
		return false
	}
	rv := reflect.ValueOf(n.value)
	return !(rv.Kind() == reflect.Pointer && rv.IsNil())
}

// Data answers node-level roles for one column. Unknown roles return nil.
func (n *Node) Data(role Role, column Column) any {
	switch role {
	case RoleDisplay:
		switch column {
		case ColumnName:
			return n.Label()
		case ColumnValue:
			return FormatValue(n.value, n.reg)
		case ColumnType:
			return attr.TypeName(reflect.TypeOf(n.value))
		case ColumnTypeHint:
			if n.typeHint == nil {
				return ""
			}
			return attr.TypeName(n.typeHint)
		}
	case RoleEdit:
		if column == ColumnName || column == ColumnValue {
			return n.value
		}
	case RoleObject:
		return n.value
	case RoleName:
		return n.Label()
	case RoleType:
		return reflect.TypeOf(n.value)
	case RoleTypeHint:
		return n.typeHint
	case RoleTypeCheck:
		return n.TypeCheck()
	case RoleIsLink:
		return n.IsLink()
	case RoleIsNew:
		return n.isNew
	case RoleIsChanged:
		return n.changed
	case RolePackage:
		return n.pkg
	case RoleParentObject:
		if n.parent != nil {
			return n.parent.value
		}
	}
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s (%s)", n.Label(), attr.TypeName(reflect.TypeOf(n.value)))
}

// FormatValue renders a value for the value column.
func FormatValue(v any, reg *registry.Registry) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	switch c := classify.Of(v, reg); c.Shape {
	case classify.Sequence:
		return fmt.Sprintf("%s[%d]", attr.TypeName(reflect.TypeOf(v)), len(classify.Items(v)))
	case classify.Mapping:
		return fmt.Sprintf("%s{%d}", attr.TypeName(reflect.TypeOf(v)), len(classify.Entries(v)))
	case classify.Opaque:
		return attr.TypeName(reflect.TypeOf(v))
	}
	return fmt.Sprint(v)
}
