package model

import (
	"log/slog"

	"github.com/aretw0/aastree/internal/logging"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/tree"
)

// Role and Column are shared with the tree package.
type (
	Role   = tree.Role
	Column = tree.Column
)

// Index addresses one cell of the model. The zero Index is the invisible root.
type Index struct {
	node   *tree.Node
	column Column
}

// IsValid reports whether the index points at a node other than the root.
func (i Index) IsValid() bool { return i.node != nil && !i.node.IsRoot() }

// Node returns the addressed node, or nil for the root index.
func (i Index) Node() *tree.Node { return i.node }

func (i Index) Column() Column { return i.column }

// Row returns the position among the siblings, or -1.
func (i Index) Row() int {
	if !i.IsValid() {
		return -1
	}
	return i.node.Row()
}

// Sibling returns the index of the same node in another column.
func (i Index) Sibling(column Column) Index { return Index{node: i.node, column: column} }

// Signals are structural notifications for views bound to a model.
type Signals struct {
	OnDataChanged  func(topLeft, bottomRight Index, roles []Role)
	OnRowsInserted func(parent Index, first, last int)
	OnRowsRemoved  func(parent Index, first, last int)
}

// CompatShim repairs a failed coercion on target, typically by adjusting a
// sibling attribute. A nil error means the assignment should be retried once.
type CompatShim func(m *Model, target Index, value any) error

// NoDefault tells SetData with RoleClearRow that no default value is given.
var NoDefault = noDefault{}

type noDefault struct{}

// Model is an editable tree projection with undo and redo.
// It is not safe for concurrent use.
type Model struct {
	root      *tree.Node
	columns   []Column
	logger    *slog.Logger
	hooks     domain.EditHooks
	signals   Signals
	shim      CompatShim
	linkModel *Model
	packModel *Model
	packNode  *tree.Node
	history   *History
	maxUndos  int
	lastErr   string

	depth     int
	pending   []Edit
	replaying bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithColumns sets the column layout.
func WithColumns(columns ...Column) Option {
	return func(m *Model) {
		m.columns = columns
	}
}

// WithMaxUndos bounds the undo stack.
func WithMaxUndos(n int) Option {
	return func(m *Model) {
		m.maxUndos = n
	}
}

// WithHooks registers edit observers.
func WithHooks(hooks domain.EditHooks) Option {
	return func(m *Model) {
		m.hooks = hooks
	}
}

// WithSignals registers structural observers.
func WithSignals(signals Signals) Option {
	return func(m *Model) {
		m.signals = signals
	}
}

// WithCompatShim installs a coercion repair step for attribute edits.
func WithCompatShim(shim CompatShim) Option {
	return func(m *Model) {
		m.shim = shim
	}
}

// WithLinkModel sets the model searched when resolving links. Defaults to the model itself.
func WithLinkModel(link *Model) Option {
	return func(m *Model) {
		m.linkModel = link
	}
}

// WithPackItem ties a detail model to the package-view item it was opened from.
// Changes to top-level rows are propagated to that item.
func WithPackItem(pack *Model, item Index) Option {
	return func(m *Model) {
		m.packModel = pack
		m.packNode = item.node
	}
}

// New creates a model over root.
func New(root *tree.Node, opts ...Option) *Model {
	m := &Model{
		root:    root,
		columns: tree.DefaultColumns,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.history = NewHistory(m.maxUndos)
	if m.linkModel == nil {
		m.linkModel = m
	}
	return m
}

// Root returns the invisible root node.
func (m *Model) Root() *tree.Node { return m.root }

// History exposes the undo and redo stacks.
func (m *Model) History() *History { return m.history }

func (m *Model) UndoLen() int { return m.history.UndoLen() }
func (m *Model) RedoLen() int { return m.history.RedoLen() }

// LastError returns the message of the most recent rejected operation.
func (m *Model) LastError() string { return m.lastErr }

func (m *Model) nodeOf(idx Index) *tree.Node {
	if idx.node == nil {
		return m.root
	}
	return idx.node
}

// NodeOf returns the node addressed by idx; the invalid index addresses the root.
func (m *Model) NodeOf(idx Index) *tree.Node { return m.nodeOf(idx) }

// IndexOf returns the index of node in the given column.
func (m *Model) IndexOf(node *tree.Node, column Column) Index {
	if node == nil || node.IsRoot() {
		return Index{}
	}
	return Index{node: node, column: column}
}

// Index returns the child of parent at row.
func (m *Model) Index(row int, column Column, parent Index) Index {
	child := m.nodeOf(parent).Child(row)
	if child == nil || int(column) >= len(m.columns) {
		return Index{}
	}
	return Index{node: child, column: column}
}

// Parent returns the parent index; top-level rows have the root as parent.
func (m *Model) Parent(idx Index) Index {
	if !idx.IsValid() {
		return Index{}
	}
	return m.IndexOf(idx.node.Parent(), 0)
}

// RowCount returns the number of children, populating them if needed.
func (m *Model) RowCount(parent Index) int { return m.nodeOf(parent).Len() }

// ColumnCount returns the number of columns.
func (m *Model) ColumnCount() int { return len(m.columns) }

// HasChildren reports whether the node under idx has children.
func (m *Model) HasChildren(idx Index) bool { return m.nodeOf(idx).HasChildren() }

// HeaderData returns the title of a column.
func (m *Model) HeaderData(section int) string {
	if section < 0 || section >= len(m.columns) {
		return ""
	}
	return m.columns[section].String()
}

// Columns returns the column layout.
func (m *Model) Columns() []Column { return append([]Column(nil), m.columns...) }

// Flags describes how a cell can be interacted with.
type Flags int

const (
	FlagSelectable Flags = 1 << iota
	FlagEditable
	FlagEnabled
)

const NoItemFlags Flags = 0

// Flags returns the interaction flags of a cell. Type columns are read-only
// and empty cells take no interaction.
func (m *Model) Flags(idx Index) Flags {
	if !idx.IsValid() {
		return NoItemFlags
	}
	column := m.columnOf(idx)
	if d := m.Data(idx, tree.RoleDisplay); d == nil || (column == tree.ColumnTypeHint && d == "") {
		return NoItemFlags
	}
	switch column {
	case tree.ColumnType, tree.ColumnTypeHint:
		return FlagEnabled | FlagSelectable
	}
	return FlagEditable | FlagEnabled | FlagSelectable
}

func (m *Model) columnOf(idx Index) Column {
	if int(idx.column) < len(m.columns) {
		return m.columns[idx.column]
	}
	return idx.column
}

func (m *Model) dataChanged(idx Index, roles ...Role) {
	if m.signals.OnDataChanged != nil {
		last := m.IndexOf(idx.node, Column(len(m.columns)-1))
		m.signals.OnDataChanged(idx.Sibling(0), last, roles)
	}
}

func (m *Model) rowsInserted(parent *tree.Node, first, last int) {
	if m.signals.OnRowsInserted != nil {
		m.signals.OnRowsInserted(m.IndexOf(parent, 0), first, last)
	}
}

func (m *Model) rowsRemoved(parent *tree.Node, first, last int) {
	if m.signals.OnRowsRemoved != nil {
		m.signals.OnRowsRemoved(m.IndexOf(parent, 0), first, last)
	}
}

// SetChanged marks the node and all its ancestors as changed. A top-level row
// of a detail model also marks the package item it was opened from.
func (m *Model) SetChanged(idx Index) {
	m.markChanged(m.nodeOf(idx))
}

func (m *Model) markChanged(node *tree.Node) {
	for cur := node; cur != nil && !cur.IsRoot(); cur = cur.Parent() {
		cur.SetChanged(true)
		m.dataChanged(m.IndexOf(cur, 0))
	}
	if m.packModel != nil && m.packNode != nil && m.packNode.Attached() {
		m.packModel.markChanged(m.packNode)
	}
}

// SetUnchanged clears the new and changed flags of the subtree under idx.
func (m *Model) SetUnchanged(idx Index) {
	node := m.nodeOf(idx)
	node.ClearState()
	m.dataChanged(idx)
}

// Update discards the subtree under idx and rebuilds it from the live values.
func (m *Model) Update(idx Index) {
	node := m.nodeOf(idx)
	if n := len(node.Materialized()); n > 0 {
		node.Invalidate()
		m.rowsRemoved(node, 0, n-1)
	} else {
		node.Invalidate()
	}
	if n := node.Len(); n > 0 {
		m.rowsInserted(node, 0, n-1)
	}
	m.dataChanged(idx)
}

// RemoveRows drops count rows under parent from the view only; the domain
// objects are left untouched.
func (m *Model) RemoveRows(row, count int, parent Index) bool {
	node := m.nodeOf(parent)
	if row < 0 || count <= 0 || row+count > node.Len() {
		return false
	}
	for range count {
		node.RemoveChild(row)
	}
	m.rowsRemoved(node, row, row+count-1)
	return true
}
