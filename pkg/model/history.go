package model

import (
	"fmt"

	"github.com/aretw0/aastree/pkg/tree"
)

// DefaultMaxUndos bounds the undo stack when no limit is configured.
const DefaultMaxUndos = 50

// Op is the kind of a recorded edit.
type Op int

const (
	OpSet Op = iota
	OpAdd
	OpClear
	// OpGroup applies its members in order. The inverse lists the member
	// inverses in the same order.
	OpGroup
)

func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpAdd:
		return "add"
	case OpClear:
		return "clear"
	case OpGroup:
		return "group"
	}
	return "unknown"
}

// Edit is a replayable mutation. Applying an Edit yields its inverse.
type Edit struct {
	Op Op
	// Target is the edited node for OpSet and OpClear, and the parent for OpAdd.
	Target *tree.Node
	Value  any
	// Pos is the position in the underlying container for OpAdd; -1 appends.
	Pos   int
	Group []Edit
	// Replaces is the row an OpAdd brings back. Entries addressing it, or a
	// row below it, follow the re-created row.
	Replaces *tree.Node
}

func (e Edit) String() string {
	if e.Op == OpGroup {
		return fmt.Sprintf("group(%d)", len(e.Group))
	}
	label := "<nil>"
	if e.Target != nil {
		label = e.Target.Label()
	}
	return fmt.Sprintf("%s %s", e.Op, label)
}

// History keeps the undo and redo stacks. The undo stack is bounded and
// evicts its oldest entry when full.
type History struct {
	undo []Edit
	redo []Edit
	max  int
}

// NewHistory creates stacks holding at most limit undo entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultMaxUndos
	}
	return &History{max: limit}
}

func (h *History) pushUndo(e Edit) {
	h.undo = append(h.undo, e)
	if len(h.undo) > h.max {
		h.undo = append([]Edit(nil), h.undo[len(h.undo)-h.max:]...)
	}
}

func (h *History) pushRedo(e Edit) { h.redo = append(h.redo, e) }

func (h *History) popUndo() (Edit, bool) {
	if len(h.undo) == 0 {
		return Edit{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return e, true
}

func (h *History) popRedo() (Edit, bool) {
	if len(h.redo) == 0 {
		return Edit{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return e, true
}

func (h *History) clearRedo() { h.redo = nil }

// UndoLen returns the number of undoable edits.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the number of redoable edits.
func (h *History) RedoLen() int { return len(h.redo) }

// Max returns the undo capacity.
func (h *History) Max() int { return h.max }

// Undos returns a copy of the undo stack, oldest first.
func (h *History) Undos() []Edit { return append([]Edit(nil), h.undo...) }

// Redos returns a copy of the redo stack, oldest first.
func (h *History) Redos() []Edit { return append([]Edit(nil), h.redo...) }

func (h *History) setUndo(edits []Edit) {
	if len(edits) > h.max {
		edits = edits[len(edits)-h.max:]
	}
	h.undo = append([]Edit(nil), edits...)
}

func (h *History) setRedo(edits []Edit) { h.redo = append([]Edit(nil), edits...) }

// rebind points the detached targets below old at the matching rows of fresh.
func (h *History) rebind(old, fresh *tree.Node) {
	for i := range h.undo {
		h.undo[i] = rebindEdit(h.undo[i], old, fresh)
	}
	for i := range h.redo {
		h.redo[i] = rebindEdit(h.redo[i], old, fresh)
	}
}

func rebindEdit(e Edit, old, fresh *tree.Node) Edit {
	if e.Op == OpGroup {
		group := make([]Edit, len(e.Group))
		for i, member := range e.Group {
			group[i] = rebindEdit(member, old, fresh)
		}
		e.Group = group
		return e
	}
	if e.Target != nil && !e.Target.Attached() {
		if n := counterpart(e.Target, old, fresh); n != nil {
			e.Target = n
		}
	}
	return e
}

// counterpart follows the rows leading from old down to n, starting at fresh.
func counterpart(n, old, fresh *tree.Node) *tree.Node {
	var rows []int
	for cur := n; cur != old; cur = cur.Parent() {
		if cur == nil {
			return nil
		}
		rows = append(rows, cur.Row())
	}
	cur := fresh
	for i := len(rows) - 1; i >= 0 && cur != nil; i-- {
		cur = cur.Child(rows[i])
	}
	return cur
}
