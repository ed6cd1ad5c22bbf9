package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/tree"
)

// PathSeparator separates the row names of a path.
const PathSeparator = "/"

// Resolve walks path from the root and returns the row it names. Each
// segment matches the name of a row; "#n" selects row n. The empty path is
// the root.
func (m *Model) Resolve(path string) (Index, error) {
	cur := Index{}
	path = strings.Trim(path, PathSeparator)
	if path == "" {
		return cur, nil
	}
	for _, seg := range strings.Split(path, PathSeparator) {
		next, ok := m.step(cur, seg)
		if !ok {
			return Index{}, fmt.Errorf("%w: no row %q under %q", domain.ErrNotFound, seg, m.PathOf(cur))
		}
		cur = next
	}
	return cur, nil
}

func (m *Model) step(parent Index, seg string) (Index, bool) {
	n := m.RowCount(parent)
	for row := range n {
		idx := m.Index(row, 0, parent)
		if m.Data(idx, tree.RoleName) == seg {
			return idx, true
		}
	}
	if rest, ok := strings.CutPrefix(seg, "#"); ok {
		if row, err := strconv.Atoi(rest); err == nil && row >= 0 && row < n {
			return m.Index(row, 0, parent), true
		}
	}
	return Index{}, false
}

// PathOf returns the path Resolve maps back to idx. Rows whose name is
// ambiguous or contains the separator are addressed by position.
func (m *Model) PathOf(idx Index) string {
	var segs []string
	for cur := idx.node; cur != nil && !cur.IsRoot(); cur = cur.Parent() {
		segs = append(segs, segment(cur))
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, PathSeparator)
}

func segment(n *tree.Node) string {
	name := n.Label()
	byRow := "#" + strconv.Itoa(n.Row())
	if name == "" || strings.Contains(name, PathSeparator) || strings.HasPrefix(name, "#") {
		return byRow
	}
	if parent := n.Parent(); parent != nil {
		for _, sib := range parent.Materialized() {
			if sib != n && sib.Label() == name {
				return byRow
			}
		}
	}
	return name
}
