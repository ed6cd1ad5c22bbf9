package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/aastree"
	"github.com/aretw0/aastree/internal/dto"
	"github.com/aretw0/aastree/internal/logging"
	"github.com/aretw0/aastree/internal/presentation/graph"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/model"
	"github.com/aretw0/aastree/pkg/tree"
)

// Target addresses a row. Item is a path in the package view. Path, when
// set, is a path inside the detail model opened on Item; "/" is the detail
// root.
type Target struct {
	Item string `json:"item"`
	Path string `json:"path,omitempty"`
}

func (t Target) String() string {
	if t.Path == "" {
		return t.Item
	}
	return t.Item + "::" + t.Path
}

// PackageInfo summarizes an opened package.
type PackageInfo struct {
	Name    string `json:"name"`
	File    string `json:"file,omitempty"`
	Changed bool   `json:"changed"`
}

// NodeView is a serializable snapshot of one row and, up to the requested
// depth, its children.
type NodeView struct {
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Value       string     `json:"value"`
	Type        string     `json:"type"`
	TypeHint    string     `json:"type_hint,omitempty"`
	TypeOK      bool       `json:"type_ok"`
	IsLink      bool       `json:"is_link,omitempty"`
	Linked      string     `json:"linked,omitempty"`
	Changed     bool       `json:"changed,omitempty"`
	New         bool       `json:"new,omitempty"`
	HasChildren bool       `json:"has_children"`
	Children    []NodeView `json:"children,omitempty"`
}

// History reports the stack sizes of one model.
type History struct {
	Undo int `json:"undo"`
	Redo int `json:"redo"`
}

// Session serializes access to an Editor and addresses rows by path, so that
// transports can share one editor between concurrent requests.
type Session struct {
	mu     sync.Mutex
	editor *aastree.Editor
	logger *slog.Logger
}

// Option configures the Session.
type Option func(*Session)

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New wraps editor. The editor must not be used directly afterwards.
func New(editor *aastree.Editor, opts ...Option) *Session {
	s := &Session{
		editor: editor,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLock executes fn while holding the session lock.
func (s *Session) WithLock(fn func(*aastree.Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.editor)
}

// Packages lists the opened packages.
func (s *Session) Packages() []PackageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packages()
}

func (s *Session) packages() []PackageInfo {
	pm := s.editor.Model()
	out := []PackageInfo{}
	for row := range pm.RowCount(model.Index{}) {
		idx := pm.Index(row, 0, model.Index{})
		pkg, ok := pm.Data(idx, tree.RoleObject).(*domain.Package)
		if !ok {
			continue
		}
		out = append(out, PackageInfo{
			Name:    pm.PathOf(idx),
			File:    pkg.File,
			Changed: idx.Node().IsChanged(),
		})
	}
	return out
}

// Open opens the package file at path.
func (s *Session) Open(path string) (PackageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editor.Open(path)
	if err != nil {
		return PackageInfo{}, err
	}
	return s.info(idx), nil
}

// Create writes an empty package to path and opens it.
func (s *Session) Create(path string) (PackageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editor.NewPackage(path)
	if err != nil {
		return PackageInfo{}, err
	}
	return s.info(idx), nil
}

func (s *Session) info(idx model.Index) PackageInfo {
	pm := s.editor.Model()
	pkg := pm.Data(idx, tree.RoleObject).(*domain.Package)
	return PackageInfo{Name: pm.PathOf(idx), File: pkg.File, Changed: idx.Node().IsChanged()}
}

// Save writes the package named by item back to its file. An empty item
// saves every package.
func (s *Session) Save(item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item == "" {
		return s.editor.SaveAll()
	}
	idx, err := s.editor.Model().Resolve(item)
	if err != nil {
		return err
	}
	return s.editor.Save(idx)
}

// SaveAs writes the package named by item to path.
func (s *Session) SaveAs(item, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editor.Model().Resolve(item)
	if err != nil {
		return err
	}
	return s.editor.SaveAs(idx, path)
}

// Close removes the package named by item from the view.
func (s *Session) Close(item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editor.Model().Resolve(item)
	if err != nil {
		return err
	}
	return s.editor.Close(idx)
}

// Push stores the package named by item under name.
func (s *Session) Push(ctx context.Context, item, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editor.Model().Resolve(item)
	if err != nil {
		return err
	}
	return s.editor.Push(ctx, idx, name)
}

// Pull loads the package stored under name.
func (s *Session) Pull(ctx context.Context, name string) (PackageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editor.Pull(ctx, name)
	if err != nil {
		return PackageInfo{}, err
	}
	return s.info(idx), nil
}

// resolve returns the model and index a target names.
func (s *Session) resolve(t Target) (*model.Model, model.Index, error) {
	pm := s.editor.Model()
	idx, err := pm.Resolve(t.Item)
	if err != nil {
		return nil, model.Index{}, err
	}
	if t.Path == "" {
		return pm, idx, nil
	}
	detail, err := s.editor.Detail(idx)
	if err != nil {
		return nil, model.Index{}, err
	}
	row, err := detail.Resolve(t.Path)
	if err != nil {
		return nil, model.Index{}, err
	}
	return detail, row, nil
}

// Get returns the row under t and its descendants up to depth levels.
func (s *Session) Get(t Target, depth int) (NodeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, idx, err := s.resolve(t)
	if err != nil {
		return NodeView{}, err
	}
	return s.view(m, idx, depth), nil
}

func (s *Session) view(m *model.Model, idx model.Index, depth int) NodeView {
	v := NodeView{
		Path:        m.PathOf(idx),
		HasChildren: m.HasChildren(idx),
	}
	if idx.IsValid() {
		v.Name, _ = m.Data(idx, tree.RoleName).(string)
		v.Value, _ = m.Data(idx.Sibling(tree.ColumnValue), tree.RoleDisplay).(string)
		v.Type, _ = m.Data(idx.Sibling(tree.ColumnType), tree.RoleDisplay).(string)
		v.TypeHint, _ = m.Data(idx.Sibling(tree.ColumnTypeHint), tree.RoleDisplay).(string)
		v.TypeOK, _ = m.Data(idx, tree.RoleTypeCheck).(bool)
		v.IsLink, _ = m.Data(idx, tree.RoleIsLink).(bool)
		v.Changed, _ = m.Data(idx, tree.RoleIsChanged).(bool)
		v.New, _ = m.Data(idx, tree.RoleIsNew).(bool)
		if v.IsLink {
			if linked := m.LinkedItem(idx); linked.IsValid() {
				v.Linked = s.editor.Model().PathOf(linked)
			}
		}
	}
	if depth > 0 {
		for row := range m.RowCount(idx) {
			v.Children = append(v.Children, s.view(m, m.Index(row, 0, idx), depth-1))
		}
	}
	return v
}

// Set parses text against the current value under t and stores the result.
func (s *Session) Set(t Target, text string) (NodeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, idx, err := s.resolve(t)
	if err != nil {
		return NodeView{}, err
	}
	value, err := dto.ParseLiteral(text, m.Data(idx, tree.RoleObject))
	if err != nil {
		return NodeView{}, err
	}
	if err := m.SetValue(idx, value); err != nil {
		return NodeView{}, fmt.Errorf("failed to set %s: %w", t, err)
	}
	s.logger.Debug("Value set", "target", t.String())
	return s.view(m, idx, 0), nil
}

// Add parses text and inserts the value under t.
func (s *Session) Add(t Target, text string) (NodeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, idx, err := s.resolve(t)
	if err != nil {
		return NodeView{}, err
	}
	value, err := dto.ParseLiteral(text, nil)
	if err != nil {
		return NodeView{}, err
	}
	added, err := m.Add(value, idx)
	if err != nil {
		return NodeView{}, fmt.Errorf("failed to add to %s: %w", t, err)
	}
	s.logger.Debug("Value added", "target", t.String())
	return s.view(m, added, 0), nil
}

// Clear removes the row under t, or resets it when it is an attribute.
func (s *Session) Clear(t Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, idx, err := s.resolve(t)
	if err != nil {
		return err
	}
	if err := m.Clear(idx); err != nil {
		return fmt.Errorf("failed to clear %s: %w", t, err)
	}
	s.logger.Debug("Row cleared", "target", t.String())
	return nil
}

// Undo reverts the latest edit of the package view, or of the detail model of
// t.Item when t.Path is set. It reports false when nothing was undone.
func (s *Session) Undo(t Target) (bool, error) {
	return s.step(t, (*model.Model).Undo)
}

// Redo reapplies the latest undone edit.
func (s *Session) Redo(t Target) (bool, error) {
	return s.step(t, (*model.Model).Redo)
}

func (s *Session) step(t Target, fn func(*model.Model) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.stackOf(t)
	if err != nil {
		return false, err
	}
	return fn(m), nil
}

// History reports the stack sizes addressed by t.
func (s *Session) History(t Target) (History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.stackOf(t)
	if err != nil {
		return History{}, err
	}
	return History{Undo: m.UndoLen(), Redo: m.RedoLen()}, nil
}

func (s *Session) stackOf(t Target) (*model.Model, error) {
	if t.Path == "" {
		return s.editor.Model(), nil
	}
	idx, err := s.editor.Model().Resolve(t.Item)
	if err != nil {
		return nil, err
	}
	return s.editor.Detail(idx)
}

// Find walks the rows under t up to depth levels and returns those whose
// name contains query, ignoring case. A zero limit is unbounded.
func (s *Session) Find(t Target, query string, depth, limit int) ([]NodeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, start, err := s.resolve(t)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	out := []NodeView{}
	var walk func(parent model.Index, level int) bool
	walk = func(parent model.Index, level int) bool {
		if level > depth {
			return true
		}
		for row := range m.RowCount(parent) {
			idx := m.Index(row, 0, parent)
			name, _ := m.Data(idx, tree.RoleName).(string)
			if strings.Contains(strings.ToLower(name), query) {
				out = append(out, s.view(m, idx, 0))
				if limit > 0 && len(out) == limit {
					return false
				}
			}
			if !walk(idx, level+1) {
				return false
			}
		}
		return true
	}
	walk(start, 1)
	return out, nil
}

// Graph renders the package named by item as a Mermaid flowchart. Objects
// with unsaved edits are highlighted, and focus, when set, names the
// identifier to emphasize.
func (s *Session) Graph(item, focus string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pm := s.editor.Model()
	idx, err := pm.Resolve(item)
	if err != nil {
		return "", err
	}
	pkgItem, err := s.editor.PackageItem(idx)
	if err != nil {
		return "", err
	}
	pkg := pm.Data(pkgItem, tree.RoleObject).(*domain.Package)

	overlay := &graph.GraphOverlay{Focus: focus}
	for row := range pm.RowCount(pkgItem) {
		attr := pm.Index(row, 0, pkgItem)
		for r := range pm.RowCount(attr) {
			child := pm.Index(r, 0, attr)
			obj, ok := pm.Data(child, tree.RoleObject).(domain.Identifiable)
			if ok && child.Node().IsChanged() {
				overlay.Changed = append(overlay.Changed, obj.Identifier())
			}
		}
	}
	return graph.GenerateMermaid(pkg, overlay), nil
}
