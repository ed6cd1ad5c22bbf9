package domain

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mohae/deepcopy"
)

// ObjectStore holds the identifiable objects of a package in insertion order.
// Identifiers are looked up on the live objects, so editing an id takes
// effect immediately.
type ObjectStore struct {
	items []any
}

// NewObjectStore creates an empty store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{}
}

func (s *ObjectStore) Len() int { return len(s.items) }

func (s *ObjectStore) Items() []any { return append([]any(nil), s.items...) }

// Get returns the object with the given identifier.
func (s *ObjectStore) Get(id string) (Identifiable, bool) {
	for _, it := range s.items {
		if obj, ok := it.(Identifiable); ok && obj.Identifier() == id {
			return obj, true
		}
	}
	return nil, false
}

func (s *ObjectStore) IndexOf(v any) int { return indexOf(s.items, v) }

func (s *ObjectStore) Add(v any) error { return s.InsertAt(-1, v) }

func (s *ObjectStore) InsertAt(i int, v any) error {
	obj, ok := v.(Identifiable)
	if !ok {
		return fmt.Errorf("%w: %T is not identifiable", ErrUnsupportedParent, v)
	}
	if _, dup := s.Get(obj.Identifier()); dup {
		return fmt.Errorf("%w: identifier %q", ErrDuplicate, obj.Identifier())
	}
	if i < 0 || i >= len(s.items) {
		s.items = append(s.items, v)
		return nil
	}
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = v
	return nil
}

func (s *ObjectStore) Replace(old, repl any) error {
	i := s.IndexOf(old)
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrNotFound, old)
	}
	obj, ok := repl.(Identifiable)
	if !ok {
		return fmt.Errorf("%w: %T is not identifiable", ErrCoercion, repl)
	}
	if cur, dup := s.Get(obj.Identifier()); dup && !Same(cur, old) {
		return fmt.Errorf("%w: identifier %q", ErrDuplicate, obj.Identifier())
	}
	s.items[i] = repl
	return nil
}

func (s *ObjectStore) Discard(v any) bool {
	i := s.IndexOf(v)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// DeepCopy satisfies deepcopy.Interface.
func (s *ObjectStore) DeepCopy() interface{} {
	return &ObjectStore{items: copyItems(s.items)}
}

// FileEntry is the content of one supplementary file.
type FileEntry struct {
	ContentType string
	Data        []byte
}

// FileContainer holds the supplementary files of a package.
type FileContainer struct {
	names []string
	files map[string]FileEntry
}

// NewFileContainer creates an empty container.
func NewFileContainer() *FileContainer {
	return &FileContainer{files: make(map[string]FileEntry)}
}

func (c *FileContainer) Len() int { return len(c.names) }

// Names returns file names in insertion order.
func (c *FileContainer) Names() []string { return append([]string(nil), c.names...) }

// Add stores or replaces a file.
func (c *FileContainer) Add(name, contentType string, data []byte) {
	if _, ok := c.files[name]; !ok {
		c.names = append(c.names, name)
	}
	c.files[name] = FileEntry{ContentType: contentType, Data: append([]byte(nil), data...)}
}

func (c *FileContainer) Get(name string) (FileEntry, bool) {
	e, ok := c.files[name]
	return e, ok
}

func (c *FileContainer) Remove(name string) bool {
	if _, ok := c.files[name]; !ok {
		return false
	}
	delete(c.files, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	return true
}

func (c *FileContainer) DeepCopy() interface{} {
	cp := NewFileContainer()
	for _, name := range c.names {
		e := c.files[name]
		cp.Add(name, e.ContentType, e.Data)
	}
	return cp
}

// StoredFile is a view of one supplementary file.
type StoredFile struct {
	Name      string         `json:"name"`
	Container *FileContainer `json:"-"`
}

func (f StoredFile) ContentType() string {
	e, _ := f.Container.Get(f.Name)
	return e.ContentType
}

func (f StoredFile) Size() int {
	e, _ := f.Container.Get(f.Name)
	return len(e.Data)
}

func (f StoredFile) String() string { return f.Name }

// Package is an opened document: an object store plus supplementary files.
type Package struct {
	Name     string
	File     string
	ObjStore *ObjectStore
	Files    *FileContainer
}

// NewPackage creates an empty, unsaved package.
func NewPackage(name string) *Package {
	return &Package{Name: name, ObjStore: NewObjectStore(), Files: NewFileContainer()}
}

// Add registers an identifiable object.
func (p *Package) Add(v any) error { return p.ObjStore.Add(v) }

// Insert registers an identifiable object at position i of the store.
func (p *Package) Insert(i int, v any) error { return p.ObjStore.InsertAt(i, v) }

// AddableAttrs lists the package attributes that accept new objects.
func (p *Package) AddableAttrs() []string {
	return []string{"shells", "assets", "submodels", "concept_descriptions"}
}

func (p *Package) Shells() []*Shell                           { return itemsOf[*Shell](p.ObjStore) }
func (p *Package) Assets() []*Asset                           { return itemsOf[*Asset](p.ObjStore) }
func (p *Package) Submodels() []*Submodel                     { return itemsOf[*Submodel](p.ObjStore) }
func (p *Package) ConceptDescriptions() []*ConceptDescription { return itemsOf[*ConceptDescription](p.ObjStore) }

// Clone returns a deep copy sharing no objects with p.
func (p *Package) Clone() *Package { return deepcopy.Copy(p).(*Package) }

// SupplementaryFiles returns the file container.
func (p *Package) SupplementaryFiles() *FileContainer { return p.Files }

func (p *Package) String() string {
	if p.Name != "" {
		return p.Name
	}
	if p.File != "" {
		return strings.TrimSuffix(filepath.Base(p.File), filepath.Ext(p.File))
	}
	return "new package"
}

func itemsOf[T any](s *ObjectStore) []T {
	var out []T
	for _, it := range s.items {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
