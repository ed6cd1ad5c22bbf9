package domain

import (
	"fmt"
	"reflect"

	"github.com/mohae/deepcopy"
)

// Sequence is implemented by ordered containers whose elements are exposed as rows.
type Sequence interface {
	Len() int
	Items() []any
}

// MutableList is an index-addressed sequence.
type MutableList interface {
	Sequence
	Append(v any)
	Insert(i int, v any)
	Set(i int, v any)
	RemoveAt(i int) any
}

// MutableSet is an identity set that preserves insertion order.
// Position-aware methods exist so that removals can be undone in place.
type MutableSet interface {
	Sequence
	Add(v any) error
	InsertAt(i int, v any) error
	Replace(old, repl any) error
	Discard(v any) bool
	IndexOf(v any) int
}

// Mapping is an ordered key/value container.
type Mapping interface {
	Len() int
	Keys() []any
	Get(k any) (any, bool)
	Put(k, v any)
	InsertAt(i int, k, v any)
	Delete(k any) (any, bool)
	IndexOf(k any) int
}

// Adder is implemented by objects that accept new members but are not plain containers.
type Adder interface {
	Add(v any) error
}

// KeyValue is one entry of a Mapping as seen by the tree.
type KeyValue struct {
	Key   any `json:"key"`
	Value any `json:"value"`
}

func (kv KeyValue) String() string {
	return fmt.Sprintf("%v: %v", kv.Key, kv.Value)
}

// Same reports identity: equal pointers, or equal comparable values.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Equal reports identity first, then deep equality.
func Equal(a, b any) bool {
	if Same(a, b) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func indexOf(items []any, v any) int {
	for i, it := range items {
		if Same(it, v) {
			return i
		}
	}
	for i, it := range items {
		if reflect.DeepEqual(it, v) {
			return i
		}
	}
	return -1
}

// List is a mutable, reference-typed sequence.
type List struct {
	items []any
}

// NewList creates a list holding items.
func NewList(items ...any) *List {
	return &List{items: append([]any(nil), items...)}
}

func (l *List) Len() int { return len(l.items) }

// At returns the element at i.
func (l *List) At(i int) any { return l.items[i] }

// Items returns a copy of the elements.
func (l *List) Items() []any { return append([]any(nil), l.items...) }

func (l *List) Append(v any) { l.items = append(l.items, v) }

func (l *List) Insert(i int, v any) {
	if i < 0 || i >= len(l.items) {
		l.items = append(l.items, v)
		return
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
}

func (l *List) Set(i int, v any) { l.items[i] = v }

func (l *List) RemoveAt(i int) any {
	v := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	return v
}

// Index returns the position of v, or -1.
func (l *List) Index(v any) int { return indexOf(l.items, v) }

// DeepCopy satisfies deepcopy.Interface.
func (l *List) DeepCopy() interface{} { return &List{items: copyItems(l.items)} }

// Set is an ordered identity set.
type Set struct {
	items []any
}

// NewSet creates a set; duplicates are dropped.
func NewSet(items ...any) *Set {
	s := &Set{}
	for _, it := range items {
		_ = s.Add(it)
	}
	return s
}

func (s *Set) Len() int { return len(s.items) }

func (s *Set) Items() []any { return append([]any(nil), s.items...) }

// Contains reports whether v is a member.
func (s *Set) Contains(v any) bool { return indexOf(s.items, v) >= 0 }

func (s *Set) IndexOf(v any) int { return indexOf(s.items, v) }

func (s *Set) Add(v any) error {
	return s.InsertAt(-1, v)
}

func (s *Set) InsertAt(i int, v any) error {
	if s.Contains(v) {
		return fmt.Errorf("%w: %v", ErrDuplicate, v)
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

func (s *Set) Replace(old, repl any) error {
	i := indexOf(s.items, old)
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrNotFound, old)
	}
	if j := indexOf(s.items, repl); j >= 0 && j != i {
		return fmt.Errorf("%w: %v", ErrDuplicate, repl)
	}
	s.items[i] = repl
	return nil
}

func (s *Set) Discard(v any) bool {
	i := indexOf(s.items, v)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func (s *Set) DeepCopy() interface{} { return &Set{items: copyItems(s.items)} }

// Dict is an insertion-ordered mapping with comparable keys.
type Dict struct {
	keys []any
	vals map[any]any
}

// NewDict creates an empty dict.
func NewDict() *Dict {
	return &Dict{vals: make(map[any]any)}
}

func (d *Dict) Len() int { return len(d.keys) }

func (d *Dict) Keys() []any { return append([]any(nil), d.keys...) }

func (d *Dict) Get(k any) (any, bool) {
	v, ok := d.vals[k]
	return v, ok
}

func (d *Dict) Put(k, v any) {
	if _, ok := d.vals[k]; !ok {
		d.keys = append(d.keys, k)
	}
	d.vals[k] = v
}

func (d *Dict) InsertAt(i int, k, v any) {
	if _, ok := d.vals[k]; ok {
		d.vals[k] = v
		return
	}
	d.vals[k] = v
	if i < 0 || i >= len(d.keys) {
		d.keys = append(d.keys, k)
		return
	}
	d.keys = append(d.keys, nil)
	copy(d.keys[i+1:], d.keys[i:])
	d.keys[i] = k
}

func (d *Dict) Delete(k any) (any, bool) {
	v, ok := d.vals[k]
	if !ok {
		return nil, false
	}
	delete(d.vals, k)
	i := d.IndexOf(k)
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	return v, true
}

func (d *Dict) IndexOf(k any) int {
	for i, key := range d.keys {
		if key == k {
			return i
		}
	}
	return -1
}

func (d *Dict) DeepCopy() interface{} {
	c := NewDict()
	for _, k := range d.keys {
		c.Put(k, deepcopy.Copy(d.vals[k]))
	}
	return c
}

func copyItems(items []any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = deepcopy.Copy(it)
	}
	return out
}
