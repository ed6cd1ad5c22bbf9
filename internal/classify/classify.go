// Package classify decides how a value is expanded into tree children and how
// its container is mutated.
package classify

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/aretw0/aastree/internal/attr"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/registry"
)

// Shape is the structural category of a value.
type Shape int

const (
	Scalar Shape = iota
	Mapping
	Sequence
	Opaque
)

func (s Shape) String() string {
	switch s {
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	case Opaque:
		return "opaque"
	}
	return "scalar"
}

// Class is the classification of one value.
type Class struct {
	Shape Shape
	// Attrs are the attribute names of an Opaque value.
	Attrs []string
}

// Of classifies v. Values registered as NoPopulate are Scalar.
func Of(v any, reg *registry.Registry) Class {
	if v == nil || reg.NoPopulate(v) {
		return Class{Shape: Scalar}
	}
	switch v.(type) {
	case domain.Mapping:
		return Class{Shape: Mapping}
	case domain.Sequence:
		return Class{Shape: Sequence}
	case string, []byte:
		return Class{Shape: Scalar}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return Class{Shape: Mapping}
	case reflect.Slice, reflect.Array:
		return Class{Shape: Sequence}
	case reflect.Pointer:
		if rv.IsNil() {
			return Class{Shape: Scalar}
		}
		if rv.Elem().Kind() != reflect.Struct {
			return Class{Shape: Scalar}
		}
	case reflect.Struct:
	default:
		return Class{Shape: Scalar}
	}
	attrs := reg.DetailAttrs(v)
	if len(attrs) == 0 {
		attrs = attr.Names(v)
	}
	if excluded := reg.ExcludedAttrs(v); len(excluded) > 0 {
		attrs = slices.DeleteFunc(slices.Clone(attrs), func(a string) bool {
			return slices.Contains(excluded, a)
		})
	}
	if len(attrs) == 0 {
		return Class{Shape: Scalar}
	}
	return Class{Shape: Opaque, Attrs: attrs}
}

// NeverExpand reports whether v is a leaf.
func NeverExpand(v any, reg *registry.Registry) bool {
	return Of(v, reg).Shape == Scalar
}

// Container is the mutation strategy of a parent value.
type Container int

const (
	ContainerAttribute Container = iota
	ContainerList
	ContainerSet
	ContainerMapping
	ContainerAddable
)

func (c Container) String() string {
	switch c {
	case ContainerList:
		return "list"
	case ContainerSet:
		return "set"
	case ContainerMapping:
		return "mapping"
	case ContainerAddable:
		return "addable"
	}
	return "attribute"
}

// ContainerOf returns the mutation strategy for children of v.
func ContainerOf(v any) Container {
	switch v.(type) {
	case nil:
		return ContainerAttribute
	case domain.Mapping:
		return ContainerMapping
	case domain.MutableList:
		return ContainerList
	case domain.MutableSet:
		return ContainerSet
	case domain.Adder:
		return ContainerAddable
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map:
		return ContainerMapping
	case reflect.Slice:
		return ContainerList
	}
	return ContainerAttribute
}

// Items returns the elements of a Sequence value.
func Items(v any) []any {
	if s, ok := v.(domain.Sequence); ok {
		return s.Items()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Entries returns the entries of a Mapping value. Native maps are ordered by key.
func Entries(v any) []domain.KeyValue {
	if m, ok := v.(domain.Mapping); ok {
		keys := m.Keys()
		out := make([]domain.KeyValue, len(keys))
		for i, k := range keys {
			val, _ := m.Get(k)
			out[i] = domain.KeyValue{Key: k, Value: val}
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	out := make([]domain.KeyValue, len(keys))
	for i, k := range keys {
		out[i] = domain.KeyValue{Key: k.Interface(), Value: rv.MapIndex(k).Interface()}
	}
	return out
}

// ElemType returns the declared element type of a native slice or map.
func ElemType(v any) reflect.Type {
	if v == nil {
		return nil
	}
	t := reflect.TypeOf(v)
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return t.Elem()
	}
	return nil
}
