package registry

import (
	"reflect"
	"sync"
)

// ClassInfo describes how the tree presents and edits values of one Go type.
type ClassInfo struct {
	// DetailAttrs lists the attributes shown as children in the nested view.
	// When empty, every exported field is shown.
	DetailAttrs []string
	// PackViewAttrs lists the attributes shown as children in the package view.
	PackViewAttrs []string
	// SnapshotAttrs are PackViewAttrs whose value is a computed snapshot.
	// Their nodes hold SnapshotOwner instead, so edits reach the live container.
	SnapshotAttrs []string
	SnapshotOwner string
	// RedirectAttr names the member container that receives edits aimed at elements of this type.
	RedirectAttr string
	// ExcludedAttrs are never shown, whether attributes come from DetailAttrs or reflection.
	ExcludedAttrs []string
	// NoPopulate marks leaf types that must never be expanded.
	NoPopulate bool
}

// Registry manages the per-type presentation rules.
type Registry struct {
	mu      sync.RWMutex
	classes map[reflect.Type]ClassInfo
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[reflect.Type]ClassInfo),
	}
}

// Register sets the rules for a type.
// If rules for the same type exist, they are overwritten.
func (r *Registry) Register(t reflect.Type, info ClassInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[t] = info
}

// Set registers info for the type parameter.
func Set[T any](r *Registry, info ClassInfo) {
	r.Register(reflect.TypeFor[T](), info)
}

// Lookup returns the rules for the dynamic type of v.
// A pointer type falls back to the rules of its element type.
func (r *Registry) Lookup(v any) (ClassInfo, bool) {
	if r == nil || v == nil {
		return ClassInfo{}, false
	}
	t := reflect.TypeOf(v)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info, ok := r.classes[t]; ok {
		return info, true
	}
	if t.Kind() == reflect.Pointer {
		info, ok := r.classes[t.Elem()]
		return info, ok
	}
	return ClassInfo{}, false
}

// DetailAttrs returns the nested-view attributes registered for v.
func (r *Registry) DetailAttrs(v any) []string {
	info, _ := r.Lookup(v)
	return info.DetailAttrs
}

// PackViewAttrs returns the package-view attributes registered for v.
func (r *Registry) PackViewAttrs(v any) []string {
	info, _ := r.Lookup(v)
	return info.PackViewAttrs
}

// RedirectAttr returns the member container receiving edits for elements of v.
func (r *Registry) RedirectAttr(v any) string {
	info, _ := r.Lookup(v)
	return info.RedirectAttr
}

// ExcludedAttrs returns the attributes hidden for v.
func (r *Registry) ExcludedAttrs(v any) []string {
	info, _ := r.Lookup(v)
	return info.ExcludedAttrs
}

// NoPopulate reports whether v must never be expanded.
func (r *Registry) NoPopulate(v any) bool {
	info, _ := r.Lookup(v)
	return info.NoPopulate
}
