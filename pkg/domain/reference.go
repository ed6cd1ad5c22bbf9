package domain

import (
	"fmt"
	"strings"
)

// KeyType names the kind of object a key addresses.
type KeyType string

const (
	KeyShell              KeyType = "AssetAdministrationShell"
	KeyAsset              KeyType = "Asset"
	KeySubmodel           KeyType = "Submodel"
	KeyConceptDescription KeyType = "ConceptDescription"
	KeyProperty           KeyType = "Property"
	KeyCollection         KeyType = "SubmodelElementCollection"
	KeyReferenceElement   KeyType = "ReferenceElement"
)

// Key is one step of a reference.
type Key struct {
	Type  KeyType `json:"type"`
	Value string  `json:"value"`
	Local bool    `json:"local"`
}

func (k Key) String() string { return fmt.Sprintf("%s:%s", k.Type, k.Value) }

// Resolver is implemented by values that point at another object.
type Resolver interface {
	Resolve(store *ObjectStore) (any, error)
}

// Reference addresses an object through an identifier followed by short names.
type Reference struct {
	Keys []Key `json:"keys"`
}

// NewReference creates a reference from keys.
func NewReference(keys ...Key) *Reference {
	return &Reference{Keys: keys}
}

// ReferenceTo builds a reference to an identifiable object.
func ReferenceTo(obj Identifiable) *Reference {
	var kt KeyType
	switch obj.(type) {
	case *Shell:
		kt = KeyShell
	case *Asset:
		kt = KeyAsset
	case *Submodel:
		kt = KeySubmodel
	case *ConceptDescription:
		kt = KeyConceptDescription
	}
	return NewReference(Key{Type: kt, Value: obj.Identifier(), Local: true})
}

// Resolve walks the keys starting at the store.
func (r *Reference) Resolve(store *ObjectStore) (any, error) {
	if r == nil || len(r.Keys) == 0 {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: no object store", ErrNotFound)
	}
	first := r.Keys[0]
	obj, ok := store.Get(first.Value)
	if !ok {
		return nil, fmt.Errorf("%w: identifiable %q", ErrNotFound, first.Value)
	}
	var cur any = obj
	for _, k := range r.Keys[1:] {
		ns, ok := cur.(Namespace)
		if !ok {
			return nil, fmt.Errorf("%w: %v has no members", ErrNotFound, cur)
		}
		next, ok := ns.Element(k.Value)
		if !ok {
			return nil, fmt.Errorf("%w: element %q", ErrNotFound, k.Value)
		}
		cur = next
	}
	return cur, nil
}

func (r *Reference) String() string {
	if r == nil {
		return ""
	}
	parts := make([]string, len(r.Keys))
	for i, k := range r.Keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, " / ")
}
