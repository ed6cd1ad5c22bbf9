package domain

import "fmt"

// Referable is implemented by objects carrying a short name.
type Referable interface {
	IDShortName() string
}

// Identifiable is implemented by top-level objects kept in an ObjectStore.
type Identifiable interface {
	Referable
	Identifier() string
}

// Namespace is implemented by objects whose members can be addressed by short name.
type Namespace interface {
	Element(idShort string) (any, bool)
}

// AttributeSetter lets an object validate assignments to its own attributes.
// Returning ErrUnhandledAttr hands the assignment back to the generic path.
type AttributeSetter interface {
	SetAttr(name string, value any) error
}

// AttributeChecker reports whether a value is acceptable for an attribute.
type AttributeChecker interface {
	CheckAttr(name string, value any) bool
}

// SubmodelElement is a member of a Submodel or Collection.
type SubmodelElement interface {
	Referable
	ElementKind() string
}

// AssetKind distinguishes types from instances.
type AssetKind string

const (
	AssetKindType     AssetKind = "Type"
	AssetKindInstance AssetKind = "Instance"
)

// Shell is an Asset Administration Shell.
type Shell struct {
	ID          string            `json:"id"`
	IDShort     string            `json:"id_short"`
	Description map[string]string `json:"description"`
	Asset       *Reference        `json:"asset"`
	DerivedFrom *Reference        `json:"derived_from"`
	Submodels   *Set              `json:"submodels"`
}

// NewShell creates a shell with an empty submodel reference set.
func NewShell(id, idShort string) *Shell {
	return &Shell{ID: id, IDShort: idShort, Description: map[string]string{}, Submodels: NewSet()}
}

func (s *Shell) IDShortName() string { return s.IDShort }
func (s *Shell) Identifier() string  { return s.ID }
func (s *Shell) String() string      { return fmt.Sprintf("Shell[%s]", s.IDShort) }

// Asset describes the asset a shell is about.
type Asset struct {
	ID          string            `json:"id"`
	IDShort     string            `json:"id_short"`
	Kind        AssetKind         `json:"kind"`
	Description map[string]string `json:"description"`
}

// NewAsset creates an instance asset.
func NewAsset(id, idShort string) *Asset {
	return &Asset{ID: id, IDShort: idShort, Kind: AssetKindInstance, Description: map[string]string{}}
}

func (a *Asset) IDShortName() string { return a.IDShort }
func (a *Asset) Identifier() string  { return a.ID }
func (a *Asset) String() string      { return fmt.Sprintf("Asset[%s]", a.IDShort) }

// Submodel groups submodel elements under one identifier.
type Submodel struct {
	ID          string            `json:"id"`
	IDShort     string            `json:"id_short"`
	Description map[string]string `json:"description"`
	SemanticID  *Reference        `json:"semantic_id"`
	Elements    *Set              `json:"submodel_element"`
}

// NewSubmodel creates a submodel holding elems.
func NewSubmodel(id, idShort string, elems ...SubmodelElement) *Submodel {
	sm := &Submodel{ID: id, IDShort: idShort, Description: map[string]string{}, Elements: NewSet()}
	for _, e := range elems {
		_ = sm.Elements.Add(e)
	}
	return sm
}

func (s *Submodel) IDShortName() string { return s.IDShort }
func (s *Submodel) Identifier() string  { return s.ID }
func (s *Submodel) String() string      { return fmt.Sprintf("Submodel[%s]", s.IDShort) }

func (s *Submodel) Element(idShort string) (any, bool) {
	return elementByIDShort(s.Elements, idShort)
}

// ConceptDescription defines the semantics of elements.
type ConceptDescription struct {
	ID          string            `json:"id"`
	IDShort     string            `json:"id_short"`
	Description map[string]string `json:"description"`
	IsCaseOf    *List             `json:"is_case_of"`
}

// NewConceptDescription creates a concept description without case-of references.
func NewConceptDescription(id, idShort string) *ConceptDescription {
	return &ConceptDescription{ID: id, IDShort: idShort, Description: map[string]string{}, IsCaseOf: NewList()}
}

func (c *ConceptDescription) IDShortName() string { return c.IDShort }
func (c *ConceptDescription) Identifier() string  { return c.ID }
func (c *ConceptDescription) String() string      { return fmt.Sprintf("ConceptDescription[%s]", c.IDShort) }

// Property is a typed single-valued element.
type Property struct {
	IDShort    string     `json:"id_short"`
	Category   string     `json:"category"`
	ValueType  ValueType  `json:"value_type"`
	Value      any        `json:"value"`
	SemanticID *Reference `json:"semantic_id"`
}

// NewProperty creates a property; the value is not validated.
func NewProperty(idShort string, vt ValueType, value any) *Property {
	return &Property{IDShort: idShort, ValueType: vt, Value: value}
}

func (p *Property) IDShortName() string { return p.IDShort }
func (p *Property) ElementKind() string { return "Property" }
func (p *Property) String() string      { return fmt.Sprintf("Property[%s]", p.IDShort) }

// SetAttr validates value and value_type against each other.
func (p *Property) SetAttr(name string, value any) error {
	switch name {
	case "value":
		if !p.ValueType.Accepts(value) {
			return fmt.Errorf("%w: %T is not a valid %s", ErrCoercion, value, p.ValueType)
		}
		p.Value = value
		return nil
	case "value_type":
		var vt ValueType
		switch x := value.(type) {
		case ValueType:
			vt = x
		case string:
			vt = ValueType(x)
		default:
			return fmt.Errorf("%w: %T is not a value type", ErrCoercion, value)
		}
		if !isKnownValueType(vt) {
			return fmt.Errorf("%w: unknown value type %q", ErrCoercion, vt)
		}
		p.ValueType = vt
		return nil
	}
	return ErrUnhandledAttr
}

func (p *Property) CheckAttr(name string, value any) bool {
	if name == "value" {
		return p.ValueType.Accepts(value)
	}
	return true
}

// Collection is a SubmodelElementCollection.
type Collection struct {
	IDShort    string     `json:"id_short"`
	Ordered    bool       `json:"ordered"`
	Value      *Set       `json:"value"`
	SemanticID *Reference `json:"semantic_id"`
}

// NewCollection creates a collection holding elems.
func NewCollection(idShort string, elems ...SubmodelElement) *Collection {
	c := &Collection{IDShort: idShort, Value: NewSet()}
	for _, e := range elems {
		_ = c.Value.Add(e)
	}
	return c
}

func (c *Collection) IDShortName() string { return c.IDShort }
func (c *Collection) ElementKind() string { return "SubmodelElementCollection" }
func (c *Collection) String() string      { return fmt.Sprintf("Collection[%s]", c.IDShort) }

func (c *Collection) Element(idShort string) (any, bool) {
	return elementByIDShort(c.Value, idShort)
}

// ReferenceElement is an element whose value points to another object.
type ReferenceElement struct {
	IDShort string     `json:"id_short"`
	Value   *Reference `json:"value"`
}

// NewReferenceElement creates a reference element.
func NewReferenceElement(idShort string, ref *Reference) *ReferenceElement {
	return &ReferenceElement{IDShort: idShort, Value: ref}
}

func (r *ReferenceElement) IDShortName() string { return r.IDShort }
func (r *ReferenceElement) ElementKind() string { return "ReferenceElement" }
func (r *ReferenceElement) String() string      { return fmt.Sprintf("ReferenceElement[%s]", r.IDShort) }

func elementByIDShort(s *Set, idShort string) (any, bool) {
	if s == nil {
		return nil, false
	}
	for _, it := range s.Items() {
		if r, ok := it.(Referable); ok && r.IDShortName() == idShort {
			return it, true
		}
	}
	return nil, false
}

func isKnownValueType(vt ValueType) bool {
	for _, known := range ValueTypes {
		if known == vt {
			return true
		}
	}
	return false
}
