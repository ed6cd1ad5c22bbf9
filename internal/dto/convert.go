package dto

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/aretw0/aastree/pkg/domain"
)

// FromPackage converts a package into its serialized shape. Supplementary
// files are embedded when embedFiles is set.
func FromPackage(pkg *domain.Package, embedFiles bool) (Environment, error) {
	var env Environment
	for _, it := range pkg.ObjStore.Items() {
		switch v := it.(type) {
		case *domain.Shell:
			env.Shells = append(env.Shells, fromShell(v))
		case *domain.Asset:
			env.Assets = append(env.Assets, Asset{
				ID: v.ID, IDShort: v.IDShort, Kind: string(v.Kind), Description: fromLangs(v.Description),
			})
		case *domain.Submodel:
			elems, err := fromElements(v.Elements)
			if err != nil {
				return Environment{}, fmt.Errorf("failed to convert submodel %s: %w", v.IDShort, err)
			}
			env.Submodels = append(env.Submodels, Submodel{
				ID: v.ID, IDShort: v.IDShort, Description: fromLangs(v.Description),
				SemanticID: fromRef(v.SemanticID), Elements: elems,
			})
		case *domain.ConceptDescription:
			env.ConceptDescriptions = append(env.ConceptDescriptions, ConceptDescription{
				ID: v.ID, IDShort: v.IDShort, Description: fromLangs(v.Description),
				IsCaseOf: fromRefs(listItems(v.IsCaseOf)),
			})
		default:
			return Environment{}, fmt.Errorf("%w: %T in object store", domain.ErrUnsupportedFormat, it)
		}
	}
	if embedFiles && pkg.Files != nil {
		for _, name := range pkg.Files.Names() {
			f, _ := pkg.Files.Get(name)
			env.Files = append(env.Files, File{
				Name: name, ContentType: f.ContentType, Data: base64.StdEncoding.EncodeToString(f.Data),
			})
		}
	}
	return env, nil
}

func fromShell(s *domain.Shell) Shell {
	return Shell{
		ID: s.ID, IDShort: s.IDShort, Description: fromLangs(s.Description),
		Asset: fromRef(s.Asset), DerivedFrom: fromRef(s.DerivedFrom), Submodels: fromRefs(setItems(s.Submodels)),
	}
}

func fromLangs(m map[string]string) []LangString {
	if len(m) == 0 {
		return nil
	}
	out := make([]LangString, 0, len(m))
	for lang, text := range m {
		out = append(out, LangString{Language: lang, Text: text})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}

func fromRef(r *domain.Reference) *Reference {
	if r == nil {
		return nil
	}
	out := &Reference{Keys: make([]Key, len(r.Keys))}
	for i, k := range r.Keys {
		out.Keys[i] = Key{Type: string(k.Type), Value: k.Value, Local: k.Local}
	}
	return out
}

func setItems(s *domain.Set) []any {
	if s == nil {
		return nil
	}
	return s.Items()
}

func listItems(l *domain.List) []any {
	if l == nil {
		return nil
	}
	return l.Items()
}

func fromRefs(items []any) []Reference {
	var out []Reference
	for _, it := range items {
		if r, ok := it.(*domain.Reference); ok && r != nil {
			out = append(out, *fromRef(r))
		}
	}
	return out
}

func fromElements(s *domain.Set) ([]Element, error) {
	var out []Element
	for _, it := range setItems(s) {
		e, err := fromElement(it)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func fromElement(v any) (Element, error) {
	switch e := v.(type) {
	case *domain.Property:
		out := Element{
			ModelType: ModelProperty, IDShort: e.IDShort, Category: e.Category,
			SemanticID: fromRef(e.SemanticID), ValueType: string(e.ValueType),
		}
		if e.Value != nil {
			lexical := e.ValueType.Format(e.Value)
			out.Value = &lexical
		}
		return out, nil
	case *domain.Collection:
		members, err := fromElements(e.Value)
		if err != nil {
			return Element{}, err
		}
		return Element{
			ModelType: ModelCollection, IDShort: e.IDShort, SemanticID: fromRef(e.SemanticID),
			Ordered: e.Ordered, Elements: members,
		}, nil
	case *domain.ReferenceElement:
		return Element{ModelType: ModelReferenceElement, IDShort: e.IDShort, Reference: fromRef(e.Value)}, nil
	}
	return Element{}, fmt.Errorf("%w: submodel element %T", domain.ErrUnsupportedFormat, v)
}

// ToPackage builds a package from the serialized shape.
func (env Environment) ToPackage(name string) (*domain.Package, error) {
	pkg := domain.NewPackage(name)
	for _, s := range env.Shells {
		shell := domain.NewShell(s.ID, s.IDShort)
		shell.Description = toLangs(s.Description)
		shell.Asset = toRef(s.Asset)
		shell.DerivedFrom = toRef(s.DerivedFrom)
		for _, r := range s.Submodels {
			if err := shell.Submodels.Add(toRef(&r)); err != nil {
				return nil, fmt.Errorf("failed to add submodel reference to %s: %w", s.IDShort, err)
			}
		}
		if err := pkg.Add(shell); err != nil {
			return nil, err
		}
	}
	for _, a := range env.Assets {
		asset := domain.NewAsset(a.ID, a.IDShort)
		if a.Kind != "" {
			asset.Kind = domain.AssetKind(a.Kind)
		}
		asset.Description = toLangs(a.Description)
		if err := pkg.Add(asset); err != nil {
			return nil, err
		}
	}
	for _, s := range env.Submodels {
		sm := domain.NewSubmodel(s.ID, s.IDShort)
		sm.Description = toLangs(s.Description)
		sm.SemanticID = toRef(s.SemanticID)
		if err := toElements(sm.Elements, s.Elements); err != nil {
			return nil, fmt.Errorf("failed to convert submodel %s: %w", s.IDShort, err)
		}
		if err := pkg.Add(sm); err != nil {
			return nil, err
		}
	}
	for _, c := range env.ConceptDescriptions {
		cd := domain.NewConceptDescription(c.ID, c.IDShort)
		cd.Description = toLangs(c.Description)
		for _, r := range c.IsCaseOf {
			cd.IsCaseOf.Append(toRef(&r))
		}
		if err := pkg.Add(cd); err != nil {
			return nil, err
		}
	}
	for _, f := range env.Files {
		data, err := base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode file %s: %w", f.Name, err)
		}
		pkg.Files.Add(f.Name, f.ContentType, data)
	}
	return pkg, nil
}

func toLangs(in []LangString) map[string]string {
	out := make(map[string]string, len(in))
	for _, l := range in {
		out[l.Language] = l.Text
	}
	return out
}

func toRef(r *Reference) *domain.Reference {
	if r == nil {
		return nil
	}
	keys := make([]domain.Key, len(r.Keys))
	for i, k := range r.Keys {
		keys[i] = domain.Key{Type: domain.KeyType(k.Type), Value: k.Value, Local: k.Local}
	}
	return domain.NewReference(keys...)
}

func toElements(dst *domain.Set, in []Element) error {
	for _, e := range in {
		v, err := toElement(e)
		if err != nil {
			return err
		}
		if err := dst.Add(v); err != nil {
			return fmt.Errorf("failed to add %s: %w", e.IDShort, err)
		}
	}
	return nil
}

func toElement(e Element) (domain.SubmodelElement, error) {
	switch e.ModelType {
	case ModelProperty:
		vt := domain.ValueType(e.ValueType)
		if vt == "" {
			vt = domain.ValueTypeString
		}
		p := domain.NewProperty(e.IDShort, vt, nil)
		p.Category = e.Category
		p.SemanticID = toRef(e.SemanticID)
		if e.Value != nil {
			v, err := vt.Parse(*e.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: property %s: %v", domain.ErrCoercion, e.IDShort, err)
			}
			p.Value = v
		}
		return p, nil
	case ModelCollection:
		c := domain.NewCollection(e.IDShort)
		c.Ordered = e.Ordered
		c.SemanticID = toRef(e.SemanticID)
		if err := toElements(c.Value, e.Elements); err != nil {
			return nil, err
		}
		return c, nil
	case ModelReferenceElement:
		return domain.NewReferenceElement(e.IDShort, toRef(e.Reference)), nil
	}
	return nil, fmt.Errorf("%w: model type %q", domain.ErrUnsupportedFormat, e.ModelType)
}
