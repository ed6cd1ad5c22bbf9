package dto

import (
	"fmt"
	"strings"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Top-level model types accepted by DecodeObject besides the element types.
const (
	ModelShell              = "AssetAdministrationShell"
	ModelAsset              = "Asset"
	ModelSubmodel           = "Submodel"
	ModelConceptDescription = "ConceptDescription"
)

// ParseLiteral turns edit text into a value for a row whose current value is
// like. Text for string rows is taken verbatim. Everything else is read as a
// YAML flow literal: scalars keep their YAML type, maps carrying a modelType
// become domain objects, maps with keys become references and
// {key, value} maps become mapping entries.
func ParseLiteral(text string, like any) (any, error) {
	if kv, ok := like.(domain.KeyValue); ok {
		like = kv.Value
	}
	if _, ok := like.(string); ok {
		return text, nil
	}
	var raw any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %q is not a literal: %v", domain.ErrCoercion, text, err)
	}
	return DecodeValue(raw)
}

// DecodeValue converts generic YAML/JSON data into domain values.
func DecodeValue(raw any) (any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return decodeMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			dv, err := DecodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	}
	return raw, nil
}

func decodeMap(m map[string]any) (any, error) {
	if mt, ok := m["modelType"].(string); ok {
		return DecodeObject(mt, m)
	}
	if _, ok := m["keys"]; ok && len(m) == 1 {
		var ref Reference
		if err := decodeInto(m, &ref); err != nil {
			return nil, err
		}
		return toRef(&ref), nil
	}
	if k, ok := m["key"]; ok && len(m) == 2 {
		if val, ok := m["value"]; ok {
			dv, err := DecodeValue(val)
			if err != nil {
				return nil, err
			}
			return domain.KeyValue{Key: k, Value: dv}, nil
		}
	}
	return nil, fmt.Errorf("%w: map without modelType, keys or key/value", domain.ErrCoercion)
}

// DecodeObject builds a new domain object of the given model type from its
// serialized fields.
func DecodeObject(modelType string, m map[string]any) (any, error) {
	var env Environment
	var err error
	switch modelType {
	case ModelShell:
		var s Shell
		err = decodeInto(m, &s)
		env.Shells = []Shell{s}
	case ModelAsset:
		var a Asset
		err = decodeInto(m, &a)
		env.Assets = []Asset{a}
	case ModelSubmodel:
		var s Submodel
		err = decodeInto(m, &s)
		env.Submodels = []Submodel{s}
	case ModelConceptDescription:
		var c ConceptDescription
		err = decodeInto(m, &c)
		env.ConceptDescriptions = []ConceptDescription{c}
	case ModelProperty, ModelCollection, ModelReferenceElement:
		var e Element
		if err := decodeInto(m, &e); err != nil {
			return nil, err
		}
		return toElement(e)
	default:
		return nil, fmt.Errorf("%w: model type %q", domain.ErrUnsupportedFormat, modelType)
	}
	if err != nil {
		return nil, err
	}
	pkg, err := env.ToPackage("")
	if err != nil {
		return nil, err
	}
	return pkg.ObjStore.Items()[0], nil
}

func decodeInto(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrCoercion, strings.TrimSpace(err.Error()))
	}
	return nil
}
