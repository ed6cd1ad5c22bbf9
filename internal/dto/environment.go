// Package dto holds the serialized shape of a package. The same structs are
// used for JSON, YAML (decoded through mapstructure) and XML.
package dto

import "encoding/xml"

// Environment is the document root of a serialized package.
type Environment struct {
	XMLName             xml.Name             `json:"-" yaml:"-" mapstructure:"-" xml:"environment"`
	Shells              []Shell              `json:"assetAdministrationShells,omitempty" yaml:"assetAdministrationShells,omitempty" mapstructure:"assetAdministrationShells" xml:"assetAdministrationShells>assetAdministrationShell"`
	Assets              []Asset              `json:"assets,omitempty" yaml:"assets,omitempty" mapstructure:"assets" xml:"assets>asset"`
	Submodels           []Submodel           `json:"submodels,omitempty" yaml:"submodels,omitempty" mapstructure:"submodels" xml:"submodels>submodel"`
	ConceptDescriptions []ConceptDescription `json:"conceptDescriptions,omitempty" yaml:"conceptDescriptions,omitempty" mapstructure:"conceptDescriptions" xml:"conceptDescriptions>conceptDescription"`
	// Files are embedded supplementary files. Archives store them as parts instead.
	Files []File `json:"files,omitempty" yaml:"files,omitempty" mapstructure:"files" xml:"files>file"`
}

// Key is one step of a reference.
type Key struct {
	Type  string `json:"type" yaml:"type" mapstructure:"type" xml:"type,attr"`
	Value string `json:"value" yaml:"value" mapstructure:"value" xml:",chardata"`
	Local bool   `json:"local,omitempty" yaml:"local,omitempty" mapstructure:"local" xml:"local,attr,omitempty"`
}

type Reference struct {
	Keys []Key `json:"keys" yaml:"keys" mapstructure:"keys" xml:"keys>key"`
}

// LangString is one entry of a multi-language description.
type LangString struct {
	Language string `json:"language" yaml:"language" mapstructure:"language" xml:"lang,attr"`
	Text     string `json:"text" yaml:"text" mapstructure:"text" xml:",chardata"`
}

type Shell struct {
	ID          string       `json:"id" yaml:"id" mapstructure:"id" xml:"id"`
	IDShort     string       `json:"idShort" yaml:"idShort" mapstructure:"idShort" xml:"idShort"`
	Description []LangString `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description" xml:"description>langString,omitempty"`
	Asset       *Reference   `json:"asset,omitempty" yaml:"asset,omitempty" mapstructure:"asset" xml:"asset,omitempty"`
	DerivedFrom *Reference   `json:"derivedFrom,omitempty" yaml:"derivedFrom,omitempty" mapstructure:"derivedFrom" xml:"derivedFrom,omitempty"`
	Submodels   []Reference  `json:"submodels,omitempty" yaml:"submodels,omitempty" mapstructure:"submodels" xml:"submodelRefs>submodelRef,omitempty"`
}

type Asset struct {
	ID          string       `json:"id" yaml:"id" mapstructure:"id" xml:"id"`
	IDShort     string       `json:"idShort" yaml:"idShort" mapstructure:"idShort" xml:"idShort"`
	Kind        string       `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind" xml:"kind,omitempty"`
	Description []LangString `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description" xml:"description>langString,omitempty"`
}

type Submodel struct {
	ID          string       `json:"id" yaml:"id" mapstructure:"id" xml:"id"`
	IDShort     string       `json:"idShort" yaml:"idShort" mapstructure:"idShort" xml:"idShort"`
	Description []LangString `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description" xml:"description>langString,omitempty"`
	SemanticID  *Reference   `json:"semanticId,omitempty" yaml:"semanticId,omitempty" mapstructure:"semanticId" xml:"semanticId,omitempty"`
	Elements    []Element    `json:"submodelElements,omitempty" yaml:"submodelElements,omitempty" mapstructure:"submodelElements" xml:"submodelElements>submodelElement,omitempty"`
}

type ConceptDescription struct {
	ID          string       `json:"id" yaml:"id" mapstructure:"id" xml:"id"`
	IDShort     string       `json:"idShort" yaml:"idShort" mapstructure:"idShort" xml:"idShort"`
	Description []LangString `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description" xml:"description>langString,omitempty"`
	IsCaseOf    []Reference  `json:"isCaseOf,omitempty" yaml:"isCaseOf,omitempty" mapstructure:"isCaseOf" xml:"isCaseOf>reference,omitempty"`
}

// Element model types.
const (
	ModelProperty         = "Property"
	ModelCollection       = "SubmodelElementCollection"
	ModelReferenceElement = "ReferenceElement"
)

// Element is a submodel element discriminated by ModelType. Value holds the
// lexical value of a property, Elements the members of a collection and
// Reference the target of a reference element.
type Element struct {
	ModelType  string     `json:"modelType" yaml:"modelType" mapstructure:"modelType" xml:"modelType,attr"`
	IDShort    string     `json:"idShort" yaml:"idShort" mapstructure:"idShort" xml:"idShort"`
	Category   string     `json:"category,omitempty" yaml:"category,omitempty" mapstructure:"category" xml:"category,omitempty"`
	SemanticID *Reference `json:"semanticId,omitempty" yaml:"semanticId,omitempty" mapstructure:"semanticId" xml:"semanticId,omitempty"`
	ValueType  string     `json:"valueType,omitempty" yaml:"valueType,omitempty" mapstructure:"valueType" xml:"valueType,omitempty"`
	Value      *string    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value" xml:"value,omitempty"`
	Ordered    bool       `json:"ordered,omitempty" yaml:"ordered,omitempty" mapstructure:"ordered" xml:"ordered,omitempty"`
	Elements   []Element  `json:"elements,omitempty" yaml:"elements,omitempty" mapstructure:"elements" xml:"elements>submodelElement,omitempty"`
	Reference  *Reference `json:"reference,omitempty" yaml:"reference,omitempty" mapstructure:"reference" xml:"reference,omitempty"`
}

// File is a supplementary file with base64 content.
type File struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name" xml:"name,attr"`
	ContentType string `json:"contentType" yaml:"contentType" mapstructure:"contentType" xml:"contentType,attr"`
	Data        string `json:"data" yaml:"data" mapstructure:"data" xml:",chardata"`
}
