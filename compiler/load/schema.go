// Package load provides the connector schema IR consumed by the code
// generator. Schemas are declared in YAML (JSON is accepted as a YAML
// subset) and describe the output properties of a connector together
// with the mapping back to the raw input fields.
package load

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format describes the shape of the raw input the connector ingests.
type Format string

const (
	// FormatRows is tabular input: each item is a flat record of
	// named columns (CSV and friends).
	FormatRows Format = "rows"
	// FormatDocument is structured input: each item is a nested
	// document addressed with dotted path expressions.
	FormatDocument Format = "document"
)

// Schema is a connector schema that was loaded from a schema file.
type Schema struct {
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Connection  Connection  `json:"connection,omitempty" yaml:"connection,omitempty"`
	Format      Format      `json:"format,omitempty" yaml:"format,omitempty"`
	Properties  []*Property `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Connection identifies the connection the generated project targets.
type Connection struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Property is one output property of the connector schema.
type Property struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Type is the declared type following the small grammar:
	// String | Boolean | Int64 | Double, Enum.<name>, Composite.<name>,
	// or Collection(X) wrapping any of the former.
	Type        string         `json:"type,omitempty" yaml:"type,omitempty"`
	Labels      []string       `json:"labels,omitempty" yaml:"labels,omitempty"`
	Searchable  bool           `json:"searchable,omitempty" yaml:"searchable,omitempty"`
	Queryable   bool           `json:"queryable,omitempty" yaml:"queryable,omitempty"`
	Retrievable bool           `json:"retrievable,omitempty" yaml:"retrievable,omitempty"`
	Refinable   bool           `json:"refinable,omitempty" yaml:"refinable,omitempty"`
	Source      *Source        `json:"source,omitempty" yaml:"source,omitempty"`
	Validation  *Validation    `json:"validation,omitempty" yaml:"validation,omitempty"`
	Entity      *EntityMapping `json:"entity,omitempty" yaml:"entity,omitempty"`
}

// Source is a reference to raw input: either a list of column
// identifiers (rows format), a single path expression (document
// format), or an explicit "no source" marker meaning the value must
// be hand-implemented downstream.
type Source struct {
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	Path    string   `json:"path,omitempty" yaml:"path,omitempty"`
	None    bool     `json:"none,omitempty" yaml:"none,omitempty"`
}

// IsNone reports if the source is the explicit "no source" marker,
// or carries neither columns nor a path.
func (s *Source) IsNone() bool {
	return s == nil || s.None || (len(s.Columns) == 0 && s.Path == "")
}

// IsRow reports if the source references row columns.
func (s *Source) IsRow() bool { return s != nil && len(s.Columns) > 0 }

// IsPath reports if the source references a document path.
func (s *Source) IsPath() bool { return s != nil && !s.IsRow() && s.Path != "" }

// EntityMapping maps one property to a nested entity value built
// from one or more raw fields. Name is the entity type name: either
// a catalog type (selected by a supported label), the well-known
// identity-reference type, or a custom name that triggers derived
// type synthesis.
type EntityMapping struct {
	Name   string          `json:"name,omitempty" yaml:"name,omitempty"`
	Fields []*FieldMapping `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldMapping binds one dotted path inside an entity to a raw source.
type FieldMapping struct {
	Path   string  `json:"path,omitempty" yaml:"path,omitempty"`
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`
}

// Validation holds the per-property value constraints threaded into
// every leaf read of the compiled expressions.
type Validation struct {
	MaxLength     int      `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	AllowedValues []string `json:"allowedValues,omitempty" yaml:"allowedValues,omitempty"`
}

// Load reads and parses a schema file.
func Load(path string) (*Schema, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: reading schema %q: %w", path, err)
	}
	return Parse(buf)
}

// Parse parses a schema from YAML or JSON bytes and checks its shape.
// Deep semantic validation (label/type compatibility, required-field
// coverage) is the validator's job and happens later.
func Parse(buf []byte) (*Schema, error) {
	s := &Schema{}
	if err := yaml.Unmarshal(buf, s); err != nil {
		return nil, fmt.Errorf("load: parsing schema: %w", err)
	}
	if s.Format == "" {
		s.Format = FormatRows
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

// check verifies the structural shape of the schema.
func (s *Schema) check() error {
	if s.Name == "" {
		return fmt.Errorf("load: schema name cannot be empty")
	}
	if s.Format != FormatRows && s.Format != FormatDocument {
		return fmt.Errorf("load: unknown input format %q", s.Format)
	}
	for _, p := range s.Properties {
		switch {
		case p.Name == "":
			return fmt.Errorf("load: property name cannot be empty")
		case p.Type == "":
			return fmt.Errorf("load: property %q is missing a declared type", p.Name)
		case p.Entity != nil && p.Entity.Name == "" && p.Entity.Fields != nil:
			return fmt.Errorf("load: property %q has an entity mapping without an entity name", p.Name)
		}
		for _, f := range p.Entity.FieldMappings() {
			if strings.Trim(f.Path, ".") == "" {
				return fmt.Errorf("load: property %q has an entity field with an empty path", p.Name)
			}
		}
	}
	return nil
}

// FieldMappings returns the entity field mappings, tolerating a nil mapping.
func (m *EntityMapping) FieldMappings() []*FieldMapping {
	if m == nil {
		return nil
	}
	return m.Fields
}
