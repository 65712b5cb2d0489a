package gen

import (
	"strconv"
	"strings"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

// DerivedType is a composite type inferred purely from the shape of
// one or more entity mappings. It is mutable while synthesis runs
// (fields accumulate across properties referencing the same entity
// name) and frozen once the whole property list has been seen.
type DerivedType struct {
	Name   string          `msgpack:"name"`
	Fields []*DerivedField `msgpack:"fields"`

	vars map[string]int // identifier collision counters
}

// DerivedField is one synthesized field of a derived type.
type DerivedField struct {
	// Name is the original mapping key (tree segment).
	Name string `msgpack:"name"`
	// VarName is the sanitized identifier used in typed construction,
	// suffixed with a counter on collision.
	VarName string `msgpack:"varName"`
	// TypeRef follows the declared-type grammar: "String" for leaves,
	// "Composite.<name>" for subtrees.
	TypeRef string `msgpack:"typeRef"`
	// Collection marks a leaf backed by a multi-valued source.
	Collection bool `msgpack:"collection"`
}

// field returns the field with the given mapping key, if present.
func (t *DerivedType) field(name string) *DerivedField {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// varName reserves a collision-free identifier for a mapping key.
func (t *DerivedType) varName(key string) string {
	if t.vars == nil {
		t.vars = make(map[string]int)
	}
	name := ident(key)
	t.vars[name]++
	if n := t.vars[name]; n > 1 {
		return name + strconv.Itoa(n)
	}
	return name
}

// SynthesisContext owns the derived types accumulated across one
// generation run. It is threaded through the property loop and frozen
// before any expression is compiled; it is never shared between runs.
type SynthesisContext struct {
	types  map[string]*DerivedType
	order  []string
	frozen bool
}

// NewSynthesisContext creates an empty synthesis context.
func NewSynthesisContext() *SynthesisContext {
	return &SynthesisContext{types: make(map[string]*DerivedType)}
}

// Synthesize creates or merges the derived type for an entity name
// from the shape of a path tree. It is idempotent and cumulative:
//
//   - a top-level leaf becomes a scalar field;
//   - a top-level subtree becomes a field typed as a new derived type,
//     recursively synthesized under a deterministic composite name
//     (parent name + pascal-cased segment);
//   - on a later call for the same name, keys not yet present are
//     added, and a key that already exists as a subtree is passed back
//     into synthesis for its existing nested type name so sibling
//     properties contribute fields to one shared nested type.
//
// An entity referenced with zero fields still produces a degenerate
// empty derived type so downstream code stays uniform.
func (c *SynthesisContext) Synthesize(entityName string, tree *PathTree) (*DerivedType, error) {
	if c.frozen {
		return nil, NewSchemaError("", entityName, "derived type synthesis already finalized", nil)
	}
	return c.synthesize(pascal(entityName), tree), nil
}

func (c *SynthesisContext) synthesize(typeName string, tree *PathTree) *DerivedType {
	t, ok := c.types[typeName]
	if !ok {
		t = &DerivedType{Name: typeName}
		c.types[typeName] = t
		c.order = append(c.order, typeName)
	}
	for _, key := range tree.Keys() {
		node := tree.Get(key)
		existing := t.field(key)
		switch {
		case node.IsLeaf():
			if existing != nil {
				// Later leaves never overwrite an established field.
				continue
			}
			t.Fields = append(t.Fields, &DerivedField{
				Name:       key,
				VarName:    t.varName(key),
				TypeRef:    "String",
				Collection: multiValued(node.Leaf),
			})
		case existing != nil:
			// Merge into the already-existing nested type.
			ref := parseTypeRef(existing.TypeRef)
			if ref.Composite {
				c.synthesize(ref.Name, node.Children)
			}
		default:
			child := c.synthesize(t.Name+pascal(key), node.Children)
			t.Fields = append(t.Fields, &DerivedField{
				Name:    key,
				VarName: t.varName(key),
				TypeRef: compositePrefix + child.Name,
			})
		}
	}
	return t
}

// Freeze finalizes synthesis and returns the derived types in creation
// order. Any further Synthesize call fails.
func (c *SynthesisContext) Freeze() []*DerivedType {
	c.frozen = true
	out := make([]*DerivedType, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.types[name])
	}
	return out
}

// Type returns a derived type by name.
func (c *SynthesisContext) Type(name string) (*DerivedType, bool) {
	t, ok := c.types[name]
	return t, ok
}

// multiValued reports if a leaf mapping reads a multi-valued raw field:
// a document path addressing an array wildcard.
func multiValued(f *load.FieldMapping) bool {
	return f.Source.IsPath() && strings.Contains(f.Source.Path, "[*]")
}
