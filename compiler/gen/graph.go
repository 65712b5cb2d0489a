package gen

import (
	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

// Graph holds everything one generation run produced from a schema:
// the catalog closure, the frozen derived types, the alias table and
// the per-property compiled expressions for both targets. It is owned
// by a single run and discarded afterwards; independent runs never
// share state.
type Graph struct {
	Config *Config
	Schema *load.Schema
	// Types is the minimal catalog closure required by the schema.
	Types []*CatalogType
	// Enums are the closed enumerations reachable from the closure.
	Enums []*EnumType
	// Derived are the types synthesized for entity names absent from
	// the catalog, frozen after the whole property list was seen.
	Derived []*DerivedType
	// Aliases maps catalog and derived type names to display names.
	Aliases *AliasTable
	// Properties are the compiled schema properties in schema order.
	Properties []*CompiledProperty

	types TypeMap
}

// CompiledProperty is one schema property with its resolved type
// descriptor and the compiled expression per target language.
type CompiledProperty struct {
	Property   *load.Property
	Descriptor *Descriptor
	// EntityType is the resolved entity type name; empty for plain
	// properties and for the well-known identity reference.
	EntityType string
	// Expressions holds one opaque source-text fragment per target,
	// spliced verbatim into the per-property transform function.
	Expressions map[Target]string
}

// NewGraph runs the whole pipeline: derived-type synthesis over the
// entire property list, catalog closure, alias table construction and
// expression compilation. Synthesis must complete before any
// expression is compiled because derived types accumulate fields
// across properties.
func NewGraph(c *Config, s *load.Schema) (*Graph, error) {
	if c == nil {
		c = &Config{}
	}
	if s == nil {
		return nil, NewConfigError("Schema", nil, "missing schema")
	}
	g := &Graph{Config: c, Schema: s}

	// Phase 1: walk the whole property list, seeding the catalog
	// closure and synthesizing derived types.
	ctx := NewSynthesisContext()
	seeds := []string{rootFacetType}
	seen := map[string]struct{}{rootFacetType: {}}
	seed := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			seeds = append(seeds, name)
		}
	}
	for _, p := range s.Properties {
		for _, label := range p.Labels {
			if ct, ok := CatalogTypeByLabel(label); ok {
				seed(ct.Name)
			}
		}
		if p.Entity == nil || p.Entity.Name == identityTypeName {
			continue
		}
		if name, ok := catalogEntityName(p.Entity.Name); ok {
			seed(name)
			continue
		}
		if _, err := ctx.Synthesize(p.Entity.Name, BuildPathTree(p.Entity.Fields)); err != nil {
			return nil, NewSchemaError(p.Name, p.Entity.Name, "synthesizing derived type", err)
		}
	}
	g.Derived = ctx.Freeze()

	var err error
	if g.Types, g.Enums, err = Closure(seeds); err != nil {
		return nil, err
	}
	g.Aliases = NewAliasTable(g.Types, g.Derived)
	g.types = buildTypeMap(g.Types, g.Derived)

	// Phase 2: resolve descriptors and compile expressions, both
	// targets per property so the emitted declaration sets and the
	// expressions always agree.
	for _, p := range s.Properties {
		cp := &CompiledProperty{Property: p, Expressions: make(map[Target]string, 2)}
		if cp.Descriptor, err = ResolveDescriptor(p.Type, g.Aliases); err != nil {
			return nil, NewSchemaError(p.Name, "", "resolving declared type", err)
		}
		if p.Entity != nil && p.Entity.Name != identityTypeName {
			if name, ok := catalogEntityName(p.Entity.Name); ok {
				cp.EntityType = name
			} else {
				cp.EntityType = pascal(p.Entity.Name)
			}
		}
		for _, t := range []Target{TypeScript, CSharp} {
			cp.Expressions[t] = g.compile(cp, Profile(t))
		}
		g.Properties = append(g.Properties, cp)
	}
	return g, nil
}

// compile renders one property's construction expression for one target.
func (g *Graph) compile(cp *CompiledProperty, p *TargetProfile) string {
	prop := cp.Property
	wrap := func(expr string) string { return p.Validate(expr, prop.Validation) }
	switch {
	case prop.Entity == nil:
		if prop.Source.IsNone() {
			return p.NoValue + " /* TODO: map or implement this source */"
		}
		if cp.Descriptor.IsCollection {
			return p.Split(wrap(readSource(prop.Source, p)))
		}
		return wrap(readSource(prop.Source, p))
	case prop.Entity.Name == identityTypeName:
		if cp.Descriptor.IsCollection {
			return CompilePrincipalCollection(prop.Entity.Fields, prop.Source, wrap, p)
		}
		return CompilePrincipal(prop.Entity.Fields, prop.Source, wrap, p)
	default:
		typ := g.types[cp.EntityType] // nil means untyped rendering
		if cp.Descriptor.IsCollection {
			return CompileEntityCollection(prop.Entity.Fields, wrap, typ, g.types, p)
		}
		return CompileEntity(prop.Entity.Fields, wrap, typ, g.types, p)
	}
}

// TypeInfo returns the unified view of a catalog or derived type.
func (g *Graph) TypeInfo(name string) (*TypeInfo, bool) {
	t, ok := g.types[name]
	return t, ok
}

// catalogEntityName resolves an entity mapping name against the
// catalog: the name may be a catalog type name or a supported label.
func catalogEntityName(name string) (string, bool) {
	if _, ok := catalogTypes[name]; ok {
		return name, true
	}
	if t, ok := CatalogTypeByLabel(name); ok {
		return t.Name, true
	}
	return "", false
}
