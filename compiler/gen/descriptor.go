package gen

// Alias holds the per-target display names of one composite type.
type Alias struct {
	Name       string `msgpack:"name"`
	TypeScript string `msgpack:"typescript"`
	CSharp     string `msgpack:"csharp"`
	Derived    bool   `msgpack:"derived"`
}

// AliasTable maps catalog and derived type names to their per-target
// display names. It is built once per run after synthesis completes
// and is read-only afterwards.
type AliasTable struct {
	order   []string
	aliases map[string]Alias
}

// NewAliasTable builds the alias table from the catalog closure and
// the frozen derived types.
func NewAliasTable(types []*CatalogType, derived []*DerivedType) *AliasTable {
	t := &AliasTable{aliases: make(map[string]Alias, len(types)+len(derived))}
	for _, ct := range types {
		t.add(Alias{Name: ct.Name, TypeScript: pascal(ct.Name), CSharp: pascal(ct.Name)})
	}
	for _, dt := range derived {
		t.add(Alias{Name: dt.Name, TypeScript: dt.Name, CSharp: dt.Name, Derived: true})
	}
	return t
}

func (t *AliasTable) add(a Alias) {
	if _, ok := t.aliases[a.Name]; !ok {
		t.order = append(t.order, a.Name)
	}
	t.aliases[a.Name] = a
}

// Lookup returns the alias of a type name.
func (t *AliasTable) Lookup(name string) (Alias, bool) {
	a, ok := t.aliases[name]
	return a, ok
}

// Aliases returns all aliases in insertion order.
func (t *AliasTable) Aliases() []Alias {
	out := make([]Alias, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.aliases[name])
	}
	return out
}

// TargetType is the per-target rendering of one resolved type reference.
type TargetType struct {
	// DisplayName is the type name as written in declarations and casts.
	DisplayName string
	// Guard is a runtime type-guard expression template with one
	// %[1]s value slot.
	Guard string
	// ElementName and ElementGuard are set for collections and
	// describe the element type.
	ElementName  string
	ElementGuard string
}

// Descriptor is a declared type reference resolved for both targets.
// The two display names are always produced together so the aliasing
// stays consistent between the two emitted declaration sets.
type Descriptor struct {
	Declared     string
	IsCollection bool
	// Element is the unwrapped element reference for collections.
	Element    string
	TypeScript TargetType
	CSharp     TargetType
}

// ResolveDescriptor maps a single declared type reference to its
// per-target display names and runtime type guards. Dispatch order:
// Collection unwraps and recurses; then the string-like whitelist,
// closed enumerations, the alias table, and the scalar primitives are
// consulted in that order. Anything else is an unsupported-type error.
func ResolveDescriptor(declared string, aliases *AliasTable) (*Descriptor, error) {
	ref := parseTypeRef(declared)
	if ref.Collection {
		inner := ref.Name
		switch {
		case ref.Enum:
			inner = enumPrefix + ref.Name
		case ref.Composite:
			inner = compositePrefix + ref.Name
		}
		elem, err := ResolveDescriptor(inner, aliases)
		if err != nil {
			return nil, err
		}
		return &Descriptor{
			Declared:     declared,
			IsCollection: true,
			Element:      inner,
			TypeScript: TargetType{
				DisplayName:  elem.TypeScript.DisplayName + "[]",
				Guard:        "Array.isArray(%[1]s)",
				ElementName:  elem.TypeScript.DisplayName,
				ElementGuard: elem.TypeScript.Guard,
			},
			CSharp: TargetType{
				DisplayName:  "List<" + elem.CSharp.DisplayName + ">",
				Guard:        "%[1]s is List<" + elem.CSharp.DisplayName + ">",
				ElementName:  elem.CSharp.DisplayName,
				ElementGuard: elem.CSharp.Guard,
			},
		}, nil
	}
	d := &Descriptor{Declared: declared}
	if _, ok := opaqueTypes[ref.Name]; ok && !ref.Enum && !ref.Composite {
		// String-like opaque types resolve to the primitive string type.
		d.TypeScript = TargetType{DisplayName: "string", Guard: `typeof %[1]s === "string"`}
		d.CSharp = TargetType{DisplayName: "string", Guard: "%[1]s is string"}
		return d, nil
	}
	if e, ok := enumTypes[ref.Name]; ok && !ref.Composite {
		name := pascal(e.Name)
		d.TypeScript = TargetType{DisplayName: name, Guard: "is" + name + "(%[1]s)"}
		// C# declares enum properties as strings validated against a
		// generated value class, so unknown wire values don't throw.
		d.CSharp = TargetType{DisplayName: "string", Guard: name + "Values.IsValid(%[1]s)"}
		return d, nil
	}
	if ref.Name == identityTypeName && !ref.Enum {
		// The identity reference is not a catalog type; it has a
		// fixed shape emitted into every generated project.
		d.TypeScript = TargetType{
			DisplayName: identityDisplayName,
			Guard:       `typeof %[1]s === "object" && %[1]s !== null`,
		}
		d.CSharp = TargetType{
			DisplayName: identityDisplayName,
			Guard:       "%[1]s is " + identityDisplayName,
		}
		return d, nil
	}
	if a, ok := aliases.Lookup(ref.Name); ok && !ref.Enum {
		d.TypeScript = TargetType{
			DisplayName: a.TypeScript,
			Guard:       `typeof %[1]s === "object" && %[1]s !== null`,
		}
		d.CSharp = TargetType{
			DisplayName: a.CSharp,
			Guard:       "%[1]s is " + a.CSharp,
		}
		return d, nil
	}
	if ref.Enum || ref.Composite {
		return nil, NewUnsupportedTypeError("", declared)
	}
	switch ref.Name {
	case "String":
		d.TypeScript = TargetType{DisplayName: "string", Guard: `typeof %[1]s === "string"`}
		d.CSharp = TargetType{DisplayName: "string", Guard: "%[1]s is string"}
	case "Boolean":
		d.TypeScript = TargetType{DisplayName: "boolean", Guard: `typeof %[1]s === "boolean"`}
		d.CSharp = TargetType{DisplayName: "bool", Guard: "%[1]s is bool"}
	case "Int64":
		d.TypeScript = TargetType{DisplayName: "number", Guard: "Number.isInteger(%[1]s)"}
		d.CSharp = TargetType{DisplayName: "long", Guard: "%[1]s is long"}
	case "Double":
		d.TypeScript = TargetType{DisplayName: "number", Guard: `typeof %[1]s === "number"`}
		d.CSharp = TargetType{DisplayName: "double", Guard: "%[1]s is double"}
	default:
		return nil, NewUnsupportedTypeError("", declared)
	}
	return d, nil
}
