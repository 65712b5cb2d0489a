package gen

// TypeInfo is the unified compile-time view of a composite type used by
// the expression compilers, covering both catalog and derived types.
// Catalog base-type chains are flattened so property lookup sees
// inherited fields.
type TypeInfo struct {
	Name   string
	ts, cs string // per-target display names
	order  []string
	fields map[string]*TypeField
}

// TypeField is one declared property of a TypeInfo.
type TypeField struct {
	Name    string // wire/key name
	VarName string // identifier used in typed construction
	TypeRef string // declared-type grammar
}

// TypeMap indexes TypeInfo by type name.
type TypeMap map[string]*TypeInfo

// Field returns the declared property matching a mapping key: first by
// exact wire name, then by the key's sanitized identifier so mappings
// like "display name" still match "displayName".
func (t *TypeInfo) Field(key string) *TypeField {
	if f, ok := t.fields[key]; ok {
		return f
	}
	if f, ok := t.fields[ident(key)]; ok {
		return f
	}
	return nil
}

// Fields returns the declared properties in declaration order.
func (t *TypeInfo) Fields() []*TypeField {
	out := make([]*TypeField, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.fields[name])
	}
	return out
}

// display returns the type's display name for a target.
func (t *TypeInfo) display(target Target) string {
	if target == CSharp {
		return t.cs
	}
	return t.ts
}

func (t *TypeInfo) add(f *TypeField) {
	if _, ok := t.fields[f.Name]; !ok {
		t.order = append(t.order, f.Name)
	}
	t.fields[f.Name] = f
}

// buildTypeMap flattens the catalog closure and the frozen derived
// types into the lookup the expression compilers consume.
func buildTypeMap(types []*CatalogType, derived []*DerivedType) TypeMap {
	m := make(TypeMap, len(types)+len(derived))
	byName := make(map[string]*CatalogType, len(types))
	for _, ct := range types {
		byName[ct.Name] = ct
	}
	var flatten func(ti *TypeInfo, ct *CatalogType)
	flatten = func(ti *TypeInfo, ct *CatalogType) {
		if base, ok := byName[ct.Base]; ok {
			flatten(ti, base)
		}
		for _, p := range ct.Properties {
			ti.add(&TypeField{Name: p.Name, VarName: p.Name, TypeRef: p.Type})
		}
	}
	for _, ct := range types {
		ti := &TypeInfo{
			Name:   ct.Name,
			ts:     pascal(ct.Name),
			cs:     pascal(ct.Name),
			fields: make(map[string]*TypeField),
		}
		flatten(ti, ct)
		m[ct.Name] = ti
	}
	for _, dt := range derived {
		ti := &TypeInfo{
			Name:   dt.Name,
			ts:     dt.Name,
			cs:     dt.Name,
			fields: make(map[string]*TypeField),
		}
		for _, f := range dt.Fields {
			ref := f.TypeRef
			if f.Collection {
				ref = collectionOpen + ref + ")"
			}
			ti.add(&TypeField{Name: f.Name, VarName: f.VarName, TypeRef: ref})
		}
		m[dt.Name] = ti
	}
	return m
}
