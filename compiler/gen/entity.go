package gen

import (
	"fmt"
	"strings"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

// LeafWrap wraps one raw read expression with the property's value
// validation (or is the identity when the property has none). The
// compilers invoke it at every leaf read site; nesting and
// collection-ness never bypass it.
type LeafWrap func(readExpr string) string

// scopeVar is the raw-item parameter name in generated transforms.
const scopeVar = "item"

// CompileEntity renders the construction expression of a single-valued
// entity property. With type information present the construction is
// nominally typed and keys without a matching declared property are
// dropped silently; without it an untyped structural literal is
// emitted. The constructed composite is serialized to an encoded
// string, because the enclosing storage schema has no native
// nested-object property type.
func CompileEntity(fields []*load.FieldMapping, wrap LeafWrap, typ *TypeInfo, types TypeMap, p *TargetProfile) string {
	tree := BuildPathTree(fields)
	if tree.Len() == 0 {
		return p.NoValue
	}
	return p.Encode(compileNode(tree, wrap, nil, typ, types, p))
}

// CompileEntityCollection renders the construction expression of a
// multi-valued entity property built from N potentially-independent
// multi-valued raw fields:
//
//   - no leaves: no value;
//   - one leaf with no object nesting: direct read of the one
//     multi-valued field (fast path, skips object construction);
//   - one leaf nested inside an object: read once, map every raw value
//     through the scalar construction substituting the mapped value;
//   - structured input where all leaf paths share one array-wildcard
//     prefix: iterate the underlying array once and read each leaf
//     relative to the shared prefix;
//   - otherwise: parse every leaf into its own array and zip them
//     positionally, broadcasting length-1 and empty arrays to every
//     produced index.
//
// With two or more leaves, a single shared top-level subtree is
// unwrapped first: the wrapper segment names the repeated composite,
// and the element shape is the inner object.
//
// Serialization maps over each constructed element, never the whole
// collection at once.
func CompileEntityCollection(fields []*load.FieldMapping, wrap LeafWrap, typ *TypeInfo, types TypeMap, p *TargetProfile) string {
	tree := BuildPathTree(fields)
	ls := tree.leaves()
	if len(ls) >= 2 {
		tree, typ = unwrapRoot(tree, typ, types)
		ls = tree.leaves()
	}
	switch {
	case len(ls) == 0:
		return p.NoValue
	case len(ls) == 1 && tree.Len() == 1 && tree.Get(tree.Keys()[0]).IsLeaf():
		return p.Split(leafValue(ls[0].node.Leaf.Source, wrap, p))
	case len(ls) == 1:
		arr := p.Split(leafValue(ls[0].node.Leaf.Source, wrap, p))
		elem := compileNode(tree, wrap, substOne(ls[0].node, "v"), typ, types, p)
		return p.MapOver(arr, "v", p.Encode(elem))
	}
	if prefix, rels, ok := sharedWildcardPrefix(ls); ok {
		// The input already groups the correlated fields naturally;
		// iterate the underlying array instead of zipping.
		override := make(map[*PathNode]string, len(ls))
		for i, l := range ls {
			override[l.node] = wrap(p.ReadPath("v", rels[i]))
		}
		elem := compileNode(tree, wrap, substMap(override), typ, types, p)
		return p.MapOver(p.ReadPath(scopeVar, prefix), "v", p.Encode(elem))
	}
	arrays := make([]string, len(ls))
	override := make(map[*PathNode]string, len(ls))
	for i, l := range ls {
		arrays[i] = p.Split(leafValue(l.node.Leaf.Source, wrap, p))
		override[l.node] = fmt.Sprintf("at(%d)", i)
	}
	elem := compileNode(tree, wrap, substMap(override), typ, types, p)
	return p.Zip(arrays, p.Encode(elem))
}

// compileNode renders one nested-object construction. override, when
// it matches a leaf, substitutes a pre-read value expression for that
// leaf's source read (used by the collection arms).
func compileNode(tree *PathTree, wrap LeafWrap, override func(*PathNode) (string, bool), typ *TypeInfo, types TypeMap, p *TargetProfile) string {
	value := func(n *PathNode) string {
		if override != nil {
			if e, ok := override(n); ok {
				return e
			}
		}
		return leafValue(n.Leaf.Source, wrap, p)
	}
	if typ == nil {
		pairs := make([]Pair, 0, tree.Len())
		for _, key := range tree.Keys() {
			n := tree.Get(key)
			if n.IsLeaf() {
				pairs = append(pairs, Pair{Key: key, Value: value(n)})
				continue
			}
			pairs = append(pairs, Pair{Key: key, Value: compileNode(n.Children, wrap, override, nil, types, p)})
		}
		return p.ObjectLit(pairs)
	}
	var pairs []Pair
	for _, key := range tree.Keys() {
		f := typ.Field(key)
		if f == nil {
			// Keys with no matching declared property are dropped.
			continue
		}
		n := tree.Get(key)
		if n.IsLeaf() {
			pairs = append(pairs, Pair{Key: f.VarName, Value: value(n)})
			continue
		}
		var nested *TypeInfo
		if ref := parseTypeRef(f.TypeRef); ref.Composite {
			nested = types[ref.Name]
		}
		pairs = append(pairs, Pair{Key: f.VarName, Value: compileNode(n.Children, wrap, override, nested, types, p)})
	}
	return p.TypedLit(typ.display(p.Target), pairs)
}

// leafValue renders the read-and-validate expression of one source.
// An explicit no-source marker reads nothing, so validation does not
// apply to it.
func leafValue(src *load.Source, wrap LeafWrap, p *TargetProfile) string {
	if src.IsNone() {
		return p.NoValue + " /* TODO: map or implement this source */"
	}
	return wrap(readSource(src, p))
}

// readSource renders the raw read of one source descriptor in the
// transform's item scope. A row source with several columns reads them
// as a null-coalescing chain.
func readSource(src *load.Source, p *TargetProfile) string {
	if src.IsRow() {
		expr := p.ReadColumn(scopeVar, src.Columns[0])
		for _, c := range src.Columns[1:] {
			expr = p.Coalesce(expr, p.ReadColumn(scopeVar, c))
		}
		return expr
	}
	return p.ReadPath(scopeVar, src.Path)
}

// unwrapRoot descends through a single shared top-level subtree. With
// several correlated leaves the wrapper segment denotes the repeated
// composite itself, so each produced element is the inner object, not
// an object holding the wrapper key.
func unwrapRoot(tree *PathTree, typ *TypeInfo, types TypeMap) (*PathTree, *TypeInfo) {
	for tree.Len() == 1 {
		n := tree.Get(tree.Keys()[0])
		if n.IsLeaf() {
			break
		}
		if typ != nil {
			var nested *TypeInfo
			if f := typ.Field(tree.Keys()[0]); f != nil {
				if ref := parseTypeRef(f.TypeRef); ref.Composite {
					nested = types[ref.Name]
				}
			}
			typ = nested
		}
		tree = n.Children
	}
	return tree, typ
}

// substOne substitutes a variable for exactly one leaf node.
func substOne(node *PathNode, expr string) func(*PathNode) (string, bool) {
	return func(n *PathNode) (string, bool) {
		if n == node {
			return expr, true
		}
		return "", false
	}
}

// substMap substitutes per-leaf expressions.
func substMap(m map[*PathNode]string) func(*PathNode) (string, bool) {
	return func(n *PathNode) (string, bool) {
		e, ok := m[n]
		return e, ok
	}
}

const wildcard = "[*]"

// sharedWildcardPrefix reports whether every leaf is a document path
// with one identical array-wildcard prefix, returning that prefix and
// the per-leaf relative paths.
func sharedWildcardPrefix(ls []leafRef) (string, []string, bool) {
	var prefix string
	rels := make([]string, len(ls))
	for i, l := range ls {
		src := l.node.Leaf.Source
		if !src.IsPath() {
			return "", nil, false
		}
		idx := strings.Index(src.Path, wildcard)
		if idx < 0 {
			return "", nil, false
		}
		rel := strings.TrimPrefix(src.Path[idx+len(wildcard):], ".")
		if rel == "" || strings.Contains(rel, wildcard) {
			return "", nil, false
		}
		pre := strings.TrimSuffix(src.Path[:idx], ".")
		if i == 0 {
			prefix = pre
		} else if pre != prefix {
			return "", nil, false
		}
		rels[i] = rel
	}
	return prefix, rels, true
}
