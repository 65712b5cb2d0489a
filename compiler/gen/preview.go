package gen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

// valueSeparator splits multi-valued row cells, e.g. "a;b" -> a, b.
const valueSeparator = ";"

// Preview evaluates the compiled schema against one sample raw item
// and returns an example ingestion payload, applying the exact same
// read/split/broadcast/serialize semantics the generated transforms
// implement in both target languages.
func (g *Graph) Preview(item map[string]any) map[string]any {
	props := make(map[string]any, len(g.Properties))
	for _, cp := range g.Properties {
		if v := evalProperty(cp, item); v != nil {
			props[cp.Property.Name] = v
		}
	}
	return map[string]any{
		"id":         uuid.NewString(),
		"properties": props,
	}
}

// evalProperty mirrors Graph.compile arm for arm.
func evalProperty(cp *CompiledProperty, item map[string]any) any {
	p := cp.Property
	switch {
	case p.Entity == nil:
		if p.Source.IsNone() {
			return nil
		}
		if cp.Descriptor.IsCollection {
			return anySlice(splitLeaf(p.Source, p.Validation, item))
		}
		raw := applyValidation(readValue(p.Source, item), p.Validation)
		if raw == "" {
			return nil
		}
		return raw
	case p.Entity.Name == identityTypeName:
		if cp.Descriptor.IsCollection {
			return evalPrincipalCollection(p.Entity.Fields, p.Source, p.Validation, item)
		}
		return evalPrincipal(p.Entity.Fields, p.Source, p.Validation, item)
	default:
		if cp.Descriptor.IsCollection {
			return anySlice(evalEntityCollection(p.Entity.Fields, p.Validation, item))
		}
		return evalEntity(p.Entity.Fields, p.Validation, item)
	}
}

// evalEntity builds and encodes the single composite value.
func evalEntity(fields []*load.FieldMapping, v *load.Validation, item map[string]any) any {
	tree := BuildPathTree(fields)
	if tree.Len() == 0 {
		return nil
	}
	values := make(map[*PathNode]any)
	for _, l := range tree.leaves() {
		values[l.node] = readLeaf(l.node.Leaf.Source, v, item)
	}
	return encodeValue(buildObject(tree, values))
}

// evalEntityCollection mirrors CompileEntityCollection arm for arm,
// including the shared-root unwrap, returning one encoded string per
// element (the fast path returns the plain values).
func evalEntityCollection(fields []*load.FieldMapping, v *load.Validation, item map[string]any) []string {
	tree := BuildPathTree(fields)
	ls := tree.leaves()
	if len(ls) >= 2 {
		tree, _ = unwrapRoot(tree, nil, nil)
		ls = tree.leaves()
	}
	switch {
	case len(ls) == 0:
		return nil
	case len(ls) == 1 && tree.Len() == 1 && tree.Get(tree.Keys()[0]).IsLeaf():
		return splitLeaf(ls[0].node.Leaf.Source, v, item)
	case len(ls) == 1:
		vals := splitLeaf(ls[0].node.Leaf.Source, v, item)
		out := make([]string, len(vals))
		for i, val := range vals {
			out[i] = encodeValue(buildObject(tree, map[*PathNode]any{ls[0].node: val}))
		}
		return out
	}
	if prefix, rels, ok := sharedWildcardPrefix(ls); ok {
		arr, _ := readPathValue(item, prefix).([]any)
		out := make([]string, 0, len(arr))
		for _, elem := range arr {
			scope, _ := elem.(map[string]any)
			values := make(map[*PathNode]any, len(ls))
			for i, l := range ls {
				values[l.node] = applyValidation(stringOf(readPathValue(scope, rels[i])), v)
			}
			out = append(out, encodeValue(buildObject(tree, values)))
		}
		return out
	}
	arrays := make([][]string, len(ls))
	for i, l := range ls {
		arrays[i] = splitLeaf(l.node.Leaf.Source, v, item)
	}
	rows := zipBroadcast(arrays)
	out := make([]string, len(rows))
	for i, row := range rows {
		values := make(map[*PathNode]any, len(ls))
		for j, l := range ls {
			values[l.node] = row[j]
		}
		out[i] = encodeValue(buildObject(tree, values))
	}
	return out
}

// evalPrincipal mirrors CompilePrincipal.
func evalPrincipal(fields []*load.FieldMapping, fallback *load.Source, v *load.Validation, item map[string]any) any {
	if len(fields) == 0 {
		if fallback.IsNone() {
			return nil
		}
		return encodeValue(identityObject(map[string]any{"id": readLeaf(fallback, v, item)}))
	}
	return encodeValue(identityObject(principalValues(fields, func(f *load.FieldMapping) any {
		return readLeaf(f.Source, v, item)
	})))
}

// evalPrincipalCollection mirrors CompilePrincipalCollection.
func evalPrincipalCollection(fields []*load.FieldMapping, fallback *load.Source, v *load.Validation, item map[string]any) any {
	switch len(fields) {
	case 0:
		if fallback.IsNone() {
			return nil
		}
		vals := splitLeaf(fallback, v, item)
		out := make([]any, len(vals))
		for i, val := range vals {
			out[i] = encodeValue(identityObject(map[string]any{"id": val}))
		}
		return out
	case 1:
		vals := splitLeaf(fields[0].Source, v, item)
		out := make([]any, len(vals))
		for i, val := range vals {
			val := val
			out[i] = encodeValue(identityObject(principalValues(fields, func(*load.FieldMapping) any { return val })))
		}
		return out
	}
	arrays := make([][]string, len(fields))
	index := make(map[*load.FieldMapping]int, len(fields))
	for i, f := range fields {
		arrays[i] = splitLeaf(f.Source, v, item)
		index[f] = i
	}
	rows := zipBroadcast(arrays)
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = encodeValue(identityObject(principalValues(fields, func(f *load.FieldMapping) any {
			return row[index[f]]
		})))
	}
	return out
}

// principalValues splits mapped fields into known keys and the bag.
func principalValues(fields []*load.FieldMapping, value func(*load.FieldMapping) any) map[string]any {
	obj := make(map[string]any)
	bag := make(map[string]any)
	for _, f := range fields {
		if key := principalKey(f.Path); key != "" {
			obj[key] = value(f)
			continue
		}
		bag[f.Path] = value(f)
	}
	if len(bag) > 0 {
		obj[identityAdditionalField] = bag
	}
	return obj
}

func identityObject(fields map[string]any) map[string]any {
	obj := map[string]any{"type": identityDiscriminator}
	for k, v := range fields {
		obj[k] = v
	}
	return obj
}

// buildObject materializes the nested object a tree describes, taking
// leaf values from the supplied map.
func buildObject(tree *PathTree, values map[*PathNode]any) map[string]any {
	obj := make(map[string]any, tree.Len())
	for _, key := range tree.Keys() {
		n := tree.Get(key)
		if n.IsLeaf() {
			obj[key] = values[n]
			continue
		}
		obj[key] = buildObject(n.Children, values)
	}
	return obj
}

// zipBroadcast zips independently-lengthed leaf arrays into rows:
// the produced length is the longest array's length; empty arrays
// broadcast "" and length-1 arrays broadcast their single value to
// every index, longer arrays are consumed positionally with "" past
// their end.
func zipBroadcast(arrays [][]string) [][]string {
	maxLen := 0
	for _, a := range arrays {
		if len(a) > maxLen {
			maxLen = len(a)
		}
	}
	rows := make([][]string, maxLen)
	for i := range rows {
		row := make([]string, len(arrays))
		for j, a := range arrays {
			switch {
			case len(a) == 0:
				row[j] = ""
			case len(a) == 1:
				row[j] = a[0]
			case i < len(a):
				row[j] = a[i]
			default:
				row[j] = ""
			}
		}
		rows[i] = row
	}
	return rows
}

// splitValues parses a multi-valued raw value into its elements. An
// already-array input (a trailing-wildcard path read) contributes its
// elements directly; anything else is split on the separator, trimmed,
// with empty entries dropped from the ends only. Interior empties stay
// so sibling columns keep their positional correlation.
func splitValues(raw any) []string {
	if arr, ok := raw.([]any); ok {
		out := make([]string, len(arr))
		for i, e := range arr {
			out[i] = stringOf(e)
		}
		return out
	}
	s := stringOf(raw)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, valueSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	start, end := 0, len(parts)
	for start < end && parts[start] == "" {
		start++
	}
	for end > start && parts[end-1] == "" {
		end--
	}
	return parts[start:end]
}

// readLeaf reads one source and applies the property validation, the
// preview-side twin of leafValue.
func readLeaf(src *load.Source, v *load.Validation, item map[string]any) string {
	if src.IsNone() {
		return ""
	}
	return applyValidation(readValue(src, item), v)
}

// splitLeaf reads one multi-valued source and parses it into elements,
// the preview-side twin of the split-of-validated-read the collection
// arms emit.
func splitLeaf(src *load.Source, v *load.Validation, item map[string]any) []string {
	if src.IsNone() {
		return nil
	}
	return splitValues(checkValue(readRaw(src, item), v))
}

// checkValue applies validation to a raw read the way the generated
// check helpers do: arrays pass through untouched, everything else is
// validated as its string form.
func checkValue(raw any, v *load.Validation) any {
	if _, ok := raw.([]any); ok {
		return raw
	}
	return applyValidation(stringOf(raw), v)
}

// readValue reads one source value as a string.
func readValue(src *load.Source, item map[string]any) string {
	return stringOf(readRaw(src, item))
}

// readRaw reads a raw source value from a sample item. Row sources
// take the first column that is present with a non-nil value, the
// same null-coalescing rule the generated read chains apply, so an
// empty value never falls through to a later column. Path sources
// navigate the document.
func readRaw(src *load.Source, item map[string]any) any {
	if src.IsRow() {
		for _, c := range src.Columns {
			if v, ok := item[c]; ok && v != nil {
				return v
			}
		}
		return nil
	}
	return readPathValue(item, src.Path)
}

// readPathValue navigates a dotted path through nested maps. An
// array-wildcard segment fans out over the array and rejoins the
// collected values with the multi-value separator, matching the
// generated readPath helper.
func readPathValue(item map[string]any, path string) any {
	return readPathSegs(any(item), splitPath(path))
}

func readPathSegs(cur any, segs []string) any {
	for i, seg := range segs {
		if name, ok := strings.CutSuffix(seg, wildcard); ok {
			m, _ := cur.(map[string]any)
			arr, _ := m[name].([]any)
			if len(segs[i+1:]) == 0 {
				return arr
			}
			var vals []string
			for _, elem := range arr {
				if s := stringOf(readPathSegs(elem, segs[i+1:])); s != "" {
					vals = append(vals, s)
				}
			}
			return strings.Join(vals, valueSeparator)
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
	}
	return cur
}

// applyValidation applies the generated check-helper semantics:
// values are truncated to maxLength, and values outside the allowed
// set are dropped to the empty string.
func applyValidation(s string, v *load.Validation) string {
	if v == nil {
		return s
	}
	if len(v.AllowedValues) > 0 {
		allowed := false
		for _, a := range v.AllowedValues {
			if s == a {
				allowed = true
				break
			}
		}
		if !allowed {
			return ""
		}
	}
	if v.MaxLength > 0 && len(s) > v.MaxLength {
		s = s[:v.MaxLength]
	}
	return s
}

func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func encodeValue(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(buf)
}

func anySlice(ss []string) []any {
	if len(ss) == 0 {
		return nil
	}
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
