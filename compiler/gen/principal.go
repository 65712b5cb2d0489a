package gen

import (
	"fmt"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

// The identity-reference composite has a fixed shape: a discriminator,
// a handful of known named fields, and an open-ended bag for anything
// else the schema maps. No derived-type synthesis is involved.
const (
	identityDisplayName     = "Identity"
	identityDiscriminator   = "user"
	identityAdditionalField = "additionalData"
)

// principalKeys canonicalizes incoming field names to the known
// identity keys. Longer spellings of the principal name collapse to
// the short canonical key.
var principalKeys = map[string]string{
	"id":                  "id",
	"displayName":         "displayName",
	"upn":                 "upn",
	"userPrincipalName":   "upn",
	"user principal name": "upn",
}

// principalKey returns the canonical identity key for a mapped path,
// or "" when the path is not one of the known names.
func principalKey(path string) string {
	if k, ok := principalKeys[path]; ok {
		return k
	}
	if k, ok := principalKeys[ident(path)]; ok {
		return k
	}
	return ""
}

// CompilePrincipal renders the construction expression of a
// single-valued identity-reference property. When the mapping carries
// no fields, the property's own source is the fallback and supplies
// the identifier.
func CompilePrincipal(fields []*load.FieldMapping, fallback *load.Source, wrap LeafWrap, p *TargetProfile) string {
	if len(fields) == 0 {
		if fallback.IsNone() {
			return p.NoValue
		}
		return p.Encode(identityLit(p, []Pair{{Key: "id", Value: wrap(readSource(fallback, p))}}))
	}
	pairs, extras := principalPairs(fields, func(f *load.FieldMapping) string {
		return leafValue(f.Source, wrap, p)
	}, p)
	return p.Encode(identityLit(p, append(pairs, extras...)))
}

// CompilePrincipalCollection is the multi-valued variant. With two or
// more mapped fields it applies the same positional-broadcast rule as
// the entity collection compiler per produced element.
func CompilePrincipalCollection(fields []*load.FieldMapping, fallback *load.Source, wrap LeafWrap, p *TargetProfile) string {
	switch len(fields) {
	case 0:
		if fallback.IsNone() {
			return p.NoValue
		}
		arr := p.Split(wrap(readSource(fallback, p)))
		return p.MapOver(arr, "v", p.Encode(identityLit(p, []Pair{{Key: "id", Value: "v"}})))
	case 1:
		arr := p.Split(leafValue(fields[0].Source, wrap, p))
		pairs, extras := principalPairs(fields, func(*load.FieldMapping) string { return "v" }, p)
		return p.MapOver(arr, "v", p.Encode(identityLit(p, append(pairs, extras...))))
	}
	arrays := make([]string, len(fields))
	at := make(map[*load.FieldMapping]string, len(fields))
	for i, f := range fields {
		arrays[i] = p.Split(leafValue(f.Source, wrap, p))
		at[f] = fmt.Sprintf("at(%d)", i)
	}
	pairs, extras := principalPairs(fields, func(f *load.FieldMapping) string { return at[f] }, p)
	return p.Zip(arrays, p.Encode(identityLit(p, append(pairs, extras...))))
}

// principalPairs splits the mapped fields into known identity keys and
// the open-ended additional-data bag.
func principalPairs(fields []*load.FieldMapping, value func(*load.FieldMapping) string, p *TargetProfile) (pairs, extras []Pair) {
	var bag []Pair
	for _, f := range fields {
		if key := principalKey(f.Path); key != "" {
			pairs = append(pairs, Pair{Key: key, Value: value(f)})
			continue
		}
		bag = append(bag, Pair{Key: f.Path, Value: value(f)})
	}
	if len(bag) > 0 {
		extras = []Pair{{Key: identityAdditionalField, Value: p.ObjectLit(bag)}}
	}
	return pairs, extras
}

// identityLit renders the typed identity construction with the fixed
// discriminator first.
func identityLit(p *TargetProfile, pairs []Pair) string {
	all := append([]Pair{{Key: "type", Value: p.StringLit(identityDiscriminator)}}, pairs...)
	return p.TypedLit(identityDisplayName, all)
}
