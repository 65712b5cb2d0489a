package gen

import (
	"sort"
	"strings"
)

// The declared-type grammar is small: a scalar name, Enum.<name>,
// Composite.<name>, or Collection(X) wrapping any of the former.
const (
	enumPrefix      = "Enum."
	compositePrefix = "Composite."
	collectionOpen  = "Collection("
)

// scalar primitives with built-in guards in both targets.
var scalarTypes = map[string]struct{}{
	"String":  {},
	"Boolean": {},
	"Int64":   {},
	"Double":  {},
}

// opaqueTypes is the whitelist of "string-like" types: they resolve to
// the primitive string type and are never expanded by the closure.
var opaqueTypes = map[string]struct{}{
	"Date":     {},
	"DateTime": {},
	"Duration": {},
	"Url":      {},
}

// typeRef is a parsed declared type reference.
type typeRef struct {
	Collection bool
	Enum       bool
	Composite  bool
	Name       string // bare name without prefixes
}

// parseTypeRef parses a declared type string. It only splits syntax;
// whether a bare name is a scalar, an opaque string-like or an error
// is decided by the consumer against the finite sets above.
func parseTypeRef(declared string) typeRef {
	ref := typeRef{Name: strings.TrimSpace(declared)}
	if strings.HasPrefix(ref.Name, collectionOpen) && strings.HasSuffix(ref.Name, ")") {
		ref.Collection = true
		ref.Name = strings.TrimSpace(ref.Name[len(collectionOpen) : len(ref.Name)-1])
	}
	switch {
	case strings.HasPrefix(ref.Name, enumPrefix):
		ref.Enum = true
		ref.Name = ref.Name[len(enumPrefix):]
	case strings.HasPrefix(ref.Name, compositePrefix):
		ref.Composite = true
		ref.Name = ref.Name[len(compositePrefix):]
	}
	return ref
}

// CatalogType is a predefined composite type known ahead of time.
// Catalog types are read-only and shared process-wide.
type CatalogType struct {
	Name       string
	Base       string // optional base type name
	Properties []CatalogProperty
}

// CatalogProperty is one declared property of a catalog type.
type CatalogProperty struct {
	Name     string
	Type     string // declared-type grammar
	Nullable bool
}

// EnumType is a closed enumeration known ahead of time.
type EnumType struct {
	Name   string
	Values []string
}

// rootFacetType is always included in the closure seed: every catalog
// entity type derives from it.
const rootFacetType = "itemFacet"

// identityTypeName is the one well-known identity-reference composite
// handled by the principal compiler instead of the entity compiler.
const identityTypeName = "identity"

// catalogTypes is the fixed catalog. There is exactly one catalog per
// run and it is not user-configurable at this layer.
var catalogTypes = map[string]*CatalogType{
	rootFacetType: {
		Name: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "allowedAudiences", Type: "Enum.allowedAudience", Nullable: true},
			{Name: "createdDateTime", Type: "DateTime", Nullable: true},
			{Name: "source", Type: "String", Nullable: true},
		},
	},
	"personName": {
		Name: "personName",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "displayName", Type: "String"},
			{Name: "first", Type: "String"},
			{Name: "last", Type: "String"},
			{Name: "maiden", Type: "String", Nullable: true},
			{Name: "nickname", Type: "String", Nullable: true},
			{Name: "initials", Type: "String", Nullable: true},
		},
	},
	"workPosition": {
		Name: "workPosition",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "detail", Type: "Composite.positionDetail"},
			{Name: "categories", Type: "Collection(String)", Nullable: true},
			{Name: "isCurrent", Type: "Boolean"},
			{Name: "colleagues", Type: "Collection(Composite.relatedPerson)", Nullable: true},
		},
	},
	"positionDetail": {
		Name: "positionDetail",
		Properties: []CatalogProperty{
			{Name: "company", Type: "Composite.companyDetail", Nullable: true},
			{Name: "jobTitle", Type: "String"},
			{Name: "role", Type: "String", Nullable: true},
			{Name: "description", Type: "String", Nullable: true},
			{Name: "startMonthYear", Type: "Date", Nullable: true},
			{Name: "endMonthYear", Type: "Date", Nullable: true},
		},
	},
	"companyDetail": {
		Name: "companyDetail",
		Properties: []CatalogProperty{
			{Name: "displayName", Type: "String"},
			{Name: "department", Type: "String", Nullable: true},
			{Name: "officeLocation", Type: "String", Nullable: true},
			{Name: "address", Type: "Composite.itemAddress", Nullable: true},
			{Name: "webUrl", Type: "Url", Nullable: true},
		},
	},
	"itemAddress": {
		Name: "itemAddress",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "type", Type: "Enum.physicalAddressType"},
			{Name: "street", Type: "String", Nullable: true},
			{Name: "city", Type: "String", Nullable: true},
			{Name: "state", Type: "String", Nullable: true},
			{Name: "countryOrRegion", Type: "String", Nullable: true},
			{Name: "postalCode", Type: "String", Nullable: true},
		},
	},
	"skillProficiency": {
		Name: "skillProficiency",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "displayName", Type: "String"},
			{Name: "proficiency", Type: "Enum.skillProficiencyLevel"},
			{Name: "categories", Type: "Collection(String)", Nullable: true},
			{Name: "webUrl", Type: "Url", Nullable: true},
		},
	},
	"personAnniversary": {
		Name: "personAnniversary",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "type", Type: "Enum.anniversaryType"},
			{Name: "date", Type: "Date"},
		},
	},
	"itemEmail": {
		Name: "itemEmail",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "address", Type: "String"},
			{Name: "displayName", Type: "String", Nullable: true},
			{Name: "type", Type: "Enum.emailType"},
		},
	},
	"itemPhone": {
		Name: "itemPhone",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "displayName", Type: "String", Nullable: true},
			{Name: "number", Type: "String"},
			{Name: "type", Type: "Enum.phoneType"},
		},
	},
	"personWebsite": {
		Name: "personWebsite",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "categories", Type: "Collection(String)", Nullable: true},
			{Name: "description", Type: "String", Nullable: true},
			{Name: "displayName", Type: "String"},
			{Name: "webUrl", Type: "Url"},
		},
	},
	"languageProficiency": {
		Name: "languageProficiency",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "displayName", Type: "String"},
			{Name: "tag", Type: "String", Nullable: true},
			{Name: "proficiency", Type: "Enum.languageProficiencyLevel"},
			{Name: "reading", Type: "Enum.languageProficiencyLevel", Nullable: true},
			{Name: "written", Type: "Enum.languageProficiencyLevel", Nullable: true},
		},
	},
	"personProject": {
		Name: "personProject",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "displayName", Type: "String"},
			{Name: "detail", Type: "Composite.positionDetail", Nullable: true},
			{Name: "categories", Type: "Collection(String)", Nullable: true},
			{Name: "colleagues", Type: "Collection(Composite.relatedPerson)", Nullable: true},
		},
	},
	"relatedPerson": {
		Name: "relatedPerson",
		Properties: []CatalogProperty{
			{Name: "displayName", Type: "String"},
			{Name: "userPrincipalName", Type: "String", Nullable: true},
			{Name: "relationship", Type: "Enum.personRelationship"},
		},
	},
	"personAward": {
		Name: "personAward",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "description", Type: "String", Nullable: true},
			{Name: "displayName", Type: "String"},
			{Name: "issuedDate", Type: "Date", Nullable: true},
			{Name: "issuingAuthority", Type: "String", Nullable: true},
			{Name: "webUrl", Type: "Url", Nullable: true},
		},
	},
	"personCertification": {
		Name: "personCertification",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "certificationId", Type: "String", Nullable: true},
			{Name: "description", Type: "String", Nullable: true},
			{Name: "displayName", Type: "String"},
			{Name: "issuedDate", Type: "Date", Nullable: true},
			{Name: "issuingAuthority", Type: "String", Nullable: true},
			{Name: "webUrl", Type: "Url", Nullable: true},
		},
	},
	"personAnnotation": {
		Name: "personAnnotation",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "detail", Type: "Composite.itemBody"},
			{Name: "displayName", Type: "String", Nullable: true},
		},
	},
	"itemBody": {
		Name: "itemBody",
		Properties: []CatalogProperty{
			{Name: "content", Type: "String"},
			{Name: "contentType", Type: "Enum.bodyType"},
		},
	},
	"personInterest": {
		Name: "personInterest",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "categories", Type: "Collection(String)", Nullable: true},
			{Name: "description", Type: "String", Nullable: true},
			{Name: "displayName", Type: "String"},
			{Name: "webUrl", Type: "Url", Nullable: true},
		},
	},
	"userAccountInformation": {
		Name: "userAccountInformation",
		Base: rootFacetType,
		Properties: []CatalogProperty{
			{Name: "ageGroup", Type: "String", Nullable: true},
			{Name: "countryCode", Type: "String", Nullable: true},
			{Name: "preferredLanguageTag", Type: "Composite.localeInfo", Nullable: true},
			{Name: "userPrincipalName", Type: "String"},
		},
	},
	"localeInfo": {
		Name: "localeInfo",
		Properties: []CatalogProperty{
			{Name: "displayName", Type: "String", Nullable: true},
			{Name: "locale", Type: "String"},
		},
	},
}

// enumTypes are the closed enumerations of the catalog.
var enumTypes = map[string]*EnumType{
	"allowedAudience": {
		Name: "allowedAudience",
		Values: []string{
			"me", "family", "contacts", "groupMembers", "organization",
			"federatedOrganizations", "everyone",
		},
	},
	"anniversaryType": {
		Name:   "anniversaryType",
		Values: []string{"birthday", "wedding", "workAnniversary"},
	},
	"emailType": {
		Name:   "emailType",
		Values: []string{"unknown", "work", "personal", "main", "other"},
	},
	"phoneType": {
		Name: "phoneType",
		Values: []string{
			"home", "business", "mobile", "other", "assistant",
			"homeFax", "businessFax", "otherFax", "pager", "radio",
		},
	},
	"physicalAddressType": {
		Name:   "physicalAddressType",
		Values: []string{"unknown", "home", "business", "other"},
	},
	"skillProficiencyLevel": {
		Name: "skillProficiencyLevel",
		Values: []string{
			"elementary", "limitedWorking", "generalProfessional",
			"advancedProfessional", "expert",
		},
	},
	"languageProficiencyLevel": {
		Name: "languageProficiencyLevel",
		Values: []string{
			"elementary", "conversational", "limitedWorking",
			"professionalWorking", "fullProfessional", "nativeOrBilingual",
		},
	},
	"bodyType": {
		Name:   "bodyType",
		Values: []string{"text", "html"},
	},
	"personRelationship": {
		Name: "personRelationship",
		Values: []string{
			"manager", "colleague", "directReport", "dotLineManager",
			"assistant", "dotLineDirectReport",
		},
	},
}

// labelTypes maps a supported semantic label to the catalog composite
// type it selects.
var labelTypes = map[string]string{
	"names":          "personName",
	"positions":      "workPosition",
	"skills":         "skillProficiency",
	"anniversaries":  "personAnniversary",
	"emails":         "itemEmail",
	"phones":         "itemPhone",
	"webSites":       "personWebsite",
	"languages":      "languageProficiency",
	"projects":       "personProject",
	"awards":         "personAward",
	"certifications": "personCertification",
	"notes":          "personAnnotation",
	"interests":      "personInterest",
	"accounts":       "userAccountInformation",
}

// CatalogTypeByLabel returns the catalog type selected by a supported label.
func CatalogTypeByLabel(label string) (*CatalogType, bool) {
	name, ok := labelTypes[label]
	if !ok {
		return nil, false
	}
	return catalogTypes[name], true
}

// CatalogTypeByName returns a catalog type by its type name.
func CatalogTypeByName(name string) (*CatalogType, bool) {
	t, ok := catalogTypes[name]
	return t, ok
}

// EnumByName returns a catalog enumeration by name.
func EnumByName(name string) (*EnumType, bool) {
	e, ok := enumTypes[name]
	return e, ok
}

// Closure computes the minimal subset of the catalog reachable from the
// seed type names through base-type edges and property-reference edges,
// unwrapping one level of Collection(...). Scalar primitives and the
// string-like whitelist are not expanded. A declared type naming a
// primitive outside the known finite sets fails the whole generation.
//
// The result is sorted by name for deterministic emission.
func Closure(seed []string) ([]*CatalogType, []*EnumType, error) {
	types := make(map[string]*CatalogType)
	enums := make(map[string]*EnumType)
	add := func(name string) (bool, error) {
		if _, ok := types[name]; ok {
			return false, nil
		}
		t, ok := catalogTypes[name]
		if !ok {
			return false, NewUnsupportedTypeError("", name)
		}
		types[name] = t
		return true, nil
	}
	for _, name := range seed {
		if _, err := add(name); err != nil {
			return nil, nil, err
		}
	}
	// Fixed-point passes: each pass is O(types x properties-per-type)
	// and the catalog is finite, so this terminates.
	for changed := true; changed; {
		changed = false
		for _, t := range sortedTypes(types) {
			if t.Base != "" {
				grew, err := add(t.Base)
				if err != nil {
					return nil, nil, err
				}
				changed = changed || grew
			}
			for _, p := range t.Properties {
				ref := parseTypeRef(p.Type)
				switch {
				case ref.Composite:
					grew, err := add(ref.Name)
					if err != nil {
						return nil, nil, NewSchemaError(t.Name+"."+p.Name, "", "", err)
					}
					changed = changed || grew
				case ref.Enum:
					e, ok := enumTypes[ref.Name]
					if !ok {
						return nil, nil, NewUnsupportedTypeError(t.Name+"."+p.Name, p.Type)
					}
					if _, seen := enums[ref.Name]; !seen {
						enums[ref.Name] = e
						changed = true
					}
				default:
					if _, ok := scalarTypes[ref.Name]; ok {
						continue
					}
					if _, ok := opaqueTypes[ref.Name]; ok {
						continue
					}
					return nil, nil, NewUnsupportedTypeError(t.Name+"."+p.Name, p.Type)
				}
			}
		}
	}
	return sortedTypes(types), sortedEnums(enums), nil
}

func sortedTypes(m map[string]*CatalogType) []*CatalogType {
	out := make([]*CatalogType, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedEnums(m map[string]*EnumType) []*EnumType {
	out := make([]*EnumType, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
