package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	// rules is the naming ruleset shared by all generated identifiers.
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Acronyms that keep their casing in generated type names.
	for _, w := range []string{
		"ACL", "API", "HTML", "HTTP", "HTTPS", "ID", "JSON", "UPN",
		"URI", "URL", "UTF8", "UUID", "XML",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// pascal converts a path segment or entity name to PascalCase.
func pascal(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
			continue
		}
		words[i] = rules.Capitalize(w)
	}
	return strings.Join(words, "")
}

// camel converts a path segment to camelCase.
func camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		return strings.ToLower(words[0][:1]) + words[0][1:]
	}
	return strings.ToLower(words[0]) + pascal(strings.Join(words[1:], "_"))
}

// ident sanitizes a mapping key into an identifier that is legal in
// both target languages. Non-identifier runes act as word separators;
// a leading digit gets an underscore prefix.
func ident(s string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		default:
			return '_'
		}
	}, s)
	name := camel(clean)
	if name == "" {
		return "_"
	}
	if unicode.IsDigit(rune(name[0])) {
		return "_" + name
	}
	return name
}
