package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

// Pair is one key/value of a rendered object construction.
type Pair struct {
	Key   string
	Value string
}

// TargetProfile is the small set of syntax-generation primitives that
// differ between the two output languages. The compilation algorithms
// in entity.go and principal.go are shared; only these atoms vary.
//
// Helper calls (splitValues, readPath, zipBroadcast, encode, check)
// refer to the static runtime helpers file the writer emits into each
// generated project.
type TargetProfile struct {
	Target Target

	// StringLit renders a string literal.
	StringLit func(s string) string
	// ObjectLit renders an untyped structural literal.
	ObjectLit func(pairs []Pair) string
	// TypedLit renders a nominally typed construction.
	TypedLit func(typeName string, pairs []Pair) string
	// ArrayLit renders an array literal.
	ArrayLit func(elems []string) string
	// Coalesce renders a null-coalescing fallback.
	Coalesce func(expr, fallback string) string
	// ReadColumn renders a raw row-column read.
	ReadColumn func(scope, column string) string
	// ReadPath renders a document path read relative to a scope value.
	ReadPath func(scope, path string) string
	// Split renders the multi-value split of one raw read.
	Split func(expr string) string
	// Encode renders the serialize-to-encoded-string step.
	Encode func(expr string) string
	// MapOver renders element-wise mapping over an array expression.
	MapOver func(arr, elemVar, elemExpr string) string
	// Zip renders the positional-broadcast zip over independently
	// parsed leaf arrays; elemExpr reads leaf j through "at(j)".
	Zip func(arrays []string, elemExpr string) string
	// Validate threads the property's value constraints around one
	// leaf read expression.
	Validate func(expr string, v *load.Validation) string
	// NoValue is the "no value" expression of the language.
	NoValue string
}

// Profile returns the syntax profile of a target language.
func Profile(t Target) *TargetProfile {
	switch t {
	case CSharp:
		return csharpProfile
	default:
		return typescriptProfile
	}
}

var typescriptProfile = &TargetProfile{
	Target:    TypeScript,
	StringLit: strconv.Quote,
	ObjectLit: func(pairs []Pair) string {
		return objectBody(pairs, func(p Pair) string {
			return tsKey(p.Key) + ": " + p.Value
		})
	},
	TypedLit: func(typeName string, pairs []Pair) string {
		body := objectBody(pairs, func(p Pair) string {
			return p.Key + ": " + p.Value
		})
		return "(" + body + " as " + typeName + ")"
	},
	ArrayLit: func(elems []string) string {
		return "[" + strings.Join(elems, ", ") + "]"
	},
	Coalesce: func(expr, fallback string) string {
		return "(" + expr + " ?? " + fallback + ")"
	},
	ReadColumn: func(scope, column string) string {
		return scope + "[" + strconv.Quote(column) + "]"
	},
	ReadPath: func(scope, path string) string {
		return "readPath(" + scope + ", " + strconv.Quote(path) + ")"
	},
	Split:  func(expr string) string { return "splitValues(" + expr + ")" },
	Encode: func(expr string) string { return "encode(" + expr + ")" },
	MapOver: func(arr, elemVar, elemExpr string) string {
		return arr + ".map((" + elemVar + ") => " + elemExpr + ")"
	},
	Zip: func(arrays []string, elemExpr string) string {
		return "zipBroadcast([" + strings.Join(arrays, ", ") + "], (at) => " + elemExpr + ")"
	},
	Validate: func(expr string, v *load.Validation) string {
		opts := validationOpts(v, func(vals []string) string {
			return "[" + strings.Join(quoteAll(vals), ", ") + "]"
		})
		if len(opts) == 0 {
			return expr
		}
		return "check(" + expr + ", { " + strings.Join(opts, ", ") + " })"
	},
	NoValue: "undefined",
}

var csharpProfile = &TargetProfile{
	Target:    CSharp,
	StringLit: strconv.Quote,
	ObjectLit: func(pairs []Pair) string {
		// Untyped construction keeps the raw mapping keys on the wire,
		// so it renders as a string-keyed dictionary, not an anonymous
		// type with pascal-cased members.
		if len(pairs) == 0 {
			return "new Dictionary<string, object?>()"
		}
		body := objectBody(pairs, func(p Pair) string {
			return "[" + strconv.Quote(p.Key) + "] = " + p.Value
		})
		return "new Dictionary<string, object?> " + body
	},
	TypedLit: func(typeName string, pairs []Pair) string {
		body := objectBody(pairs, func(p Pair) string {
			return pascal(p.Key) + " = " + p.Value
		})
		return "new " + typeName + " " + body
	},
	ArrayLit: func(elems []string) string {
		return "new[] { " + strings.Join(elems, ", ") + " }"
	},
	Coalesce: func(expr, fallback string) string {
		return "(" + expr + " ?? " + fallback + ")"
	},
	ReadColumn: func(scope, column string) string {
		return "Get(" + scope + ", " + strconv.Quote(column) + ")"
	},
	ReadPath: func(scope, path string) string {
		return "ReadPath(" + scope + ", " + strconv.Quote(path) + ")"
	},
	Split:  func(expr string) string { return "SplitValues(" + expr + ")" },
	Encode: func(expr string) string { return "Encode(" + expr + ")" },
	MapOver: func(arr, elemVar, elemExpr string) string {
		return "AsArray(" + arr + ").Select(" + elemVar + " => " + elemExpr + ").ToList()"
	},
	Zip: func(arrays []string, elemExpr string) string {
		return "ZipBroadcast(new[] { " + strings.Join(arrays, ", ") + " }, at => " + elemExpr + ")"
	},
	Validate: func(expr string, v *load.Validation) string {
		opts := validationOpts(v, func(vals []string) string {
			return "new[] { " + strings.Join(quoteAll(vals), ", ") + " }"
		})
		if len(opts) == 0 {
			return expr
		}
		return "Check(" + expr + ", " + strings.Join(opts, ", ") + ")"
	},
	NoValue: "null",
}

// objectBody renders "{ a, b }" (or "{}") from rendered pairs.
func objectBody(pairs []Pair, render func(Pair) string) string {
	if len(pairs) == 0 {
		return "{}"
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = render(p)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// tsKey quotes an object-literal key unless it is a plain identifier.
func tsKey(k string) string {
	if ident(k) == k {
		return k
	}
	return strconv.Quote(k)
}

// validationOpts renders the named constraint arguments shared by the
// two check helpers.
func validationOpts(v *load.Validation, arrayLit func([]string) string) []string {
	if v == nil {
		return nil
	}
	var opts []string
	if v.MaxLength > 0 {
		opts = append(opts, fmt.Sprintf("maxLength: %d", v.MaxLength))
	}
	if len(v.AllowedValues) > 0 {
		opts = append(opts, "allowedValues: "+arrayLit(v.AllowedValues))
	}
	return opts
}

func quoteAll(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.Quote(v)
	}
	return out
}
