package gen

import (
	"fmt"
	"strconv"
	"strings"
)

// File is one rendered source file of a generated project. Path is
// relative to the per-target project root.
type File struct {
	Path string
	Body string
}

// Files renders the full generated project of one target: the type
// declarations for the catalog closure and the derived types, the
// static runtime helpers, and one transform function per schema
// property.
func (g *Graph) Files(t Target) ([]*File, error) {
	switch t {
	case TypeScript:
		types, err := g.typescriptTypes()
		if err != nil {
			return nil, err
		}
		return []*File{
			{Path: "src/types.ts", Body: types},
			{Path: "src/helpers.ts", Body: typescriptHelpers},
			{Path: "src/transforms.ts", Body: g.typescriptTransforms()},
		}, nil
	case CSharp:
		ns := g.namespace()
		types, err := g.csharpTypes(ns)
		if err != nil {
			return nil, err
		}
		return []*File{
			{Path: "Generated/Types.cs", Body: types},
			{Path: "Generated/Helpers.cs", Body: csharpHelpers(ns)},
			{Path: "Generated/Transforms.cs", Body: g.csharpTransforms(ns)},
		}, nil
	default:
		return nil, NewConfigError("Targets", t, "unknown target language")
	}
}

// namespace derives the C# namespace from the connection identity.
func (g *Graph) namespace() string {
	name := g.Schema.Connection.ID
	if name == "" {
		name = g.Schema.Name
	}
	if name = pascal(ident(name)); name == "" {
		name = "Connector"
	}
	return name + ".Generated"
}

const tsHeader = "// Code generated by cocogen. DO NOT EDIT.\n\n"

const csHeader = "// <auto-generated>\n" +
	"//     Generated by cocogen. Do not edit.\n" +
	"// </auto-generated>\n\n"

// typescriptTypes renders src/types.ts: one string-union type and
// guard per reachable enumeration, the identity-reference interface,
// and one interface per catalog and derived type. All fields are
// optional because ingestion payloads are partial by nature.
func (g *Graph) typescriptTypes() (string, error) {
	var b strings.Builder
	b.WriteString(tsHeader)

	for _, e := range g.Enums {
		name := pascal(e.Name)
		vals := quoteAll(e.Values)
		fmt.Fprintf(&b, "export type %s = %s;\n\n", name, strings.Join(vals, " | "))
		fmt.Fprintf(&b, "export const %sValues: ReadonlySet<string> = new Set([%s]);\n\n",
			name, strings.Join(vals, ", "))
		fmt.Fprintf(&b, "export function is%s(value: unknown): value is %s {\n", name, name)
		fmt.Fprintf(&b, "  return typeof value === \"string\" && %sValues.has(value);\n", name)
		b.WriteString("}\n\n")
	}

	b.WriteString("export interface Identity {\n")
	fmt.Fprintf(&b, "  type: %q;\n", identityDiscriminator)
	b.WriteString("  id?: string;\n")
	b.WriteString("  displayName?: string;\n")
	b.WriteString("  upn?: string;\n")
	fmt.Fprintf(&b, "  %s?: Record<string, unknown>;\n", identityAdditionalField)
	b.WriteString("}\n\n")

	for _, ct := range g.Types {
		fmt.Fprintf(&b, "export interface %s", pascal(ct.Name))
		if ct.Base != "" {
			fmt.Fprintf(&b, " extends %s", pascal(ct.Base))
		}
		b.WriteString(" {\n")
		for _, p := range ct.Properties {
			d, err := ResolveDescriptor(p.Type, g.Aliases)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "  %s?: %s;\n", p.Name, d.TypeScript.DisplayName)
		}
		b.WriteString("}\n\n")
	}

	for _, dt := range g.Derived {
		fmt.Fprintf(&b, "export interface %s {\n", dt.Name)
		for _, f := range dt.Fields {
			d, err := ResolveDescriptor(derivedRef(f), g.Aliases)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "  %s?: %s;\n", f.VarName, d.TypeScript.DisplayName)
		}
		b.WriteString("}\n\n")
	}
	return b.String(), nil
}

// typescriptTransforms renders src/transforms.ts: one exported
// function per schema property, each returning the property's
// ingestion value built from a single raw item.
func (g *Graph) typescriptTransforms() string {
	var b strings.Builder
	b.WriteString(tsHeader)
	b.WriteString("/* eslint-disable */\n")
	b.WriteString(`import { check, encode, readPath, splitValues, zipBroadcast } from "./helpers";`)
	b.WriteString("\n")
	if imports := g.typeImports(); len(imports) > 0 {
		fmt.Fprintf(&b, "import { %s } from \"./types\";\n", strings.Join(imports, ", "))
	}
	for _, cp := range g.Properties {
		b.WriteString("\n")
		fmt.Fprintf(&b, "// %s: %s\n", cp.Property.Name, cp.Descriptor.Declared)
		fmt.Fprintf(&b, "export function transform%s(%s: Record<string, any>) {\n",
			pascal(cp.Property.Name), scopeVar)
		fmt.Fprintf(&b, "  return %s;\n", cp.Expressions[TypeScript])
		b.WriteString("}\n")
	}
	return b.String()
}

// typeImports lists the declared type names the transforms reference
// in typed constructions, in alias-table order.
func (g *Graph) typeImports() []string {
	used := make(map[string]struct{})
	for _, cp := range g.Properties {
		if cp.Property.Entity == nil {
			continue
		}
		if cp.Property.Entity.Name == identityTypeName {
			used[identityDisplayName] = struct{}{}
			continue
		}
		g.markUsed(cp.EntityType, used)
	}
	var out []string
	if _, ok := used[identityDisplayName]; ok {
		out = append(out, identityDisplayName)
	}
	for _, a := range g.Aliases.Aliases() {
		if _, ok := used[a.TypeScript]; ok {
			out = append(out, a.TypeScript)
		}
	}
	return out
}

// markUsed records a type's display name plus those of every
// composite it references transitively.
func (g *Graph) markUsed(name string, used map[string]struct{}) {
	ti, ok := g.types[name]
	if !ok {
		return
	}
	if _, seen := used[ti.ts]; seen {
		return
	}
	used[ti.ts] = struct{}{}
	for _, f := range ti.Fields() {
		if ref := parseTypeRef(f.TypeRef); ref.Composite {
			g.markUsed(ref.Name, used)
		}
	}
}

// csharpTypes renders Generated/Types.cs: one value class per
// reachable enumeration, the identity-reference class, and one class
// per catalog and derived type with wire names preserved through
// serialization attributes.
func (g *Graph) csharpTypes(ns string) (string, error) {
	var b strings.Builder
	b.WriteString(csHeader)
	b.WriteString("using System.Collections.Generic;\n")
	b.WriteString("using System.Linq;\n")
	b.WriteString("using System.Text.Json.Serialization;\n\n")
	fmt.Fprintf(&b, "namespace %s\n{\n", ns)

	for _, e := range g.Enums {
		name := pascal(e.Name)
		fmt.Fprintf(&b, "    public static class %sValues\n    {\n", name)
		fmt.Fprintf(&b, "        public static readonly IReadOnlyList<string> All = new[] { %s };\n\n",
			strings.Join(quoteAll(e.Values), ", "))
		b.WriteString("        public static bool IsValid(object? value) => value is string s && All.Contains(s);\n")
		b.WriteString("    }\n\n")
	}

	b.WriteString("    public class Identity\n    {\n")
	b.WriteString("        [JsonPropertyName(\"type\")]\n")
	fmt.Fprintf(&b, "        public string Type { get; set; } = %q;\n\n", identityDiscriminator)
	b.WriteString("        [JsonPropertyName(\"id\")]\n")
	b.WriteString("        public object? ID { get; set; }\n\n")
	b.WriteString("        [JsonPropertyName(\"displayName\")]\n")
	b.WriteString("        public object? DisplayName { get; set; }\n\n")
	b.WriteString("        [JsonPropertyName(\"upn\")]\n")
	b.WriteString("        public object? UPN { get; set; }\n\n")
	fmt.Fprintf(&b, "        [JsonPropertyName(%q)]\n", identityAdditionalField)
	b.WriteString("        public object? AdditionalData { get; set; }\n")
	b.WriteString("    }\n")

	for _, ct := range g.Types {
		b.WriteString("\n")
		fmt.Fprintf(&b, "    public class %s", pascal(ct.Name))
		if ct.Base != "" {
			fmt.Fprintf(&b, " : %s", pascal(ct.Base))
		}
		b.WriteString("\n    {\n")
		for i, p := range ct.Properties {
			if i > 0 {
				b.WriteString("\n")
			}
			d, err := ResolveDescriptor(p.Type, g.Aliases)
			if err != nil {
				return "", err
			}
			writeCSProperty(&b, p.Name, pascal(p.Name), d.CSharp.DisplayName, p.Nullable)
		}
		b.WriteString("    }\n")
	}

	for _, dt := range g.Derived {
		b.WriteString("\n")
		fmt.Fprintf(&b, "    public class %s\n    {\n", dt.Name)
		for i, f := range dt.Fields {
			if i > 0 {
				b.WriteString("\n")
			}
			d, err := ResolveDescriptor(derivedRef(f), g.Aliases)
			if err != nil {
				return "", err
			}
			writeCSProperty(&b, f.Name, pascal(f.VarName), d.CSharp.DisplayName, true)
		}
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// writeCSProperty writes one attributed auto-property. Constructions
// assign raw reads, so every generated property is object-typed and
// nullable; the declared type is kept as documentation.
func writeCSProperty(b *strings.Builder, wire, name, typ string, nullable bool) {
	fmt.Fprintf(b, "        [JsonPropertyName(%s)]\n", strconv.Quote(wire))
	fmt.Fprintf(b, "        public object? %s { get; set; } // %s", name, typ)
	if nullable {
		b.WriteString("?")
	}
	b.WriteString("\n")
}

// csharpTransforms renders Generated/Transforms.cs: one static method
// per schema property.
func (g *Graph) csharpTransforms(ns string) string {
	var b strings.Builder
	b.WriteString(csHeader)
	b.WriteString("using System.Collections.Generic;\n")
	b.WriteString("using System.Linq;\n")
	fmt.Fprintf(&b, "using static %s.Helpers;\n\n", ns)
	fmt.Fprintf(&b, "namespace %s\n{\n", ns)
	b.WriteString("    public static partial class Transforms\n    {\n")
	for i, cp := range g.Properties {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "        // %s: %s\n", cp.Property.Name, cp.Descriptor.Declared)
		fmt.Fprintf(&b, "        public static object? Transform%s(Dictionary<string, object?> %s) =>\n",
			pascal(cp.Property.Name), scopeVar)
		fmt.Fprintf(&b, "            %s;\n", cp.Expressions[CSharp])
	}
	b.WriteString("    }\n}\n")
	return b.String()
}

// derivedRef rebuilds the declared-type string of a derived field.
func derivedRef(f *DerivedField) string {
	ref := f.TypeRef
	if f.Collection {
		ref = collectionOpen + ref + ")"
	}
	return ref
}

// typescriptHelpers is the static runtime support emitted into every
// generated TypeScript project. The transforms only ever call these
// five functions; everything else is expression text.
const typescriptHelpers = tsHeader + `const SEPARATOR = ";";

// splitValues parses a multi-valued raw value into its elements. An
// already-array input contributes its elements directly; anything else
// is split on the separator and trimmed, dropping empty entries from
// the ends only so sibling columns keep their positional correlation.
export function splitValues(raw: unknown): string[] {
  if (Array.isArray(raw)) {
    return raw.map((value) => (value === undefined || value === null ? "" : String(value)));
  }
  if (raw === undefined || raw === null || raw === "") {
    return [];
  }
  const parts = String(raw)
    .split(SEPARATOR)
    .map((value) => value.trim());
  let start = 0;
  let end = parts.length;
  while (start < end && parts[start] === "") {
    start += 1;
  }
  while (end > start && parts[end - 1] === "") {
    end -= 1;
  }
  return parts.slice(start, end);
}

// readPath navigates a dotted path through a nested document. An
// array-wildcard segment ("[*]") at the end of the path returns the
// underlying array; mid-path it fans out and rejoins the collected
// values with the separator.
export function readPath(scope: unknown, path: string): any {
  return read(scope, path.split(".").filter((segment) => segment !== ""));
}

function read(scope: any, segments: string[]): any {
  let current = scope;
  for (let i = 0; i < segments.length; i++) {
    if (current === undefined || current === null) {
      return undefined;
    }
    const segment = segments[i];
    if (segment.endsWith("[*]")) {
      const array = current[segment.slice(0, -3)];
      if (!Array.isArray(array)) {
        return undefined;
      }
      const rest = segments.slice(i + 1);
      if (rest.length === 0) {
        return array;
      }
      return array
        .map((element) => read(element, rest))
        .filter((value) => value !== undefined && value !== "")
        .join(SEPARATOR);
    }
    current = current[segment];
  }
  return current;
}

// zipBroadcast zips independently parsed leaf arrays positionally:
// the produced length is the longest array's length, empty arrays
// broadcast "" and single-value arrays broadcast their value to every
// index, longer arrays are consumed by position with "" past the end.
export function zipBroadcast(
  arrays: string[][],
  make: (at: (index: number) => string) => string,
): string[] {
  const length = arrays.reduce((max, array) => Math.max(max, array.length), 0);
  const rows: string[] = [];
  for (let i = 0; i < length; i++) {
    rows.push(
      make((index) => {
        const array = arrays[index];
        if (array.length === 0) {
          return "";
        }
        if (array.length === 1) {
          return array[0];
        }
        return i < array.length ? array[i] : "";
      }),
    );
  }
  return rows;
}

// encode serializes one constructed value to its wire string.
export function encode(value: unknown): string {
  return JSON.stringify(value);
}

// check applies the declared value constraints to one raw read:
// values outside the allowed set drop to "", then the result is
// truncated to the maximum length.
export function check(
  value: any,
  constraints: { maxLength?: number; allowedValues?: string[] },
): any {
  let result = value;
  if (
    constraints.allowedValues !== undefined &&
    typeof result === "string" &&
    !constraints.allowedValues.includes(result)
  ) {
    result = "";
  }
  if (
    constraints.maxLength !== undefined &&
    typeof result === "string" &&
    result.length > constraints.maxLength
  ) {
    result = result.slice(0, constraints.maxLength);
  }
  return result;
}
`

// csharpHelpers renders the static runtime support emitted into every
// generated C# project.
func csharpHelpers(ns string) string {
	var b strings.Builder
	b.WriteString(csHeader)
	b.WriteString("using System;\n")
	b.WriteString("using System.Collections.Generic;\n")
	b.WriteString("using System.Linq;\n")
	b.WriteString("using System.Text.Json;\n\n")
	fmt.Fprintf(&b, "namespace %s\n{\n", ns)
	b.WriteString(csharpHelpersBody)
	b.WriteString("}\n")
	return b.String()
}

const csharpHelpersBody = `    public static class Helpers
    {
        private const char Separator = ';';

        public static object? Get(Dictionary<string, object?> item, string column) =>
            item.TryGetValue(column, out var value) ? value : null;

        public static List<string> SplitValues(object? raw)
        {
            if (raw is IEnumerable<object?> elements)
            {
                return elements.Select(value => value?.ToString() ?? "").ToList();
            }
            var text = raw?.ToString();
            if (string.IsNullOrEmpty(text))
            {
                return new List<string>();
            }
            var parts = text.Split(Separator).Select(value => value.Trim()).ToList();
            var start = 0;
            var end = parts.Count;
            while (start < end && parts[start].Length == 0)
            {
                start++;
            }
            while (end > start && parts[end - 1].Length == 0)
            {
                end--;
            }
            return parts.GetRange(start, end - start);
        }

        public static object? ReadPath(object? scope, string path) =>
            Read(scope, path.Split('.').Where(segment => segment.Length > 0).ToArray(), 0);

        private static object? Read(object? scope, string[] segments, int start)
        {
            var current = scope;
            for (var i = start; i < segments.Length; i++)
            {
                if (current is not Dictionary<string, object?> map)
                {
                    return null;
                }
                var segment = segments[i];
                if (segment.EndsWith("[*]"))
                {
                    if (!map.TryGetValue(segment[..^3], out var value) || value is not List<object?> array)
                    {
                        return null;
                    }
                    if (i + 1 == segments.Length)
                    {
                        return array;
                    }
                    var parts = array
                        .Select(element => Read(element, segments, i + 1)?.ToString())
                        .Where(part => !string.IsNullOrEmpty(part));
                    return string.Join(Separator, parts);
                }
                map.TryGetValue(segment, out current);
            }
            return current;
        }

        public static List<object?> AsArray(object? value) =>
            value is IEnumerable<object?> sequence ? sequence.ToList() : new List<object?>();

        public static List<string> ZipBroadcast(IReadOnlyList<string>[] arrays, Func<Func<int, string>, string> make)
        {
            var length = arrays.Length == 0 ? 0 : arrays.Max(array => array.Count);
            var rows = new List<string>(length);
            for (var i = 0; i < length; i++)
            {
                var row = i;
                rows.Add(make(index =>
                {
                    var array = arrays[index];
                    if (array.Count == 0)
                    {
                        return "";
                    }
                    if (array.Count == 1)
                    {
                        return array[0];
                    }
                    return row < array.Count ? array[row] : "";
                }));
            }
            return rows;
        }

        public static string Encode(object? value) => JsonSerializer.Serialize(value);

        public static object? Check(object? value, int? maxLength = null, string[]? allowedValues = null)
        {
            if (value is not string text)
            {
                return value;
            }
            if (allowedValues is { Length: > 0 } && !allowedValues.Contains(text))
            {
                text = "";
            }
            if (maxLength is int max && text.Length > max)
            {
                text = text[..max];
            }
            return text;
        }
    }
`
