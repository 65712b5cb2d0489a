package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

func fileByPath(t *testing.T, files []*File, path string) *File {
	t.Helper()
	for _, f := range files {
		if f.Path == path {
			return f
		}
	}
	t.Fatalf("file %s not generated", path)
	return nil
}

func TestTypeScriptFiles(t *testing.T) {
	g, err := NewGraph(&Config{}, testSchema())
	require.NoError(t, err)
	files, err := g.Files(TypeScript)
	require.NoError(t, err)
	require.Len(t, files, 3)

	t.Run("types declare enums, identity, catalog and derived types", func(t *testing.T) {
		body := fileByPath(t, files, "src/types.ts").Body
		assert.Contains(t, body, `export type SkillProficiencyLevel = "elementary" | "limitedWorking" | "generalProfessional" | "advancedProfessional" | "expert";`)
		assert.Contains(t, body, "export function isSkillProficiencyLevel(value: unknown): value is SkillProficiencyLevel {")
		assert.Contains(t, body, "export interface Identity {")
		assert.Contains(t, body, "export interface ItemFacet {")
		assert.Contains(t, body, "export interface SkillProficiency extends ItemFacet {")
		assert.Contains(t, body, "proficiency?: SkillProficiencyLevel;")
		assert.Contains(t, body, "export interface Award {")
		assert.Contains(t, body, "issuer?: AwardIssuer;")
	})

	t.Run("helpers carry the runtime contract", func(t *testing.T) {
		body := fileByPath(t, files, "src/helpers.ts").Body
		for _, fn := range []string{"splitValues", "readPath", "zipBroadcast", "encode", "check"} {
			assert.Contains(t, body, "export function "+fn+"(")
		}
		// splitValues must take array reads element-wise, never via
		// string coercion.
		assert.Contains(t, body, "if (Array.isArray(raw)) {")
	})

	t.Run("transforms splice the compiled expressions", func(t *testing.T) {
		body := fileByPath(t, files, "src/transforms.ts").Body
		assert.Contains(t, body, "export function transformTitle(item: Record<string, any>) {")
		assert.Contains(t, body, `return check(item["Title"], { maxLength: 32 });`)
		assert.Contains(t, body, "export function transformSkills(item: Record<string, any>) {")
		assert.Contains(t, body, "zipBroadcast([splitValues(")
		assert.Contains(t, body, `import { check, encode, readPath, splitValues, zipBroadcast } from "./helpers";`)
		assert.Contains(t, body, "Identity")
		assert.Contains(t, body, "SkillProficiency")
	})
}

func TestCSharpFiles(t *testing.T) {
	g, err := NewGraph(&Config{}, testSchema())
	require.NoError(t, err)
	files, err := g.Files(CSharp)
	require.NoError(t, err)
	require.Len(t, files, 3)

	t.Run("namespace derives from the connection", func(t *testing.T) {
		for _, f := range files {
			assert.Contains(t, f.Body, "namespace HrProfiles.Generated")
		}
	})

	t.Run("types declare value classes and wire names", func(t *testing.T) {
		body := fileByPath(t, files, "Generated/Types.cs").Body
		assert.Contains(t, body, "public static class SkillProficiencyLevelValues")
		assert.Contains(t, body, "public class SkillProficiency : ItemFacet")
		assert.Contains(t, body, `[JsonPropertyName("displayName")]`)
		assert.Contains(t, body, "public class Identity")
		assert.Contains(t, body, "public class Award")
	})

	t.Run("helpers carry the runtime contract", func(t *testing.T) {
		body := fileByPath(t, files, "Generated/Helpers.cs").Body
		for _, fn := range []string{"Get", "SplitValues", "ReadPath", "AsArray", "ZipBroadcast", "Encode", "Check"} {
			assert.Contains(t, body, " "+fn+"(")
		}
		// Get must yield null on a missing column so coalesce chains
		// can consult the fallback, and SplitValues must take array
		// reads element-wise.
		assert.Contains(t, body, "item.TryGetValue(column, out var value) ? value : null;")
		assert.Contains(t, body, "if (raw is IEnumerable<object?> elements)")
	})

	t.Run("transforms splice the compiled expressions", func(t *testing.T) {
		body := fileByPath(t, files, "Generated/Transforms.cs").Body
		assert.Contains(t, body, "public static partial class Transforms")
		assert.Contains(t, body, "public static object? TransformTitle(Dictionary<string, object?> item) =>")
		assert.Contains(t, body, `Check(Get(item, "Title"), maxLength: 32);`)
		assert.Contains(t, body, "using static HrProfiles.Generated.Helpers;")
	})
}

func TestFilesUnknownTarget(t *testing.T) {
	g, err := NewGraph(&Config{}, testSchema())
	require.NoError(t, err)
	_, err = g.Files(Target("rust"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestNamespaceFallback(t *testing.T) {
	g, err := NewGraph(&Config{}, &load.Schema{Name: "my-connector"})
	require.NoError(t, err)
	assert.Equal(t, "MyConnector.Generated", g.namespace())

	g, err = NewGraph(&Config{}, &load.Schema{})
	require.NoError(t, err)
	assert.Equal(t, "Connector.Generated", g.namespace())
}
