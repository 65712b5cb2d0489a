package gen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAliases(t *testing.T, seed ...string) *AliasTable {
	t.Helper()
	types, _, err := Closure(seed)
	require.NoError(t, err)
	return NewAliasTable(types, []*DerivedType{{Name: "Award"}})
}

func TestResolveDescriptor(t *testing.T) {
	aliases := testAliases(t, "itemPhone")

	t.Run("scalars", func(t *testing.T) {
		for declared, want := range map[string][2]string{
			"String":  {"string", "string"},
			"Boolean": {"boolean", "bool"},
			"Int64":   {"number", "long"},
			"Double":  {"number", "double"},
		} {
			d, err := ResolveDescriptor(declared, aliases)
			require.NoError(t, err, declared)
			assert.Equal(t, want[0], d.TypeScript.DisplayName)
			assert.Equal(t, want[1], d.CSharp.DisplayName)
			assert.False(t, d.IsCollection)
		}
		d, err := ResolveDescriptor("Int64", aliases)
		require.NoError(t, err)
		assert.Equal(t, "Number.isInteger(value)", fmt.Sprintf(d.TypeScript.Guard, "value"))
	})

	t.Run("string-like opaque types resolve to string", func(t *testing.T) {
		for _, declared := range []string{"Date", "DateTime", "Duration", "Url"} {
			d, err := ResolveDescriptor(declared, aliases)
			require.NoError(t, err, declared)
			assert.Equal(t, "string", d.TypeScript.DisplayName)
			assert.Equal(t, "string", d.CSharp.DisplayName)
		}
	})

	t.Run("enums get a named union and a value class", func(t *testing.T) {
		d, err := ResolveDescriptor("Enum.phoneType", aliases)
		require.NoError(t, err)
		assert.Equal(t, "PhoneType", d.TypeScript.DisplayName)
		assert.Equal(t, "isPhoneType(v)", fmt.Sprintf(d.TypeScript.Guard, "v"))
		assert.Equal(t, "string", d.CSharp.DisplayName)
		assert.Equal(t, "PhoneTypeValues.IsValid(v)", fmt.Sprintf(d.CSharp.Guard, "v"))
	})

	t.Run("composites resolve through the alias table", func(t *testing.T) {
		d, err := ResolveDescriptor("Composite.itemPhone", aliases)
		require.NoError(t, err)
		assert.Equal(t, "ItemPhone", d.TypeScript.DisplayName)
		assert.Equal(t, "ItemPhone", d.CSharp.DisplayName)
		assert.Equal(t, "v is ItemPhone", fmt.Sprintf(d.CSharp.Guard, "v"))
	})

	t.Run("derived types resolve by synthesized name", func(t *testing.T) {
		d, err := ResolveDescriptor("Composite.Award", aliases)
		require.NoError(t, err)
		assert.Equal(t, "Award", d.TypeScript.DisplayName)
		assert.Equal(t, "Award", d.CSharp.DisplayName)
	})

	t.Run("identity reference has a fixed shape", func(t *testing.T) {
		d, err := ResolveDescriptor("Composite.identity", aliases)
		require.NoError(t, err)
		assert.Equal(t, "Identity", d.TypeScript.DisplayName)
		assert.Equal(t, "Identity", d.CSharp.DisplayName)
	})

	t.Run("collections unwrap and describe the element", func(t *testing.T) {
		d, err := ResolveDescriptor("Collection(Composite.itemPhone)", aliases)
		require.NoError(t, err)
		assert.True(t, d.IsCollection)
		assert.Equal(t, "Composite.itemPhone", d.Element)
		assert.Equal(t, "ItemPhone[]", d.TypeScript.DisplayName)
		assert.Equal(t, "Array.isArray(v)", fmt.Sprintf(d.TypeScript.Guard, "v"))
		assert.Equal(t, "List<ItemPhone>", d.CSharp.DisplayName)
		assert.Equal(t, "ItemPhone", d.CSharp.ElementName)

		d, err = ResolveDescriptor("Collection(String)", aliases)
		require.NoError(t, err)
		assert.Equal(t, "string[]", d.TypeScript.DisplayName)
		assert.Equal(t, "List<string>", d.CSharp.DisplayName)
	})

	t.Run("unknown references fail", func(t *testing.T) {
		for _, declared := range []string{
			"Composite.nope",
			"Enum.nope",
			"Float32",
			"Collection(Composite.nope)",
		} {
			_, err := ResolveDescriptor(declared, aliases)
			require.Error(t, err, declared)
			assert.ErrorIs(t, err, ErrUnsupportedType, declared)
		}
	})
}
