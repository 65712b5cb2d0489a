package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

func fieldNames(t *DerivedType) []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Name
	}
	return out
}

func TestSynthesize(t *testing.T) {
	t.Run("leaves become string fields", func(t *testing.T) {
		ctx := NewSynthesisContext()
		dt, err := ctx.Synthesize("award", BuildPathTree([]*load.FieldMapping{
			col("name", "Award"),
			col("issued date", "Issued"),
		}))
		require.NoError(t, err)
		assert.Equal(t, "Award", dt.Name)
		assert.Equal(t, []string{"name", "issued date"}, fieldNames(dt))
		assert.Equal(t, "issuedDate", dt.Fields[1].VarName)
		assert.Equal(t, "String", dt.Fields[0].TypeRef)
	})

	t.Run("subtrees become nested derived types with deterministic names", func(t *testing.T) {
		require := require.New(t)
		ctx := NewSynthesisContext()
		dt, err := ctx.Synthesize("award", BuildPathTree([]*load.FieldMapping{
			col("issuer.name", "Issuer"),
			col("issuer.country", "Country"),
		}))
		require.NoError(err)
		require.Equal([]string{"issuer"}, fieldNames(dt))
		require.Equal("Composite.AwardIssuer", dt.Fields[0].TypeRef)

		child, ok := ctx.Type("AwardIssuer")
		require.True(ok)
		require.Equal([]string{"name", "country"}, fieldNames(child))
	})

	t.Run("merges cumulatively across properties", func(t *testing.T) {
		require := require.New(t)
		ctx := NewSynthesisContext()
		_, err := ctx.Synthesize("award", BuildPathTree([]*load.FieldMapping{
			col("name", "A"),
			col("issuer.name", "B"),
		}))
		require.NoError(err)
		dt, err := ctx.Synthesize("award", BuildPathTree([]*load.FieldMapping{
			col("name", "OTHER"),
			col("year", "C"),
			col("issuer.country", "D"),
		}))
		require.NoError(err)

		require.Equal([]string{"name", "issuer", "year"}, fieldNames(dt))

		child, ok := ctx.Type("AwardIssuer")
		require.True(ok)
		require.Equal([]string{"name", "country"}, fieldNames(child))
	})

	t.Run("merge order never changes the field set", func(t *testing.T) {
		a := BuildPathTree([]*load.FieldMapping{
			col("name", "A"),
			col("issuer.name", "B"),
		})
		b := BuildPathTree([]*load.FieldMapping{
			col("year", "C"),
			col("issuer.country", "D"),
		})

		merge := func(first, second *PathTree) *DerivedType {
			ctx := NewSynthesisContext()
			_, err := ctx.Synthesize("award", first)
			require.NoError(t, err)
			dt, err := ctx.Synthesize("award", second)
			require.NoError(t, err)
			return dt
		}

		ab := merge(a, b)
		ba := merge(b, a)
		assert.ElementsMatch(t, fieldNames(ab), fieldNames(ba))
	})

	t.Run("colliding identifiers get a numeric suffix", func(t *testing.T) {
		ctx := NewSynthesisContext()
		dt, err := ctx.Synthesize("award", BuildPathTree([]*load.FieldMapping{
			col("display name", "A"),
			col("display_name", "B"),
		}))
		require.NoError(t, err)
		require.Len(t, dt.Fields, 2)
		assert.Equal(t, "displayName", dt.Fields[0].VarName)
		assert.Equal(t, "displayName2", dt.Fields[1].VarName)
	})

	t.Run("empty mapping produces an empty derived type", func(t *testing.T) {
		ctx := NewSynthesisContext()
		dt, err := ctx.Synthesize("ghost", BuildPathTree(nil))
		require.NoError(t, err)
		assert.Equal(t, "Ghost", dt.Name)
		assert.Empty(t, dt.Fields)
	})

	t.Run("wildcard document sources mark collection fields", func(t *testing.T) {
		ctx := NewSynthesisContext()
		dt, err := ctx.Synthesize("report", BuildPathTree([]*load.FieldMapping{
			doc("tags", "item.tags[*]"),
			doc("title", "item.title"),
		}))
		require.NoError(t, err)
		assert.True(t, dt.Fields[0].Collection)
		assert.False(t, dt.Fields[1].Collection)
	})

	t.Run("freeze returns creation order and blocks further synthesis", func(t *testing.T) {
		ctx := NewSynthesisContext()
		_, err := ctx.Synthesize("beta", BuildPathTree([]*load.FieldMapping{col("x", "X")}))
		require.NoError(t, err)
		_, err = ctx.Synthesize("alpha", BuildPathTree([]*load.FieldMapping{col("y", "Y")}))
		require.NoError(t, err)

		frozen := ctx.Freeze()
		require.Len(t, frozen, 2)
		assert.Equal(t, "Beta", frozen[0].Name)
		assert.Equal(t, "Alpha", frozen[1].Name)

		_, err = ctx.Synthesize("gamma", BuildPathTree(nil))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})
}
