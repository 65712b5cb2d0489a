package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

func noWrap(expr string) string { return expr }

func testTypes(t *testing.T, seed ...string) TypeMap {
	t.Helper()
	types, _, err := Closure(seed)
	require.NoError(t, err)
	return buildTypeMap(types, nil)
}

func TestCompileEntity(t *testing.T) {
	types := testTypes(t, "skillProficiency", "workPosition")

	t.Run("typed construction uses declared identifiers", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("displayName", "Skill"),
			col("proficiency", "Level"),
		}
		ts := CompileEntity(fields, noWrap, types["skillProficiency"], types, Profile(TypeScript))
		assert.Equal(t,
			`encode(({ displayName: item["Skill"], proficiency: item["Level"] } as SkillProficiency))`,
			ts)

		cs := CompileEntity(fields, noWrap, types["skillProficiency"], types, Profile(CSharp))
		assert.Equal(t,
			`Encode(new SkillProficiency { DisplayName = Get(item, "Skill"), Proficiency = Get(item, "Level") })`,
			cs)
	})

	t.Run("untyped construction keeps mapping keys", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("display name", "Skill"),
		}
		ts := CompileEntity(fields, noWrap, nil, types, Profile(TypeScript))
		assert.Equal(t, `encode({ "display name": item["Skill"] })`, ts)

		cs := CompileEntity(fields, noWrap, nil, types, Profile(CSharp))
		assert.Equal(t,
			`Encode(new Dictionary<string, object?> { ["display name"] = Get(item, "Skill") })`,
			cs)
	})

	t.Run("keys without a declared property are dropped silently", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("displayName", "Skill"),
			col("notAProperty", "X"),
		}
		ts := CompileEntity(fields, noWrap, types["skillProficiency"], types, Profile(TypeScript))
		assert.NotContains(t, ts, "notAProperty")
		assert.Contains(t, ts, "displayName")
	})

	t.Run("nested mappings recurse into referenced composites", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("detail.jobTitle", "Title"),
			col("isCurrent", "Current"),
		}
		ts := CompileEntity(fields, noWrap, types["workPosition"], types, Profile(TypeScript))
		assert.Equal(t,
			`encode(({ detail: ({ jobTitle: item["Title"] } as PositionDetail), isCurrent: item["Current"] } as WorkPosition))`,
			ts)
	})

	t.Run("multiple columns coalesce in order", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("displayName", "Preferred", "Fallback"),
		}
		ts := CompileEntity(fields, noWrap, types["skillProficiency"], types, Profile(TypeScript))
		assert.Equal(t,
			`encode(({ displayName: (item["Preferred"] ?? item["Fallback"]) } as SkillProficiency))`,
			ts)
	})

	t.Run("unmapped source leaves a marker", func(t *testing.T) {
		fields := []*load.FieldMapping{none("displayName")}
		ts := CompileEntity(fields, noWrap, types["skillProficiency"], types, Profile(TypeScript))
		assert.Contains(t, ts, "undefined /* TODO: map or implement this source */")
	})

	t.Run("no fields means no value", func(t *testing.T) {
		assert.Equal(t, "undefined", CompileEntity(nil, noWrap, nil, types, Profile(TypeScript)))
		assert.Equal(t, "null", CompileEntity(nil, noWrap, nil, types, Profile(CSharp)))
	})

	t.Run("compilation is idempotent", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("detail.jobTitle", "Title"),
			col("detail.role", "Role"),
			col("isCurrent", "Current"),
		}
		first := CompileEntity(fields, noWrap, types["workPosition"], types, Profile(TypeScript))
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, CompileEntity(fields, noWrap, types["workPosition"], types, Profile(TypeScript)))
		}
	})
}

func TestCompileEntityCollection(t *testing.T) {
	types := testTypes(t, "skillProficiency", "workPosition")

	t.Run("no leaves means no value", func(t *testing.T) {
		assert.Equal(t, "undefined", CompileEntityCollection(nil, noWrap, nil, types, Profile(TypeScript)))
	})

	t.Run("single flat leaf takes the fast path", func(t *testing.T) {
		fields := []*load.FieldMapping{col("displayName", "Skills")}
		ts := CompileEntityCollection(fields, noWrap, types["skillProficiency"], types, Profile(TypeScript))
		assert.Equal(t, `splitValues(item["Skills"])`, ts)

		cs := CompileEntityCollection(fields, noWrap, types["skillProficiency"], types, Profile(CSharp))
		assert.Equal(t, `SplitValues(Get(item, "Skills"))`, cs)
	})

	t.Run("single nested leaf maps each raw value through the construction", func(t *testing.T) {
		fields := []*load.FieldMapping{col("detail.jobTitle", "Titles")}
		ts := CompileEntityCollection(fields, noWrap, types["workPosition"], types, Profile(TypeScript))
		assert.Equal(t,
			`splitValues(item["Titles"]).map((v) => encode(({ detail: ({ jobTitle: v } as PositionDetail) } as WorkPosition)))`,
			ts)
	})

	t.Run("shared wildcard prefix iterates the underlying array", func(t *testing.T) {
		fields := []*load.FieldMapping{
			doc("displayName", "skills[*].name"),
			doc("proficiency", "skills[*].level"),
		}
		ts := CompileEntityCollection(fields, noWrap, types["skillProficiency"], types, Profile(TypeScript))
		assert.Equal(t,
			`readPath(item, "skills").map((v) => encode(({ displayName: readPath(v, "name"), proficiency: readPath(v, "level") } as SkillProficiency)))`,
			ts)

		cs := CompileEntityCollection(fields, noWrap, types["skillProficiency"], types, Profile(CSharp))
		assert.Equal(t,
			`AsArray(ReadPath(item, "skills")).Select(v => Encode(new SkillProficiency { DisplayName = ReadPath(v, "name"), Proficiency = ReadPath(v, "level") })).ToList()`,
			cs)
	})

	t.Run("independent leaves zip positionally", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("displayName", "Skill Name"),
			col("proficiency", "Skill Level"),
		}
		ts := CompileEntityCollection(fields, noWrap, types["skillProficiency"], types, Profile(TypeScript))
		assert.Equal(t,
			`zipBroadcast([splitValues(item["Skill Name"]), splitValues(item["Skill Level"])], (at) => encode(({ displayName: at(0), proficiency: at(1) } as SkillProficiency)))`,
			ts)

		cs := CompileEntityCollection(fields, noWrap, types["skillProficiency"], types, Profile(CSharp))
		assert.Equal(t,
			`ZipBroadcast(new[] { SplitValues(Get(item, "Skill Name")), SplitValues(Get(item, "Skill Level")) }, at => Encode(new SkillProficiency { DisplayName = at(0), Proficiency = at(1) }))`,
			cs)
	})

	t.Run("shared top-level subtree unwraps to the inner object", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("skills.name", "Skill Name"),
			col("skills.level", "Skill Level"),
		}
		ts := CompileEntityCollection(fields, noWrap, nil, types, Profile(TypeScript))
		assert.Equal(t,
			`zipBroadcast([splitValues(item["Skill Name"]), splitValues(item["Skill Level"])], (at) => encode({ name: at(0), level: at(1) }))`,
			ts)
	})

	t.Run("unwrap descends through the declared field type", func(t *testing.T) {
		fields := []*load.FieldMapping{
			col("detail.jobTitle", "Titles"),
			col("detail.role", "Roles"),
		}
		ts := CompileEntityCollection(fields, noWrap, types["workPosition"], types, Profile(TypeScript))
		assert.Equal(t,
			`zipBroadcast([splitValues(item["Titles"]), splitValues(item["Roles"])], (at) => encode(({ jobTitle: at(0), role: at(1) } as PositionDetail)))`,
			ts)
	})

	t.Run("single nested leaf keeps its nesting", func(t *testing.T) {
		fields := []*load.FieldMapping{col("skills.name", "Skill Name")}
		ts := CompileEntityCollection(fields, noWrap, nil, types, Profile(TypeScript))
		assert.Equal(t,
			`splitValues(item["Skill Name"]).map((v) => encode({ skills: { name: v } }))`,
			ts)
	})

	t.Run("validation wraps every leaf read", func(t *testing.T) {
		p := Profile(TypeScript)
		v := &load.Validation{MaxLength: 16}
		wrap := func(expr string) string { return p.Validate(expr, v) }
		fields := []*load.FieldMapping{
			col("displayName", "Skill Name"),
			col("proficiency", "Skill Level"),
		}
		ts := CompileEntityCollection(fields, wrap, types["skillProficiency"], types, p)
		assert.Equal(t,
			`zipBroadcast([splitValues(check(item["Skill Name"], { maxLength: 16 })), splitValues(check(item["Skill Level"], { maxLength: 16 }))], (at) => encode(({ displayName: at(0), proficiency: at(1) } as SkillProficiency)))`,
			ts)
	})
}
