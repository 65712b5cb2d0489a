package cocogen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wictorwilen/cocogen-sub000/compiler/gen"
)

const sampleSchema = `name: hr-profiles
connection:
  id: hrProfiles
  name: HR Profiles
format: rows
properties:
  - name: title
    type: String
    source:
      columns: [Title]
    validation:
      maxLength: 32
  - name: skills
    type: Collection(Composite.skillProficiency)
    labels: [skills]
    entity:
      name: skills
      fields:
        - path: displayName
          source:
            columns: ["Skill Name"]
        - path: proficiency
          source:
            columns: ["Skill Level"]
  - name: author
    type: String
    entity:
      name: identity
      fields:
        - path: id
          source:
            columns: [AuthorId]
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSchema), 0644))
	return path
}

func TestLoadGraph(t *testing.T) {
	g, err := LoadGraph(writeSchema(t))
	require.NoError(t, err)
	require.Len(t, g.Properties, 3)
	assert.Equal(t, "skillProficiency", g.Properties[1].EntityType)
	assert.NotEmpty(t, g.Properties[1].Expressions[gen.TypeScript])
	assert.NotEmpty(t, g.Properties[1].Expressions[gen.CSharp])
}

func TestLoadGraphErrors(t *testing.T) {
	_, err := LoadGraph(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadGraph(writeSchema(t), gen.WithLanguages("cobol"))
	require.Error(t, err)
}

func TestGenerate(t *testing.T) {
	out := t.TempDir()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	err := GenerateWithLogger(writeSchema(t), log,
		gen.WithTarget(out),
		gen.WithLanguages("typescript", "csharp"),
	)
	require.NoError(t, err)

	buf, err := os.ReadFile(filepath.Join(out, "typescript", "src", "transforms.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), "export function transformSkills")

	buf, err = os.ReadFile(filepath.Join(out, "csharp", "Generated", "Transforms.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), "TransformSkills")

	_, err = os.Stat(filepath.Join(out, ".cocogen.snapshot"))
	assert.NoError(t, err)
}
