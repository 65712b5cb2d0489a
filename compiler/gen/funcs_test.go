package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascal(t *testing.T) {
	for in, want := range map[string]string{
		"award":          "Award",
		"skill_level":    "SkillLevel",
		"display name":   "DisplayName",
		"issued-date":    "IssuedDate",
		"id":             "ID",
		"upn":            "UPN",
		"web.url":        "WebURL",
		"displayName":    "DisplayName",
		"personName":     "PersonName",
		"user_json_blob": "UserJSONBlob",
	} {
		assert.Equal(t, want, pascal(in), in)
	}
}

func TestIdent(t *testing.T) {
	for in, want := range map[string]string{
		"displayName":  "displayName",
		"display name": "displayName",
		"Skill Level":  "skillLevel",
		"a/b":          "aB",
		"1st":          "_1st",
		"":             "_",
		"--":           "_",
	} {
		assert.Equal(t, want, ident(in), in)
	}
}
