package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_ValidDocument(t *testing.T) {
	assert.Empty(t, Validate(sampleDocument()))
	assert.Empty(t, Validate(Empty("x")))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantMsg string
	}{
		{"missing ability id", func(d *Document) { d.Abilities[0].ID = "" }, "abilities[0].id is required"},
		{"missing ability name", func(d *Document) { d.Abilities[0].Name = "" }, "abilities[0].name is required"},
		{"duplicate ability id", func(d *Document) {
			d.Abilities = append(d.Abilities, Ability{ID: "haitian", Name: "again"})
		}, `abilities[1].id: duplicate id "haitian"`},
		{"missing sub name", func(d *Document) { d.Abilities[0].SubAbilities[0].Name = "" },
			"abilities[0].sub_abilities[0].name is required"},
		{"duplicate sub id", func(d *Document) {
			a := &d.Abilities[0]
			a.SubAbilities = append(a.SubAbilities, SubAbility{ID: "story", Name: "dup"})
		}, `abilities[0].sub_abilities[1].id: duplicate id "story"`},
		{"duplicate case id", func(d *Document) {
			sub := &d.Abilities[0].SubAbilities[0]
			sub.Cases[1].ID = sub.Cases[0].ID
		}, `abilities[0].sub_abilities[0].cases[1].id: duplicate id "haitian_story_001"`},
		{"missing case id", func(d *Document) { d.Abilities[0].SubAbilities[0].Cases[0].ID = "" },
			"abilities[0].sub_abilities[0].cases[0].id is required"},
		{"case id with separator", func(d *Document) { d.Abilities[0].SubAbilities[0].Cases[0].ID = "a/b" },
			`cases[0].id: "a/b" must not contain path separators`},
		{"case id with dotdot", func(d *Document) { d.Abilities[0].SubAbilities[0].Cases[0].ID = ".." },
			`cases[0].id: ".." must not contain path separators`},
		{"bad override key", func(d *Document) {
			d.Abilities[0].SubAbilities[0].Cases[0].UserTextOverride = map[string]string{"first": "x"}
		}, `user_text_override: key "first" is not a zero-based turn index`},
		{"negative override key", func(d *Document) {
			d.Abilities[0].SubAbilities[0].Cases[0].UserTextOverride = map[string]string{"-1": "x"}
		}, `key "-1" is not a zero-based turn index`},
		{"bad session name", func(d *Document) {
			d.Abilities[0].SubAbilities[0].Cases[0].SourceSession = "../escape"
		}, `source_session: invalid session name "../escape"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			tt.mutate(doc)
			errs := Validate(doc)
			assert.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.Contains(e.Error(), tt.wantMsg) {
					found = true
				}
			}
			assert.True(t, found, "expected error containing %q, got %v", tt.wantMsg, errs)
		})
	}
}

func TestValidate_SameIDUnderDifferentParentsIsAllowed(t *testing.T) {
	doc := sampleDocument()
	doc.Abilities = append(doc.Abilities, Ability{ID: "english", Name: "English", SubAbilities: []SubAbility{
		{ID: "story", Name: "Story", Cases: []Case{{ID: "haitian_story_001"}}},
	}})
	assert.Empty(t, Validate(doc))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	doc := &Document{Abilities: []Ability{
		{ID: "", Name: ""},
		{ID: "b", Name: "B", SubAbilities: []SubAbility{{ID: "", Name: ""}}},
	}}
	errs := Validate(doc)
	assert.Len(t, errs, 4)
}

func TestParseTurnIndex(t *testing.T) {
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"12", 12, false},
		{"00", 0, true},
		{"-1", 0, true},
		{"x", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTurnIndex(tt.key)
		if tt.wantErr {
			assert.Error(t, err, tt.key)
			continue
		}
		assert.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	err := FormatValidationErrors(Validate(&Document{Abilities: []Ability{{}}}))
	assert.Contains(t, err.Error(), "catalog validation failed (2 errors):")
	assert.Contains(t, err.Error(), "\n  - abilities[0].id is required")
}
