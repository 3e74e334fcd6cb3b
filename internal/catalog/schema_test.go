package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrStr(s string) *string { return &s }

func sampleDocument() *Document {
	return &Document{
		Meta: domain.Meta{Title: "MiniCPM-o 4.5"},
		Abilities: []Ability{
			{ID: "haitian", Name: "Voice chat", SubAbilities: []SubAbility{
				{ID: "story", Name: "Storytelling", Cases: []Case{
					{ID: "haitian_story_001", Summary: "Tell me a story", SourceSession: "session_20260129_034105_a264bd2a"},
					{ID: "haitian_story_002", Summary: "Edited", System: &System{Prefix: "p", RefAudio: ptrStr("resources/zh/ref.mp3")},
						Turns: []Turn{{UserText: "hi", AssistantText: "hello", AssistantAudio: nil}}},
				}},
			}},
		},
	}
}

func TestSaveLoad_PreservesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data_zh.json")
	doc := sampleDocument()

	require.NoError(t, Save(path, doc))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestMarshal_NoHTMLEscapingAndTrailingNewline(t *testing.T) {
	doc := Empty("<Demo> & more")
	data, err := Marshal(doc)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"title": "<Demo> & more"`)
	assert.Equal(t, byte('\n'), data[len(data)-1])
	assert.Contains(t, string(data), `"abilities": []`)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing catalog")
}

func TestCase_FullySpecified(t *testing.T) {
	doc := sampleDocument()
	cases := doc.Abilities[0].SubAbilities[0].Cases
	assert.False(t, cases[0].FullySpecified())
	assert.True(t, cases[1].FullySpecified())

	noSystem := Case{ID: "x", Turns: []Turn{{UserText: "a"}}}
	assert.False(t, noSystem.FullySpecified())
}

func TestDocument_HasFullData(t *testing.T) {
	assert.True(t, sampleDocument().HasFullData())
	assert.False(t, Empty("t").HasFullData())
}

func TestSources_LoadForLocale(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		BaseFile:  filepath.Join(dir, "config", "cases.json"),
		EditorDir: filepath.Join(dir, "editor"),
	}

	doc, path, err := src.LoadForLocale("zh")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Empty(t, path)

	require.NoError(t, Save(src.BaseFile, Empty("base")))
	doc, path, err = src.LoadForLocale("zh")
	require.NoError(t, err)
	assert.Equal(t, "base", doc.Meta.Title)
	assert.Equal(t, src.BaseFile, path)

	require.NoError(t, Save(src.EditorPath("zh"), Empty("editor")))
	doc, path, err = src.LoadForLocale("zh")
	require.NoError(t, err)
	assert.Equal(t, "editor", doc.Meta.Title)
	assert.Equal(t, filepath.Join(dir, "editor", "data_zh.json"), path)

	// en has no editor document and falls back to the base catalog.
	doc, _, err = src.LoadForLocale("en")
	require.NoError(t, err)
	assert.Equal(t, "base", doc.Meta.Title)
}

func TestSources_LoadForLocale_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	src := Sources{EditorDir: dir}
	require.NoError(t, os.WriteFile(src.EditorPath("zh"), []byte("{"), 0644))

	_, path, err := src.LoadForLocale("zh")
	require.Error(t, err)
	assert.Equal(t, src.EditorPath("zh"), path)
}
