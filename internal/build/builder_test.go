package build

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/session"
	"github.com/alexanderramin/showcase/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	root      string
	collected string
	resources string
	output    string
	sources   catalog.Sources
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	return &workspace{
		root:      root,
		collected: filepath.Join(root, "collected"),
		resources: filepath.Join(root, "editor", "resources"),
		output:    filepath.Join(root, "site"),
		sources: catalog.Sources{
			BaseFile:  filepath.Join(root, "config", "cases.json"),
			EditorDir: filepath.Join(root, "editor", "config"),
		},
	}
}

func (w *workspace) builder(locales ...string) *Builder {
	if len(locales) == 0 {
		locales = []string{"zh", "en"}
	}
	return NewBuilder(Options{
		OutputDir:    w.output,
		ResourcesDir: w.resources,
		Locales:      locales,
	}, w.sources, session.NewStore(w.collected, locales), nil)
}

func (w *workspace) saveEditorDoc(t *testing.T, locale string, doc *catalog.Document) {
	t.Helper()
	require.NoError(t, catalog.Save(w.sources.EditorPath(locale), doc))
}

func (w *workspace) readSite(t *testing.T, name string) *domain.Site {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(w.output, name))
	require.NoError(t, err)
	raw, err := ParseDataJS(content)
	require.NoError(t, err)
	var site domain.Site
	require.NoError(t, json.Unmarshal(raw, &site))
	return &site
}

func (w *workspace) readAudio(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(w.output, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func docWithCases(cases ...catalog.Case) *catalog.Document {
	return &catalog.Document{
		Meta: domain.Meta{Title: "MiniCPM-o 4.5", Description: "demo"},
		Abilities: []catalog.Ability{
			{ID: "haitian", Name: "Voice chat", SubAbilities: []catalog.SubAbility{
				{ID: "story", Name: "Storytelling", Cases: cases},
			}},
		},
	}
}

func ptr(s string) *string { return &s }

func TestRun_SessionDerivedCase(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_20260101_000000_aa"))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{
		ID: "story_001", Summary: "s", SourceSession: "session_20260101_000000_aa",
	}))

	report, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Locales, 1)
	assert.Equal(t, "data.js", report.Locales[0].Output)
	assert.Equal(t, 1, report.CaseCount())

	site := w.readSite(t, "data.js")
	assert.Equal(t, "MiniCPM-o 4.5", site.Meta.Title)
	c := site.Abilities[0].SubAbilities[0].Cases[0]
	assert.Equal(t, "story_001", c.ID)
	assert.Equal(t, "You are a helpful voice assistant.", c.System.Prefix)
	assert.Equal(t, "audio/story_001/ref.mp3", *c.System.RefAudio)
	require.Len(t, c.Turns, 2)
	assert.Equal(t, "hello", c.Turns[0].UserText)
	assert.Equal(t, "hi there", c.Turns[0].AssistantText)
	assert.Equal(t, "audio/story_001/000_assistant.mp3", *c.Turns[0].AssistantAudio)
	assert.Equal(t, "audio/story_001/001_assistant.mp3", *c.Turns[1].AssistantAudio)

	assert.Equal(t, "ref-session_20260101_000000_aa", w.readAudio(t, "audio/story_001/ref.mp3"))
	assert.Equal(t, "a1-session_20260101_000000_aa", w.readAudio(t, "audio/story_001/001_assistant.mp3"))

	content, err := os.ReadFile(filepath.Join(w.output, "data.js"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "// Auto-generated by showcase - DO NOT EDIT\nconst DEMO_DATA = {\n  \"meta\""))
	assert.True(t, strings.HasSuffix(string(content), "};\n"))
	assert.NotContains(t, string(content), "source_session")
}

func TestRun_TurnWithoutAudioPublishesNull(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1",
		testutil.WithRefAudio(nil),
		testutil.WithTurns(testutil.TurnSpec{User: "u", Assistant: "a"})))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "c1", SourceSession: "session_1"}))

	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(w.output, "data.js"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"ref_audio": null`)
	assert.Contains(t, string(content), `"assistant_audio": null`)
}

func TestRun_AudioAfterSilentTurnIsPublished(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1",
		testutil.WithRefAudio(nil),
		testutil.WithTurns(
			testutil.TurnSpec{User: "u0", Assistant: "a0"},
			testutil.TurnSpec{User: "u1", Assistant: "a1", Audio: []byte("late")},
		)))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "c1", SourceSession: "session_1"}))

	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)

	turns := w.readSite(t, "data.js").Abilities[0].SubAbilities[0].Cases[0].Turns
	require.Len(t, turns, 2)
	assert.Nil(t, turns[0].AssistantAudio)
	require.NotNil(t, turns[1].AssistantAudio)
	assert.Equal(t, "audio/c1/001_assistant.mp3", *turns[1].AssistantAudio)
	assert.Equal(t, "late", w.readAudio(t, "audio/c1/001_assistant.mp3"))
}

func TestRun_UserTextOverride(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{
		ID: "c1", SourceSession: "session_1",
		UserTextOverride: map[string]string{"1": "corrected transcript", "7": "no such turn"},
	}))

	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)

	turns := w.readSite(t, "data.js").Abilities[0].SubAbilities[0].Cases[0].Turns
	require.Len(t, turns, 2)
	assert.Equal(t, "hello", turns[0].UserText)
	assert.Equal(t, "corrected transcript", turns[1].UserText)
	assert.Equal(t, "sure", turns[1].AssistantText)
}

func TestRun_FullySpecifiedCaseWinsOverSession(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	testutil.WriteFile(t, filepath.Join(w.resources, "zh", "voices", "ref.wav"), []byte("uploaded-ref"))

	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{
		ID: "c1", Summary: "edited", SourceSession: "session_1",
		UserTextOverride: map[string]string{"0": "ignored for stored cases"},
		System:           &catalog.System{Prefix: "edited prefix", RefAudio: ptr("resources/zh/voices/ref.wav"), Suffix: ""},
		Turns: []catalog.Turn{
			{UserText: "edited user", AssistantText: "edited reply", AssistantAudio: ptr("audio/c1/000_assistant.mp3")},
			{UserText: "remote", AssistantText: "r", AssistantAudio: ptr("https://cdn.example.com/x.mp3")},
			{UserText: "silent", AssistantText: "s"},
		},
	}))

	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)

	c := w.readSite(t, "data.js").Abilities[0].SubAbilities[0].Cases[0]
	assert.Equal(t, "edited", c.Summary)
	assert.Equal(t, "edited prefix", c.System.Prefix)
	assert.Equal(t, "audio/c1/ref.wav", *c.System.RefAudio)
	require.Len(t, c.Turns, 3)
	assert.Equal(t, "edited user", c.Turns[0].UserText)
	assert.Equal(t, "audio/c1/000_assistant.mp3", *c.Turns[0].AssistantAudio)
	assert.Equal(t, "https://cdn.example.com/x.mp3", *c.Turns[1].AssistantAudio)
	assert.Nil(t, c.Turns[2].AssistantAudio)

	assert.Equal(t, "uploaded-ref", w.readAudio(t, "audio/c1/ref.wav"))
	// audio/ references from an earlier build resolve to the session original.
	assert.Equal(t, "a0-session_1", w.readAudio(t, "audio/c1/000_assistant.mp3"))
}

func TestRun_VerbatimCaseWithCollectedPath(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{
		ID:     "c1",
		System: &catalog.System{RefAudio: ptr("zh/story/session_1/system_ref_audio.mp3")},
		Turns:  []catalog.Turn{{UserText: "u", AssistantText: "a"}},
	}))

	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ref-session_1", w.readAudio(t, "audio/c1/ref.mp3"))
}

func TestRun_VerbatimCaseUnresolvedAudioFails(t *testing.T) {
	w := newWorkspace(t)
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{
		ID:     "c1",
		System: &catalog.System{},
		Turns:  []catalog.Turn{{UserText: "u", AssistantText: "a", AssistantAudio: ptr("resources/zh/missing.mp3")}},
	}))

	_, err := w.builder("zh").Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `turns[0].assistant_audio: "resources/zh/missing.mp3": audio file not found`)
}

func TestRun_MissingSessionIsFatalAndKeepsPreviousOutput(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "c1", SourceSession: "session_1"}))

	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(w.output, "data.js"))
	require.NoError(t, err)

	w.saveEditorDoc(t, "zh", docWithCases(
		catalog.Case{ID: "c1", SourceSession: "session_1"},
		catalog.Case{ID: "c2", SourceSession: "session_missing"},
		catalog.Case{ID: "c3", SourceSession: "session_also_missing"},
	))
	_, err = w.builder("zh").Run(context.Background())
	require.Error(t, err)

	var buildErr *Error
	require.True(t, errors.As(err, &buildErr))
	assert.Len(t, buildErr.Errs, 2)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Contains(t, err.Error(), "build failed (2 errors)")
	assert.Contains(t, err.Error(), "[zh] case haitian/story/c2")

	after, err := os.ReadFile(filepath.Join(w.output, "data.js"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "ref-session_1", w.readAudio(t, "audio/c1/ref.mp3"))

	entries, err := os.ReadDir(w.output)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".audio-"), "staging dir left behind: %s", e.Name())
	}
}

func TestRun_CaseWithoutDataIsSkipped(t *testing.T) {
	w := newWorkspace(t)
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "draft", Summary: "not recorded yet"}))

	report, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"haitian/story/draft"}, report.Locales[0].Skipped)
	assert.Equal(t, 0, report.CaseCount())

	site := w.readSite(t, "data.js")
	assert.Empty(t, site.Abilities[0].SubAbilities[0].Cases)
	assert.NotNil(t, site.Abilities[0].SubAbilities[0].Cases, "empty case lists render as []")
}

func TestRun_InvalidCatalogFails(t *testing.T) {
	w := newWorkspace(t)
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "dup"}, catalog.Case{ID: "dup"}))

	_, err := w.builder("zh").Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate id "dup"`)
	assert.NoFileExists(t, filepath.Join(w.output, "data.js"))
}

func TestRun_IsIdempotent(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_2",
		testutil.WithLang("en"), testutil.WithCategory("role_play")))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "zh_1", SourceSession: "session_1"}))
	enDoc := docWithCases(catalog.Case{ID: "en_1", SourceSession: "session_2"})
	enDoc.Abilities[0].SessionLang = "en"
	w.saveEditorDoc(t, "en", enDoc)

	first, err := w.builder().Run(context.Background())
	require.NoError(t, err)
	second, err := w.builder().Run(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(first.Artifacts, second.Artifacts); diff != "" {
		t.Fatalf("artifacts changed between identical builds (-first +second):\n%s", diff)
	}
	assert.True(t, domain.FingerprintOf(first.Artifacts).Equal(domain.FingerprintOf(second.Artifacts)))

	paths := make([]string, 0, len(second.Artifacts))
	for _, a := range second.Artifacts {
		paths = append(paths, a.Path)
	}
	assert.Equal(t, []string{
		"audio/en_1/000_assistant.mp3",
		"audio/en_1/001_assistant.mp3",
		"audio/en_1/ref.mp3",
		"audio/zh_1/000_assistant.mp3",
		"audio/zh_1/001_assistant.mp3",
		"audio/zh_1/ref.mp3",
		"data.js",
		"data_en.js",
	}, paths)
}

func TestRun_RemovedCaseAudioDoesNotLeak(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_2"))
	w.saveEditorDoc(t, "zh", docWithCases(
		catalog.Case{ID: "keep", SourceSession: "session_1"},
		catalog.Case{ID: "drop", SourceSession: "session_2"},
	))
	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(w.output, "audio", "drop"))

	// A file nobody generated must not survive either.
	testutil.WriteFile(t, filepath.Join(w.output, "audio", "manual.mp3"), []byte("stray"))

	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "keep", SourceSession: "session_1"}))
	_, err = w.builder("zh").Run(context.Background())
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(w.output, "audio", "drop"))
	assert.NoFileExists(t, filepath.Join(w.output, "audio", "manual.mp3"))
	assert.DirExists(t, filepath.Join(w.output, "audio", "keep"))
}

func TestRun_OtherOutputFilesArePreserved(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteFile(t, filepath.Join(w.output, "index.html"), []byte("<html></html>"))
	w.saveEditorDoc(t, "zh", docWithCases())

	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(w.output, "index.html"))
}

func TestRun_LocaleFallbackAndStaleDataFile(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteFile(t, filepath.Join(w.output, "data_fr.js"), []byte("const DEMO_DATA = {};"))
	require.NoError(t, catalog.Save(w.sources.BaseFile, docWithCases()))
	w.saveEditorDoc(t, "en", &catalog.Document{Meta: domain.Meta{Title: "English"}})

	report, err := w.builder("zh", "en").Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Locales, 2)
	assert.Equal(t, w.sources.BaseFile, report.Locales[0].Source)
	assert.Equal(t, w.sources.EditorPath("en"), report.Locales[1].Source)
	assert.Equal(t, "English", w.readSite(t, "data_en.js").Meta.Title)

	// Without the base catalog only en resolves; zh and fr lose their files.
	require.NoError(t, os.Remove(w.sources.BaseFile))
	report, err = w.builder("zh", "en", "fr").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"zh", "fr"}, report.MissingLocales)
	assert.NoFileExists(t, filepath.Join(w.output, "data_fr.js"))
	assert.NoFileExists(t, filepath.Join(w.output, "data.js"))
	assert.FileExists(t, filepath.Join(w.output, "data_en.js"))
}

func TestRun_ConflictingAudioAcrossLocales(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_2", testutil.WithLang("en")))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "same", SourceSession: "session_1"}))
	enDoc := docWithCases(catalog.Case{ID: "same", SourceSession: "session_2"})
	enDoc.Abilities[0].SessionLang = "en"
	w.saveEditorDoc(t, "en", enDoc)

	_, err := w.builder().Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `case id "same" publishes different audio for audio/same/ref.mp3 in zh and en`)
	assert.NoFileExists(t, filepath.Join(w.output, "data.js"))
}

func TestRun_LocalesShareBaseCatalog(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	require.NoError(t, catalog.Save(w.sources.BaseFile, docWithCases(
		catalog.Case{ID: "haitian_story_001", SourceSession: "session_1"},
	)))

	report, err := w.builder("zh", "en").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.CaseCount())

	for _, name := range []string{"data.js", "data_en.js"} {
		c := w.readSite(t, name).Abilities[0].SubAbilities[0].Cases[0]
		assert.Equal(t, "audio/haitian_story_001/ref.mp3", *c.System.RefAudio, name)
	}
	assert.Equal(t, "ref-session_1", w.readAudio(t, "audio/haitian_story_001/ref.mp3"))
	assert.Equal(t, "a1-session_1", w.readAudio(t, "audio/haitian_story_001/001_assistant.mp3"))
}

func TestRun_TranslatedEditorDocReusesDefaultLocaleSessions(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_1"))
	w.saveEditorDoc(t, "zh", docWithCases(catalog.Case{ID: "c1", SourceSession: "session_1"}))
	w.saveEditorDoc(t, "en", docWithCases(catalog.Case{
		ID: "c1", SourceSession: "session_1",
		UserTextOverride: map[string]string{"0": "hello (en)"},
	}))

	_, err := w.builder("zh", "en").Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "hello", w.readSite(t, "data.js").Abilities[0].SubAbilities[0].Cases[0].Turns[0].UserText)
	en := w.readSite(t, "data_en.js").Abilities[0].SubAbilities[0].Cases[0]
	assert.Equal(t, "hello (en)", en.Turns[0].UserText)
	assert.Equal(t, "audio/c1/000_assistant.mp3", *en.Turns[0].AssistantAudio)
	assert.Equal(t, "a0-session_1", w.readAudio(t, "audio/c1/000_assistant.mp3"))
}

func TestRun_IdenticalAudioFromDifferentSourcesIsShared(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteFile(t, filepath.Join(w.resources, "zh", "ref.mp3"), []byte("voice"))
	testutil.WriteFile(t, filepath.Join(w.resources, "en", "ref.mp3"), []byte("voice"))
	stored := func(ref string) *catalog.Document {
		return docWithCases(catalog.Case{
			ID:     "c1",
			System: &catalog.System{RefAudio: ptr(ref)},
			Turns:  []catalog.Turn{{UserText: "u", AssistantText: "a"}},
		})
	}
	w.saveEditorDoc(t, "zh", stored("resources/zh/ref.mp3"))
	w.saveEditorDoc(t, "en", stored("resources/en/ref.mp3"))

	_, err := w.builder("zh", "en").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "voice", w.readAudio(t, "audio/c1/ref.mp3"))
}

func TestRun_SessionLangOverride(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteSession(t, w.collected, testutil.NewSessionSpec("session_en", testutil.WithLang("en")))
	doc := docWithCases(catalog.Case{ID: "c1", SourceSession: "session_en"})
	doc.Abilities[0].SessionLang = "en"
	w.saveEditorDoc(t, "zh", doc)

	_, err := w.builder("zh").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ref-session_en", w.readAudio(t, "audio/c1/ref.mp3"))
}

func TestRun_CustomTemplate(t *testing.T) {
	w := newWorkspace(t)
	tmplPath := filepath.Join(w.root, "data.tmpl")
	testutil.WriteFile(t, tmplPath, []byte("window.DATA_{{ .Locale }} = {{ .JSON }}; // {{ .Site.CaseCount }}\n"))
	w.saveEditorDoc(t, "zh", docWithCases())

	b := NewBuilder(Options{OutputDir: w.output, Locales: []string{"zh"}, TemplatePath: tmplPath},
		w.sources, session.NewStore(w.collected, nil), nil)
	_, err := b.Run(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(w.output, "data.js"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "window.DATA_zh = {"))
	assert.True(t, strings.HasSuffix(string(content), "}; // 0\n"))
}

func TestRun_CancelledContext(t *testing.T) {
	w := newWorkspace(t)
	w.saveEditorDoc(t, "zh", docWithCases())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.builder("zh").Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(w.output, "data.js"))
}
