package formatter

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/showcase/internal/build"
	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/publish"
	"github.com/alexanderramin/showcase/internal/scaffold"
	"github.com/alexanderramin/showcase/internal/service"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestFormatBuildResult(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	result := &service.BuildResult{
		Run: &domain.BuildRun{
			ID:         "0123456789abcdef",
			StartedAt:  started,
			FinishedAt: ptr(started.Add(1500 * time.Millisecond)),
			Status:     domain.BuildSucceeded,
			CaseCount:  3,
		},
		Report: &build.Report{
			Locales: []build.LocaleReport{
				{Locale: "zh", Source: "/w/config/cases.json", Output: "data.js", Cases: 2, Skipped: []string{"a/b/empty"}},
				{Locale: "en", Source: "/w/editor/config/data_en.json", Output: "data_en.js", Cases: 1},
			},
			MissingLocales: []string{"fr"},
		},
		Change: service.ChangeIdentical,
	}

	got := stripANSI(FormatBuildResult(result))

	assert.Contains(t, got, "LOCALE  SOURCE")
	assert.Contains(t, got, "cases.json")
	assert.Contains(t, got, "data_en.js")
	assert.Contains(t, got, "WARNING: [zh] a/b/empty has no dialogue and no source_session; skipped")
	assert.Contains(t, got, "WARNING: [fr] no catalog; data file not written")
	assert.Contains(t, got, "✔ succeeded  01234567  3 cases  in 1.5s  = identical")
	assert.Empty(t, FormatBuildResult(nil))
}

func TestFormatHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ok := testRun("aaaaaaaa-1", now.Add(-10*time.Minute), domain.BuildSucceeded)
	ok.Artifacts = []domain.Artifact{{Path: "data.js"}, {Path: "audio/c1/ref.mp3"}}
	failed := testRun("bbbbbbbb-2", now.Add(-2*time.Hour), domain.BuildFailed)
	failed.Error = "build failed (1 errors):\n  - session missing"

	got := stripANSI(FormatHistory([]service.HistoryEntry{
		{Run: ok, Change: service.ChangeChanged},
		{Run: failed},
	}, now))

	assert.Contains(t, got, "RUN")
	assert.Contains(t, got, "aaaaaaaa")
	assert.Contains(t, got, "10m ago")
	assert.Contains(t, got, "Δ changed")
	assert.Contains(t, got, "✖ failed")
	assert.Contains(t, got, "build failed (1 errors):")
	assert.NotContains(t, got, "session missing")

	assert.Contains(t, stripANSI(FormatHistory(nil, now)), "No builds recorded yet.")
}

func testRun(id string, started time.Time, status domain.BuildStatus) *domain.BuildRun {
	finished := started.Add(2 * time.Second)
	return &domain.BuildRun{ID: id, StartedAt: started, FinishedAt: &finished, Status: status}
}

func TestFormatValidation(t *testing.T) {
	got := stripANSI(FormatValidation([]service.LocaleValidation{
		{Locale: "zh", Source: "/w/config/cases.json"},
		{Locale: "en", Source: "/w/editor/config/data_en.json", Errs: []error{
			errors.New("abilities[0].name is required"),
		}},
	}))

	assert.Contains(t, got, "✔ zh (cases.json)")
	assert.Contains(t, got, "✖ en (data_en.json) 1 error")
	assert.Contains(t, got, "  - abilities[0].name is required")
	assert.Contains(t, stripANSI(FormatValidation(nil)), "No catalogs found.")
}

func TestFormatCatalogTree(t *testing.T) {
	doc := &catalog.Document{
		Meta: domain.Meta{Title: "MiniCPM-o 4.5"},
		Abilities: []catalog.Ability{{
			ID: "haitian", Name: "Haitian", SessionLang: "zh",
			SubAbilities: []catalog.SubAbility{{
				ID: "story", Name: "Story",
				Cases: []catalog.Case{
					{ID: "c1", Summary: "bedtime", SourceSession: "session_1"},
					{ID: "c2", System: &catalog.System{}, Turns: []catalog.Turn{{}, {}}},
					{ID: "c3"},
				},
			}},
		}},
	}

	got := stripANSI(FormatCatalogTree(doc, "zh", "/w/config/cases.json"))

	assert.Contains(t, got, "MiniCPM-o 4.5  [zh · cases.json]")
	assert.Contains(t, got, "Haitian")
	assert.Contains(t, got, "haitian · sessions: zh")
	assert.Contains(t, got, "story · 3 cases")
	assert.Contains(t, got, "◌ c1 bedtime")
	assert.Contains(t, got, "[ session_1 ]")
	assert.Contains(t, got, "● c2")
	assert.Contains(t, got, "[ 2 turns ]")
	assert.Contains(t, got, "! c3")
	assert.Contains(t, got, "3 cases  ● full")

	empty := stripANSI(FormatCatalogTree(catalog.Empty(""), "en", ""))
	assert.Contains(t, empty, "(untitled)  [en · no catalog]")
	assert.Contains(t, empty, "No abilities.")
}

func TestFormatSessionList(t *testing.T) {
	got := stripANSI(FormatSessionList([]domain.SessionInfo{
		{ID: "session_20260129_034105_a2", Lang: "zh", Category: "story", Timestamp: "20260129_034105", HasRef: true, TurnCount: 4},
		{ID: "session_odd", Lang: "en", Category: "qa", TurnCount: 1},
	}))

	assert.Contains(t, got, "LANG")
	assert.Contains(t, got, "2026-01-29 03:41:05")
	assert.Contains(t, got, "session_odd")
	assert.Contains(t, got, "--")
	assert.Contains(t, got, "2 sessions")
	assert.Contains(t, stripANSI(FormatSessionList(nil)), "No sessions found.")
}

func TestFormatSessionDetail(t *testing.T) {
	got := stripANSI(FormatSessionDetail(&domain.SessionDetail{
		Path:   "zh/story/session_1",
		System: domain.SessionDetailSystem{Prefix: "be kind", RefAudio: "zh/story/session_1/system_ref_audio.mp3"},
		Turns: []domain.SessionDetailTurn{
			{UserText: "hello", AssistantText: "hi", AssistantAudio: "zh/story/session_1/000_assistant_audio0.mp3"},
			{AssistantText: "bye"},
		},
	}))

	assert.Contains(t, got, "ZH/STORY/SESSION_1")
	assert.Contains(t, got, "system  be kind")
	assert.Contains(t, got, "user      hello")
	assert.Contains(t, got, "assistant hi")
	assert.Contains(t, got, "♪ zh/story/session_1/000_assistant_audio0.mp3")
	assert.Contains(t, got, "#1\nassistant bye")
	assert.NotContains(t, got, "suffix")
}

func TestFormatScaffoldReport(t *testing.T) {
	report := &scaffold.Report{
		Entries: []scaffold.Entry{
			{
				AbilityName: "Haitian", SubAbilityName: "Story", Category: "story", Lang: "zh",
				Sessions: []domain.SessionSummary{{SessionID: "session_a", Summary: "hello", Turns: 2}},
			},
			{AbilityName: "English", SubAbilityName: "Chat", Category: "role_play", Lang: "en", Missing: true},
		},
		Unmatched: []string{"ghost/sub"},
	}

	got := stripANSI(FormatScaffoldReport(report, "config/cases.json"))

	assert.Contains(t, got, "✔ Haitian > Story (zh/story) 1 case")
	assert.Contains(t, got, "session_a: hello (2 turns)")
	assert.Contains(t, got, "! English > Chat (en/role_play) no sessions; cases kept")
	assert.Contains(t, got, "WARNING: mapping ghost/sub has no matching sub-ability")
	assert.Contains(t, got, "Saved 1 case to config/cases.json")
}

func TestFormatPublishResult(t *testing.T) {
	result := &publish.Result{
		Target: "gs://demo/site",
		DryRun: true,
		Plan: publish.Plan{
			Upload:    []domain.Artifact{{Path: "data.js", Size: 2048}},
			Delete:    []string{"site/audio/old/ref.mp3"},
			Unchanged: []string{"site/data_en.js"},
		},
	}

	got := stripANSI(FormatPublishResult(result))

	assert.Contains(t, got, "Plan for gs://demo/site")
	assert.Contains(t, got, "+ data.js 2.0 KiB")
	assert.Contains(t, got, "- site/audio/old/ref.mp3")
	assert.Contains(t, got, "1 upload, 1 delete, 1 unchanged")
}
