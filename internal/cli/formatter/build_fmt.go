package formatter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/showcase/internal/build"
	"github.com/alexanderramin/showcase/internal/service"
)

// FormatBuildResult renders a finished build: one row per published locale,
// skipped cases, locales without a catalog, and the artifact comparison.
func FormatBuildResult(result *service.BuildResult) string {
	var b strings.Builder
	if result == nil {
		return ""
	}

	if result.Report != nil {
		b.WriteString(formatReport(result.Report))
	}

	if run := result.Run; run != nil {
		line := fmt.Sprintf("%s  %s  %s", BuildStatusIndicator(run.Status), Dim(shortID(run.ID)), Plural(run.CaseCount, "case"))
		if run.FinishedAt != nil {
			line += Dim("  in " + HumanDuration(run.FinishedAt.Sub(run.StartedAt)))
		}
		if result.Change != service.ChangeNone {
			line += "  " + ChangeBadge(string(result.Change))
		}
		b.WriteString("\n" + line + "\n")
	}
	return b.String()
}

func formatReport(r *build.Report) string {
	var b strings.Builder
	if len(r.Locales) > 0 {
		rows := make([][]string, 0, len(r.Locales))
		for _, l := range r.Locales {
			rows = append(rows, []string{
				Bold(l.Locale),
				filepath.Base(l.Source),
				l.Output,
				strconv.Itoa(l.Cases),
				strconv.Itoa(len(l.Skipped)),
			})
		}
		b.WriteString(Table{
			Headers: []string{"LOCALE", "SOURCE", "OUTPUT", "CASES", "SKIPPED"},
			Rows:    rows,
			Right:   map[int]bool{3: true, 4: true},
		}.Render())
	}
	for _, l := range r.Locales {
		for _, ref := range l.Skipped {
			b.WriteString(StyleYellow.Render(fmt.Sprintf("  WARNING: [%s] %s has no dialogue and no source_session; skipped", l.Locale, ref)) + "\n")
		}
	}
	for _, locale := range r.MissingLocales {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("  WARNING: [%s] no catalog; data file not written", locale)) + "\n")
	}
	return b.String()
}

// FormatHistory renders recent build runs, newest first.
func FormatHistory(entries []service.HistoryEntry, now time.Time) string {
	if len(entries) == 0 {
		return Dim("No builds recorded yet.") + "\n"
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		run := e.Run
		duration := Dim("--")
		if run.FinishedAt != nil {
			duration = HumanDuration(run.FinishedAt.Sub(run.StartedAt))
		}
		note := ChangeBadge(string(e.Change))
		if run.Error != "" {
			note = StyleRed.Render(firstLine(run.Error))
		}
		rows = append(rows, []string{
			Dim(shortID(run.ID)),
			HumanTimestampFrom(run.StartedAt, now),
			BuildStatusIndicator(run.Status),
			strconv.Itoa(run.CaseCount),
			strconv.Itoa(len(run.Artifacts)),
			duration,
			note,
		})
	}
	return Table{
		Headers: []string{"RUN", "STARTED", "STATUS", "CASES", "FILES", "TOOK", "ARTIFACTS"},
		Rows:    rows,
		Right:   map[int]bool{3: true, 4: true},
	}.Render()
}

// FormatValidation renders per-locale validation results.
func FormatValidation(results []service.LocaleValidation) string {
	if len(results) == 0 {
		return Dim("No catalogs found.") + "\n"
	}
	var b strings.Builder
	for _, r := range results {
		source := Dim("(" + filepath.Base(r.Source) + ")")
		if len(r.Errs) == 0 {
			b.WriteString(fmt.Sprintf("%s %s %s\n", StyleGreen.Render("✔"), Bold(r.Locale), source))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", StyleRed.Render("✖"), Bold(r.Locale), source,
			StyleRed.Render(Plural(len(r.Errs), "error"))))
		for _, e := range r.Errs {
			b.WriteString("  - " + e.Error() + "\n")
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
