package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/showcase/internal/scaffold"
)

// FormatScaffoldReport lists the cases written per sub-ability.
func FormatScaffoldReport(r *scaffold.Report, file string) string {
	var b strings.Builder
	for _, e := range r.Entries {
		label := fmt.Sprintf("%s > %s", e.AbilityName, e.SubAbilityName)
		source := Dim(fmt.Sprintf("(%s/%s)", e.Lang, e.Category))
		if e.Missing {
			b.WriteString(fmt.Sprintf("%s %s %s %s\n", StyleYellow.Render("!"), label, source, StyleYellow.Render("no sessions; cases kept")))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", StyleGreen.Render("✔"), label, source, Plural(len(e.Sessions), "case")))
		for _, s := range e.Sessions {
			b.WriteString(Dim(fmt.Sprintf("    %s: %s (%s)", s.SessionID, s.Summary, Plural(s.Turns, "turn"))) + "\n")
		}
	}
	for _, key := range r.Unmatched {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("  WARNING: mapping %s has no matching sub-ability", key)) + "\n")
	}
	b.WriteString(fmt.Sprintf("\nSaved %s to %s\n", Plural(r.CaseCount(), "case"), file))
	return b.String()
}
