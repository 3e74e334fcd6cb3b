package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/showcase/internal/publish"
)

// FormatPublishResult summarizes a mirror run or plan.
func FormatPublishResult(r *publish.Result) string {
	var b strings.Builder
	verb := "Published to"
	if r.DryRun {
		verb = "Plan for"
	}
	b.WriteString(fmt.Sprintf("%s %s\n", verb, Bold(r.Target)))
	for _, a := range r.Plan.Upload {
		b.WriteString(fmt.Sprintf("  %s %s %s\n", StyleGreen.Render("+"), a.Path, Dim(HumanBytes(a.Size))))
	}
	for _, name := range r.Plan.Delete {
		b.WriteString(fmt.Sprintf("  %s %s\n", StyleRed.Render("-"), name))
	}
	b.WriteString(Dim(fmt.Sprintf("%d upload, %d delete, %d unchanged",
		len(r.Plan.Upload), len(r.Plan.Delete), len(r.Plan.Unchanged))) + "\n")
	return b.String()
}
