package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/showcase/internal/catalog"
)

// FormatCatalogTree renders the ability hierarchy of doc with one line per
// case. Badges show the session a derived case reads or the turn count of a
// fully specified one.
func FormatCatalogTree(doc *catalog.Document, locale, source string) string {
	var b strings.Builder
	title := doc.Meta.Title
	if title == "" {
		title = "(untitled)"
	}
	origin := "no catalog"
	if source != "" {
		origin = filepath.Base(source)
	}
	b.WriteString(fmt.Sprintf("%s  %s\n\n", Bold(title), Dim(fmt.Sprintf("[%s · %s]", locale, origin))))

	if len(doc.Abilities) == 0 {
		b.WriteString(Dim("No abilities.") + "\n")
		return b.String()
	}

	var items []TreeItem
	total := 0
	for _, a := range doc.Abilities {
		detail := a.ID
		if a.SessionLang != "" {
			detail += " · sessions: " + a.SessionLang
		}
		items = append(items, TreeItem{Title: a.Name, Detail: detail})
		for si, sub := range a.SubAbilities {
			items = append(items, TreeItem{
				Title:  sub.Name,
				Level:  1,
				IsLast: si == len(a.SubAbilities)-1,
				Detail: fmt.Sprintf("%s · %s", sub.ID, Plural(len(sub.Cases), "case")),
			})
			for ci, c := range sub.Cases {
				items = append(items, caseItem(c, ci == len(sub.Cases)-1))
				total++
			}
		}
	}
	b.WriteString(RenderTree(items))
	b.WriteString("\n" + Dim(Plural(total, "case")+"  ● full  ◌ from session  ! skipped") + "\n")
	return b.String()
}

func caseItem(c catalog.Case, last bool) TreeItem {
	item := TreeItem{Title: c.ID, Level: 2, IsLast: last}
	if c.Summary != "" {
		item.Title += " " + Dim(c.Summary)
	}
	switch {
	case c.FullySpecified():
		item.Kind = KindFull
		item.Detail = Plural(len(c.Turns), "turn")
	case c.SourceSession != "":
		item.Kind = KindDerived
		item.Detail = c.SourceSession
	default:
		item.Kind = KindEmpty
		item.Detail = "no data"
	}
	return item
}
