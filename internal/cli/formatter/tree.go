package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CaseKind distinguishes how a case will be published.
type CaseKind int

const (
	KindGroup CaseKind = iota
	// KindFull cases carry their own dialogue.
	KindFull
	// KindDerived cases are read from a recorded session at build time.
	KindDerived
	// KindEmpty cases have neither and are skipped by the build.
	KindEmpty
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	Kind   CaseKind
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders TreeItems as an indented tree using box-drawing
// connectors. Case kinds get a marker and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0
	// open[l] records whether the ancestor at level l still has siblings
	// below, which decides between a pipe and blank indent.
	open := map[int]bool{}

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for l := 1; l < item.Level; l++ {
				if open[l] {
					prefix += treePipe
				} else {
					prefix += treeBlank
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}
		open[item.Level] = !item.IsLast

		var title string
		switch item.Kind {
		case KindFull:
			title = StyleGreen.Render("● ") + item.Title
		case KindDerived:
			title = StyleBlue.Render("◌ ") + item.Title
		case KindEmpty:
			title = StyleYellow.Render("! ") + Dim(item.Title)
		default:
			title = Bold(item.Title)
		}

		content := prefix + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleDim.Render("[ " + item.Detail + " ]")
		}
		maxContentWidth = max(maxContentWidth, lipgloss.Width(content))
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge == "" {
			b.WriteString(li.content + "\n")
			continue
		}
		pad := max(maxContentWidth-lipgloss.Width(li.content), 0)
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
	}
	return b.String()
}
