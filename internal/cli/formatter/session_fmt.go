package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/showcase/internal/domain"
)

// FormatSessionList renders recorded sessions, newest first.
func FormatSessionList(sessions []domain.SessionInfo) string {
	if len(sessions) == 0 {
		return Dim("No sessions found.") + "\n"
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		ref := Dim("-")
		if s.HasRef {
			ref = StyleGreen.Render("✔")
		}
		rows = append(rows, []string{
			s.Lang,
			s.Category,
			s.ID,
			formatSessionTimestamp(s.Timestamp),
			strconv.Itoa(s.TurnCount),
			ref,
		})
	}
	return Table{
		Headers: []string{"LANG", "CATEGORY", "SESSION", "RECORDED", "TURNS", "REF"},
		Rows:    rows,
		Right:   map[int]bool{4: true},
	}.Render() + Dim(Plural(len(sessions), "session")) + "\n"
}

// formatSessionTimestamp turns "20260129_034105" into "2026-01-29 03:41:05".
func formatSessionTimestamp(ts string) string {
	if len(ts) != 15 || ts[8] != '_' {
		return Dim("--")
	}
	return fmt.Sprintf("%s-%s-%s %s:%s:%s", ts[0:4], ts[4:6], ts[6:8], ts[9:11], ts[11:13], ts[13:15])
}

// FormatSessionDetail renders a session transcript.
func FormatSessionDetail(d *domain.SessionDetail) string {
	var b strings.Builder
	b.WriteString(Header(d.Path) + "\n")
	if d.System.Prefix != "" {
		b.WriteString(StylePurple.Render("system") + "  " + d.System.Prefix + "\n")
	}
	if d.System.RefAudio != "" {
		b.WriteString(StylePurple.Render("ref   ") + "  " + Dim(d.System.RefAudio) + "\n")
	}
	if d.System.Suffix != "" {
		b.WriteString(StylePurple.Render("suffix") + "  " + d.System.Suffix + "\n")
	}

	for i, t := range d.Turns {
		b.WriteString("\n" + StyleHeader.Render(fmt.Sprintf("#%d", i)) + "\n")
		if t.UserText != "" {
			b.WriteString(StyleBlue.Render("user      ") + t.UserText + "\n")
		}
		b.WriteString(StyleGreen.Render("assistant ") + t.AssistantText + "\n")
		if t.AssistantAudio != "" {
			b.WriteString(Dim("          ♪ "+t.AssistantAudio) + "\n")
		}
	}
	return b.String()
}
