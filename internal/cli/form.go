package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// showcaseHuhTheme returns a huh theme matching the formatter palette.
func showcaseHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// subAbilityOptions lists every sub-ability of doc as "ability/sub".
func subAbilityOptions(doc *catalog.Document) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, a := range doc.Abilities {
		for _, sub := range a.SubAbilities {
			ref := catalog.Ref{Ability: a.ID, SubAbility: sub.ID}.String()
			label := fmt.Sprintf("%s > %s (%d cases)", a.Name, sub.Name, len(sub.Cases))
			opts = append(opts, huh.NewOption(label, ref))
		}
	}
	return opts
}

// caseAddForm asks for the fields of a new case that were not given as
// flags.
func caseAddForm(doc *catalog.Document, v *caseValues) (*huh.Form, error) {
	var fields []huh.Field

	if v.Sub == "" {
		opts := subAbilityOptions(doc)
		if len(opts) == 0 {
			return nil, errors.New("the catalog has no sub-abilities to add a case to")
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Sub-ability").
			Options(opts...).
			Value(&v.Sub))
	}
	if v.ID == "" {
		fields = append(fields, huh.NewInput().
			Title("Case ID").
			Placeholder("haitian_story_004").
			Value(&v.ID).
			Validate(validateCaseID))
	}
	if v.Summary == "" {
		fields = append(fields, huh.NewInput().
			Title("Summary").
			Description("One line shown on the case card").
			Value(&v.Summary))
	}
	if v.Session == "" {
		fields = append(fields, huh.NewInput().
			Title("Source session").
			Description("Blank to author the dialogue in the editor").
			Placeholder("session_20260129_034105_a264bd2a").
			Value(&v.Session))
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(showcaseHuhTheme()).
		WithShowHelp(false), nil
}

func validateCaseID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("case ID is required")
	}
	if strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return errors.New("case ID must not contain path separators or \"..\"")
	}
	return nil
}

func (app *App) runForm(form *huh.Form) error {
	run := form.Run
	if app.RunForm != nil {
		run = func() error { return app.RunForm(form) }
	}
	if err := run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("aborted")
		}
		return err
	}
	return nil
}
