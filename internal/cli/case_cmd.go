package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the ability hierarchy the build would publish",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := app.resolveLocale(locale)
			if err != nil {
				return err
			}
			doc, source, err := app.Catalog.Document(cmd.Context(), loc)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCatalogTree(doc, loc, source))
			return nil
		},
	}

	localeFlag(cmd.Flags(), &locale)
	return cmd
}

func newCaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Add, remove or reorder abilities, sub-abilities and cases",
		Long: "Case edits are written to the locale's editor document. A locale without\n" +
			"one starts from a copy of the base catalog.",
	}

	cmd.AddCommand(
		newCaseAddCmd(app),
		newAbilityAddCmd(app),
		newSubAbilityAddCmd(app),
		newCaseRemoveCmd(app),
		newCaseMoveCmd(app),
	)

	return cmd
}

// caseValues are the inputs of `case add`, shared by flags and the form.
type caseValues struct {
	Sub     string
	ID      string
	Summary string
	Session string
	At      int
}

func newCaseAddCmd(app *App) *cobra.Command {
	var locale string
	var v caseValues

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a case to a sub-ability",
		Example: "  showcase case add --sub haitian/story --id haitian_story_004 \\\n" +
			"    --summary \"Bedtime story\" --session session_20260129_034105_a264bd2a",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loc, err := app.resolveLocale(locale)
			if err != nil {
				return err
			}

			if v.Sub == "" || v.ID == "" {
				if !app.interactive() {
					return errors.New(`required flag(s) "sub", "id" not set`)
				}
				doc, _, err := app.Catalog.Document(ctx, loc)
				if err != nil {
					return err
				}
				form, err := caseAddForm(doc, &v)
				if err != nil {
					return err
				}
				if err := app.runForm(form); err != nil {
					return err
				}
			}

			ref, err := catalog.ParseRef(v.Sub)
			if err != nil {
				return err
			}
			if ref.SubAbility == "" || ref.Case != "" {
				return fmt.Errorf("--sub must be ability/sub_ability, got %q", v.Sub)
			}

			c := catalog.Case{ID: v.ID, Summary: v.Summary, SourceSession: v.Session}
			path, err := app.Catalog.AddCase(ctx, loc, ref, c, v.At)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added case %s to %s in %s\n", formatter.Bold(v.ID), ref, filepath.Base(path))
			return nil
		},
	}

	localeFlag(cmd.Flags(), &locale)
	cmd.Flags().StringVar(&v.Sub, "sub", "", "Target sub-ability as ability/sub_ability")
	cmd.Flags().StringVar(&v.ID, "id", "", "Case ID")
	cmd.Flags().StringVar(&v.Summary, "summary", "", "One-line summary shown on the page")
	cmd.Flags().StringVar(&v.Session, "session", "", "Recorded session to derive the dialogue from")
	cmd.Flags().IntVar(&v.At, "at", -1, "Zero-based position among the sub-ability's cases (default: append)")
	return cmd
}

func newAbilityAddCmd(app *App) *cobra.Command {
	var locale, id, name, description string
	var at int

	cmd := &cobra.Command{
		Use:     "add-ability",
		Short:   "Add an ability (a tab on the page)",
		Example: "  showcase case add-ability --id haitian --name \"Voice Styles\"",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := app.resolveLocale(locale)
			if err != nil {
				return err
			}
			a := catalog.Ability{ID: id, Name: name, Description: description}
			path, err := app.Catalog.AddAbility(cmd.Context(), loc, a, at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added ability %s in %s\n", formatter.Bold(id), filepath.Base(path))
			return nil
		},
	}

	localeFlag(cmd.Flags(), &locale)
	cmd.Flags().StringVar(&id, "id", "", "Ability ID")
	cmd.Flags().StringVar(&name, "name", "", "Display name in this locale")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	cmd.Flags().IntVar(&at, "at", -1, "Zero-based position among abilities (default: append)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSubAbilityAddCmd(app *App) *cobra.Command {
	var locale, ability, id, name, description string
	var at int

	cmd := &cobra.Command{
		Use:     "add-sub",
		Short:   "Add a sub-ability under an ability",
		Example: "  showcase case add-sub --ability haitian --id story --name Storytelling",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := app.resolveLocale(locale)
			if err != nil {
				return err
			}
			sub := catalog.SubAbility{ID: id, Name: name, Description: description}
			path, err := app.Catalog.AddSubAbility(cmd.Context(), loc, ability, sub, at)
			if err != nil {
				return err
			}
			ref := catalog.Ref{Ability: ability, SubAbility: id}
			fmt.Fprintf(cmd.OutOrStdout(), "Added sub-ability %s in %s\n", formatter.Bold(ref.String()), filepath.Base(path))
			return nil
		},
	}

	localeFlag(cmd.Flags(), &locale)
	cmd.Flags().StringVar(&ability, "ability", "", "Parent ability ID")
	cmd.Flags().StringVar(&id, "id", "", "Sub-ability ID")
	cmd.Flags().StringVar(&name, "name", "", "Display name in this locale")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	cmd.Flags().IntVar(&at, "at", -1, "Zero-based position among the ability's sub-abilities (default: append)")
	_ = cmd.MarkFlagRequired("ability")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCaseRemoveCmd(app *App) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:     "rm <ability[/sub[/case]]>",
		Aliases: []string{"remove"},
		Short:   "Remove an ability, sub-ability or case",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := app.resolveLocale(locale)
			if err != nil {
				return err
			}
			ref, err := catalog.ParseRef(args[0])
			if err != nil {
				return err
			}
			path, err := app.Catalog.Remove(cmd.Context(), loc, ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", formatter.Bold(ref.String()), filepath.Base(path))
			return nil
		},
	}

	localeFlag(cmd.Flags(), &locale)
	return cmd
}

func newCaseMoveCmd(app *App) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:     "mv <ability[/sub[/case]]> <position>",
		Aliases: []string{"move"},
		Short:   "Move a node to a zero-based position among its siblings",
		Long:    "Move a node to a zero-based position among its siblings. Arguments after -- are never parsed as flags.",
		Example: "  showcase case mv haitian/story/c2 0\n  showcase case mv -l en -- haitian/story 1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := app.resolveLocale(locale)
			if err != nil {
				return err
			}
			ref, err := catalog.ParseRef(args[0])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[1])
			if err != nil || to < 0 {
				return fmt.Errorf("invalid position %q: must be a non-negative integer", args[1])
			}
			path, err := app.Catalog.Move(cmd.Context(), loc, ref, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d in %s\n", formatter.Bold(ref.String()), to, filepath.Base(path))
			return nil
		},
	}

	localeFlag(cmd.Flags(), &locale)
	return cmd
}
