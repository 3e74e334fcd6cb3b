package cli

import (
	"fmt"

	"github.com/alexanderramin/showcase/internal/cli/formatter"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Browse recorded sessions",
	}

	cmd.AddCommand(
		newSessionListCmd(app),
		newSessionShowCmd(app),
	)

	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var lang, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.Sessions.List()
			if err != nil {
				return err
			}
			var filtered []domain.SessionInfo
			for _, s := range sessions {
				if lang != "" && s.Lang != lang {
					continue
				}
				if category != "" && s.Category != category {
					continue
				}
				filtered = append(filtered, s)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionList(filtered))
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Only sessions recorded in this language")
	cmd.Flags().StringVar(&category, "category", "", "Only sessions of this category")
	return cmd
}

func newSessionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "show <lang/category/session>",
		Short:   "Print a session transcript",
		Example: "  showcase session show zh/story/session_20260129_034105_a264bd2a",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := app.Sessions.Detail(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionDetail(detail))
			return nil
		},
	}
}
