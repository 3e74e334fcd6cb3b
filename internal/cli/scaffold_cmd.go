package cli

import (
	"fmt"

	"github.com/alexanderramin/showcase/internal/cli/formatter"
	"github.com/alexanderramin/showcase/internal/scaffold"
	"github.com/spf13/cobra"
)

func newScaffoldCmd(app *App) *cobra.Command {
	var mappingPath string

	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Fill base catalog cases from recorded session categories",
		Long: "Scaffold replaces the cases of every mapped sub-ability with one case per\n" +
			"recorded session of its source category, in session order. The mapping is a\n" +
			"YAML file:\n\n" +
			"  haitian:\n" +
			"    sub_abilities:\n" +
			"      story:\n" +
			"        source_category: story\n" +
			"        lang: zh\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := scaffold.LoadMapping(mappingPath)
			if err != nil {
				return err
			}
			report, err := app.Catalog.Scaffold(cmd.Context(), m)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatScaffoldReport(report, app.BaseFile))
			return nil
		},
	}

	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "Path to the YAML category mapping")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}
