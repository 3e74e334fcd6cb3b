package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/showcase/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor backend and preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return errors.New("editor server is not configured")
			}
			if addr == "" {
				addr = app.EditorAddr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Editor on %s %s\n", formatter.Bold(addr), formatter.Dim("(Ctrl+C to stop)"))
			return app.Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from SHOWCASE_EDITOR_ADDR)")
	return cmd
}

func newPublishCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Mirror the built site to the publish bucket",
		Long: "Publish uploads the configured locales' data files and audio/ from the output\n" +
			"directory and deletes managed objects under the prefix that no longer exist locally.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.OpenPublisher == nil {
				return errors.New("publishing is not configured")
			}
			ctx := cmd.Context()
			publisher, closeFn, err := app.OpenPublisher(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := publisher.Publish(ctx, dryRun)
			if result != nil {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPublishResult(result))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without changing the bucket")
	return cmd
}
