package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/showcase/internal/cli/formatter"
	"github.com/alexanderramin/showcase/internal/watch"
	"github.com/spf13/cobra"
)

func newBuildCmd(app *App) *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the page data files and audio tree",
		Long: "Build reads each locale's catalog, resolves session-derived cases from the\n" +
			"collected recordings, and writes data*.js plus audio/ to the output directory.\n" +
			"Either every locale is published or nothing is written.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			err := runBuild(ctx, app, out)
			if !watchMode {
				return err
			}
			if err != nil {
				fmt.Fprintln(out, formatter.StyleRed.Render("Build failed: ")+err.Error())
			}
			return watchAndRebuild(ctx, app, out)
		},
	}

	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Rebuild when catalogs or the template change")
	return cmd
}

func runBuild(ctx context.Context, app *App, out io.Writer) error {
	result, err := app.Builds.Build(ctx)
	if result != nil {
		fmt.Fprint(out, formatter.FormatBuildResult(result))
	}
	return err
}

func watchAndRebuild(ctx context.Context, app *App, out io.Writer) error {
	w, err := watch.New(app.WatchTargets, watch.DefaultDebounce, func(ctx context.Context, changed []string) {
		fmt.Fprintln(out, formatter.Dim("Changed: "+strings.Join(changed, ", ")))
		if err := runBuild(ctx, app, out); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(out, formatter.StyleRed.Render("Build failed: ")+err.Error())
		}
	}, app.logger())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatter.Dim("Watching for changes. Press Ctrl+C to stop."))
	return w.Run(ctx)
}

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every locale's catalog without building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := app.Catalog.ValidateAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatValidation(results))

			invalid := 0
			for _, r := range results {
				if len(r.Errs) > 0 {
					invalid++
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d catalogs failed validation", invalid, len(results))
			}
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent builds and whether their output changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			entries, err := app.Builds.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(entries, app.now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
