package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/showcase/internal/cli/formatter"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/alexanderramin/showcase/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SessionBrowser is the read side of the collected tree.
type SessionBrowser interface {
	List() ([]domain.SessionInfo, error)
	Detail(rel string) (*domain.SessionDetail, error)
}

// App holds references to all services and settings used by CLI commands.
type App struct {
	Catalog  service.CatalogService
	Builds   service.BuildService
	Sessions SessionBrowser

	Locales       []string
	DefaultLocale string
	BaseFile      string
	// WatchTargets are the files and directories `build --watch` observes.
	WatchTargets []string
	EditorAddr   string

	// Serve runs the editor server until ctx ends.
	Serve func(ctx context.Context, addr string) error
	// OpenPublisher connects to the publish bucket. The returned func
	// releases the connection.
	OpenPublisher func(ctx context.Context) (service.PublishService, func(), error)

	IsInteractive func() bool
	// RunForm replaces huh's terminal loop; tests use it.
	RunForm func(form *huh.Form) error
	Log           *logging.Logger
	Now           func() time.Time

	// Configure, when set, runs before every command with the global flag
	// values and fills in the fields above.
	Configure func(opts GlobalOptions) error
}

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	Root    string
	LogMode string
	NoColor bool
}

// AddFlags registers the global options on fs.
func (o *GlobalOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Root, "root", "", "Workspace root (overrides SHOWCASE_ROOT)")
	fs.StringVar(&o.LogMode, "log-mode", "", "Log output: dev or prod (overrides SHOWCASE_LOG_MODE)")
	fs.BoolVar(&o.NoColor, "no-color", false, "Disable colored output")
}

// NewRootCmd creates the top-level "showcase" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var opts GlobalOptions

	root := &cobra.Command{
		Use:          "showcase",
		Short:        "Author, build and publish the voice demo page",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.NoColor {
				formatter.SetColor(false)
			}
			if app.Configure == nil {
				return nil
			}
			return app.Configure(opts)
		},
	}
	opts.AddFlags(root.PersistentFlags())

	root.AddCommand(
		newBuildCmd(app),
		newValidateCmd(app),
		newTreeCmd(app),
		newCaseCmd(app),
		newSessionCmd(app),
		newScaffoldCmd(app),
		newServeCmd(app),
		newHistoryCmd(app),
		newPublishCmd(app),
	)

	return root
}

func (app *App) now() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return time.Now()
}

func (app *App) interactive() bool {
	return app.IsInteractive != nil && app.IsInteractive()
}

func (app *App) logger() *logging.Logger {
	return logging.OrNop(app.Log)
}

// localeFlag registers --locale, defaulting to the configured default at
// run time.
func localeFlag(fs *pflag.FlagSet, p *string) {
	fs.StringVarP(p, "locale", "l", "", "Locale (defaults to the default locale)")
}

func (app *App) resolveLocale(flag string) (string, error) {
	if flag == "" {
		return app.DefaultLocale, nil
	}
	if !slices.Contains(app.Locales, flag) {
		return "", fmt.Errorf("unknown locale %q (configured: %s)", flag, strings.Join(app.Locales, ", "))
	}
	return flag, nil
}
