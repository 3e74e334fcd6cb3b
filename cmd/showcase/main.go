package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/showcase/internal/build"
	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/cli"
	"github.com/alexanderramin/showcase/internal/config"
	"github.com/alexanderramin/showcase/internal/db"
	"github.com/alexanderramin/showcase/internal/editor"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/alexanderramin/showcase/internal/publish"
	"github.com/alexanderramin/showcase/internal/repository"
	"github.com/alexanderramin/showcase/internal/service"
	"github.com/alexanderramin/showcase/internal/session"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	app := &cli.App{}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	app.Configure = func(opts cli.GlobalOptions) error {
		closeFn, err := wire(app, opts)
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
		return err
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

// wire loads configuration with flag overrides applied and fills app. The
// returned func releases the logger and the history database.
func wire(app *cli.App, opts cli.GlobalOptions) (func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Root != "" {
		cfg.Root = opts.Root
	}
	if opts.LogMode != "" {
		cfg.LogMode = opts.LogMode
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	closeFn := func() {
		_ = database.Close()
		log.Sync()
	}

	buildRuns := repository.NewSQLiteBuildRunRepo(database)
	publishRuns := repository.NewSQLitePublishRunRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(log)

	sources := catalog.Sources{BaseFile: cfg.CasesFile, EditorDir: cfg.EditorConfig}
	sessions := session.NewStore(cfg.CollectedDir, cfg.Locales)
	builder := build.NewBuilder(build.Options{
		OutputDir:     cfg.OutputDir,
		ResourcesDir:  cfg.ResourcesDir,
		Locales:       cfg.Locales,
		DefaultLocale: cfg.DefaultLocale,
		TemplatePath:  cfg.Template,
		Workers:       cfg.BuildWorkers,
	}, sources, sessions, log)

	catalogs := service.NewCatalogService(service.CatalogSettings{
		Sources:       sources,
		OutputDir:     cfg.OutputDir,
		Locales:       cfg.Locales,
		DefaultLocale: cfg.DefaultLocale,
		DefaultTitle:  cfg.DefaultTitle,
	}, sessions, log, observer)
	builds := service.NewBuildService(builder, buildRuns, uow, log, observer)

	app.Catalog = catalogs
	app.Builds = builds
	app.Sessions = sessions
	app.Locales = cfg.Locales
	app.DefaultLocale = cfg.DefaultLocale
	app.BaseFile = cfg.CasesFile
	app.WatchTargets = []string{cfg.CasesFile, cfg.EditorConfig, cfg.Template}
	app.EditorAddr = cfg.EditorAddr
	app.Log = log

	app.Serve = func(ctx context.Context, addr string) error {
		srv := editor.NewServer(editor.Options{
			Addr:         addr,
			StaticDir:    cfg.Root,
			ResourcesDir: cfg.ResourcesDir,
			Locales:      cfg.Locales,
		}, catalogs, builds, sessions, log)
		return srv.ListenAndServe(ctx)
	}

	app.OpenPublisher = func(ctx context.Context) (service.PublishService, func(), error) {
		if cfg.PublishBucket == "" {
			return nil, nil, errors.New("SHOWCASE_PUBLISH_BUCKET is required to publish")
		}
		store, err := publish.NewGCSStore(ctx, cfg.PublishBucket, cfg.StorageEmulatorHost)
		if err != nil {
			return nil, nil, err
		}
		svc := service.NewPublishService(store, publish.Options{
			OutputDir:     cfg.OutputDir,
			Prefix:        cfg.PublishPrefix,
			Locales:       cfg.Locales,
			DefaultLocale: cfg.DefaultLocale,
			Workers:       cfg.BuildWorkers * 2,
		}, buildRuns, publishRuns, log, observer)
		return svc, func() { _ = store.Close() }, nil
	}

	return closeFn, nil
}
