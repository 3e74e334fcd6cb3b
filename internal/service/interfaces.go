package service

import (
	"context"

	"github.com/alexanderramin/showcase/internal/build"
	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/publish"
	"github.com/alexanderramin/showcase/internal/scaffold"
)

type CatalogService interface {
	// Document returns the catalog the build would use for locale and its
	// path, or an empty document and "" when none exists.
	Document(ctx context.Context, locale string) (*catalog.Document, string, error)
	// EditorDocument returns what the browser editor should load: the saved
	// editor document if it carries dialogue, else the last built data file,
	// else an empty document.
	EditorDocument(ctx context.Context, locale string) (*catalog.Document, error)
	// Save validates doc and writes it as the editor document for locale.
	Save(ctx context.Context, locale string, doc *catalog.Document) (string, error)
	AddAbility(ctx context.Context, locale string, a catalog.Ability, at int) (string, error)
	AddSubAbility(ctx context.Context, locale, abilityID string, sub catalog.SubAbility, at int) (string, error)
	AddCase(ctx context.Context, locale string, sub catalog.Ref, c catalog.Case, at int) (string, error)
	Remove(ctx context.Context, locale string, ref catalog.Ref) (string, error)
	Move(ctx context.Context, locale string, ref catalog.Ref, to int) (string, error)
	ValidateAll(ctx context.Context) ([]LocaleValidation, error)
	Scaffold(ctx context.Context, m scaffold.Mapping) (*scaffold.Report, error)
}

type BuildService interface {
	// Build runs the pipeline and records the run. Concurrent calls are
	// serialized.
	Build(ctx context.Context) (*BuildResult, error)
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
}

type PublishService interface {
	Publish(ctx context.Context, dryRun bool) (*publish.Result, error)
}

// LocaleValidation is the validation outcome of one locale's catalog.
type LocaleValidation struct {
	Locale string
	Source string
	Errs   []error
}

// BuildResult is a recorded build.
type BuildResult struct {
	Run    *domain.BuildRun
	Report *build.Report
	Change Change
}

// Change compares a run's artifacts with the previous successful run.
type Change string

const (
	ChangeFirst     Change = "first"
	ChangeChanged   Change = "changed"
	ChangeIdentical Change = "identical"
	ChangeNone      Change = ""
)

type HistoryEntry struct {
	Run    *domain.BuildRun
	Change Change
}
