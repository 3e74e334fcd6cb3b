package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/alexanderramin/showcase/internal/build"
	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/alexanderramin/showcase/internal/scaffold"
)

// CatalogSettings are the paths and defaults the catalog service needs.
type CatalogSettings struct {
	Sources       catalog.Sources
	OutputDir     string
	Locales       []string
	DefaultLocale string
	DefaultTitle  string
}

type catalogService struct {
	settings CatalogSettings
	scanner  scaffold.Scanner
	log      *logging.Logger
	observer UseCaseObserver
	// mu serializes read-modify-write cycles on catalog files.
	mu sync.Mutex
}

func NewCatalogService(
	settings CatalogSettings,
	scanner scaffold.Scanner,
	log *logging.Logger,
	observers ...UseCaseObserver,
) CatalogService {
	return &catalogService{
		settings: settings,
		scanner:  scanner,
		log:      logging.OrNop(log).With("component", "catalog"),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *catalogService) Document(ctx context.Context, locale string) (*catalog.Document, string, error) {
	doc, path, err := s.settings.Sources.LoadForLocale(locale)
	if err != nil {
		return nil, path, err
	}
	if doc == nil {
		return catalog.Empty(s.settings.DefaultTitle), "", nil
	}
	return doc, path, nil
}

func (s *catalogService) EditorDocument(ctx context.Context, locale string) (*catalog.Document, error) {
	editorPath := s.settings.Sources.EditorPath(locale)
	doc, err := catalog.Load(editorPath)
	switch {
	case err == nil && doc.HasFullData():
		return doc, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("loading %s: %w", editorPath, err)
	}

	dataPath := filepath.Join(s.settings.OutputDir, build.DataFileName(locale, s.settings.DefaultLocale))
	if built, err := loadBuiltData(dataPath); err == nil {
		return built, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("could not parse built data file", "file", dataPath, "error", err)
	}

	return catalog.Empty(s.settings.DefaultTitle), nil
}

func loadBuiltData(path string) (*catalog.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := build.ParseDataJS(content)
	if err != nil {
		return nil, err
	}
	var doc catalog.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, nil
}

func (s *catalogService) Save(ctx context.Context, locale string, doc *catalog.Document) (path string, err error) {
	defer observe(ctx, s.observer, "save-catalog", map[string]any{"locale": locale})(&err)

	if errs := catalog.Validate(doc); len(errs) > 0 {
		return "", catalog.FormatValidationErrors(errs)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path = s.settings.Sources.EditorPath(locale)
	if err := catalog.Save(path, doc); err != nil {
		return "", err
	}
	s.log.Info("saved catalog", "locale", locale, "file", path)
	return path, nil
}

func (s *catalogService) AddAbility(ctx context.Context, locale string, a catalog.Ability, at int) (string, error) {
	return s.edit(ctx, "add-ability", locale, func(doc *catalog.Document) error {
		return doc.AddAbility(a, at)
	})
}

func (s *catalogService) AddSubAbility(ctx context.Context, locale, abilityID string, sub catalog.SubAbility, at int) (string, error) {
	return s.edit(ctx, "add-sub-ability", locale, func(doc *catalog.Document) error {
		return doc.AddSubAbility(abilityID, sub, at)
	})
}

func (s *catalogService) AddCase(ctx context.Context, locale string, sub catalog.Ref, c catalog.Case, at int) (string, error) {
	return s.edit(ctx, "add-case", locale, func(doc *catalog.Document) error {
		return doc.AddCase(sub, c, at)
	})
}

func (s *catalogService) Remove(ctx context.Context, locale string, ref catalog.Ref) (string, error) {
	return s.edit(ctx, "remove", locale, func(doc *catalog.Document) error {
		return doc.Remove(ref)
	})
}

func (s *catalogService) Move(ctx context.Context, locale string, ref catalog.Ref, to int) (string, error) {
	return s.edit(ctx, "move", locale, func(doc *catalog.Document) error {
		return doc.Move(ref, to)
	})
}

// edit applies fn to the locale's editor document and saves it. A locale
// without an editor document starts from a copy of the base catalog, so
// edits never leak into other locales.
func (s *catalogService) edit(ctx context.Context, name, locale string, fn func(*catalog.Document) error) (path string, err error) {
	defer observe(ctx, s.observer, name, map[string]any{"locale": locale})(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.Document(ctx, locale)
	if err != nil {
		return "", err
	}
	if err := fn(doc); err != nil {
		return "", err
	}
	if errs := catalog.Validate(doc); len(errs) > 0 {
		return "", catalog.FormatValidationErrors(errs)
	}
	path = s.settings.Sources.EditorPath(locale)
	if err := catalog.Save(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

func (s *catalogService) ValidateAll(ctx context.Context) ([]LocaleValidation, error) {
	var out []LocaleValidation
	for _, locale := range s.settings.Locales {
		doc, source, err := s.settings.Sources.LoadForLocale(locale)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		out = append(out, LocaleValidation{Locale: locale, Source: source, Errs: catalog.Validate(doc)})
	}
	return out, nil
}

// Scaffold fills the base catalog from collected sessions and saves it.
func (s *catalogService) Scaffold(ctx context.Context, m scaffold.Mapping) (report *scaffold.Report, err error) {
	fields := map[string]any{"file": s.settings.Sources.BaseFile}
	defer observe(ctx, s.observer, "scaffold", fields)(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := catalog.Load(s.settings.Sources.BaseFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("base catalog %s does not exist; scaffold fills cases into existing abilities", s.settings.Sources.BaseFile)
	}
	if err != nil {
		return nil, err
	}

	report, err = scaffold.Apply(doc, m, s.scanner)
	if err != nil {
		return nil, err
	}
	if errs := catalog.Validate(doc); len(errs) > 0 {
		return nil, catalog.FormatValidationErrors(errs)
	}
	if err := catalog.Save(s.settings.Sources.BaseFile, doc); err != nil {
		return nil, err
	}
	fields["cases"] = report.CaseCount()
	return report, nil
}
