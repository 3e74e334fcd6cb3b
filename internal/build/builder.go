// Package build turns authoring catalogs and recorded sessions into the
// published data files and audio tree.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/fsutil"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/alexanderramin/showcase/internal/session"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options configure a Builder.
type Options struct {
	OutputDir     string
	ResourcesDir  string
	Locales       []string
	DefaultLocale string
	TemplatePath  string
	// Workers bounds concurrent audio copies. Values < 1 mean 4.
	Workers int
}

// Builder runs the build pipeline.
type Builder struct {
	opts     Options
	sources  catalog.Sources
	sessions *session.Store
	log      *logging.Logger
}

func NewBuilder(opts Options, sources catalog.Sources, sessions *session.Store, log *logging.Logger) *Builder {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.DefaultLocale == "" && len(opts.Locales) > 0 {
		opts.DefaultLocale = opts.Locales[0]
	}
	return &Builder{
		opts:     opts,
		sources:  sources,
		sessions: sessions,
		log:      logging.OrNop(log).With("component", "build"),
	}
}

// LocaleReport describes the output of one locale.
type LocaleReport struct {
	Locale  string
	Source  string
	Output  string
	Cases   int
	Skipped []string
}

// Report summarizes a build.
type Report struct {
	Locales        []LocaleReport
	MissingLocales []string
	Artifacts      []domain.Artifact
}

// CaseCount is the number of published cases across locales.
func (r *Report) CaseCount() int {
	n := 0
	for _, l := range r.Locales {
		n += l.Cases
	}
	return n
}

// Run performs a full build. Either every locale is published or nothing
// is: all case errors are collected first and nothing is written if any
// occurred. On success the audio directory is replaced wholesale.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	tmpl, err := LoadTemplate(b.opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	p := &planner{
		sessions:     b.sessions,
		resourcesDir: b.opts.ResourcesDir,
		outputAudio:  filepath.Join(b.opts.OutputDir, audioDirName),
		sessionLang:  b.opts.DefaultLocale,
		log:          b.log,
	}

	report := &Report{}
	var plans []*localePlan
	var errs []error

	for _, locale := range b.opts.Locales {
		doc, source, err := b.sources.LoadForLocale(locale)
		if err != nil {
			errs = append(errs, fmt.Errorf("[%s] %w", locale, err))
			continue
		}
		if doc == nil {
			b.log.Warn("no catalog for locale", "locale", locale)
			report.MissingLocales = append(report.MissingLocales, locale)
			continue
		}
		b.log.Info("loaded catalog", "locale", locale, "source", source)

		if verrs := catalog.Validate(doc); len(verrs) > 0 {
			for _, e := range verrs {
				errs = append(errs, fmt.Errorf("[%s] %s: %w", locale, filepath.Base(source), e))
			}
			continue
		}

		plan, caseErrs := p.planLocale(locale, source, doc)
		errs = append(errs, caseErrs...)
		plans = append(plans, plan)
	}

	jobs, jobErrs := mergeJobs(plans)
	errs = append(errs, jobErrs...)
	if len(errs) > 0 {
		return report, formatBuildErrors(errs)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	if err := b.publishAudio(ctx, jobs); err != nil {
		return report, err
	}

	for _, plan := range plans {
		name := DataFileName(plan.Locale, b.opts.DefaultLocale)
		content, err := Render(tmpl, plan.Locale, plan.Site)
		if err != nil {
			return report, err
		}
		if err := fsutil.WriteFileAtomic(filepath.Join(b.opts.OutputDir, name), content); err != nil {
			return report, err
		}
		cases := plan.Site.CaseCount()
		b.log.Info("wrote data file", "locale", plan.Locale, "file", name, "cases", cases)
		report.Locales = append(report.Locales, LocaleReport{
			Locale:  plan.Locale,
			Source:  plan.Source,
			Output:  name,
			Cases:   cases,
			Skipped: plan.Skipped,
		})
	}

	// A locale without a catalog must not leave an old data file pointing
	// at audio that no longer exists.
	for _, locale := range report.MissingLocales {
		stale := filepath.Join(b.opts.OutputDir, DataFileName(locale, b.opts.DefaultLocale))
		if err := os.Remove(stale); err == nil {
			b.log.Warn("removed stale data file", "file", stale)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return report, fmt.Errorf("removing stale %s: %w", stale, err)
		}
	}

	report.Artifacts, err = CollectArtifacts(b.opts.OutputDir, dataFiles(report))
	if err != nil {
		return report, err
	}
	return report, nil
}

// publishAudio copies every job into a fresh staging directory, then swaps
// it in place of the published audio directory.
func (b *Builder) publishAudio(ctx context.Context, jobs []copyJob) error {
	if err := os.MkdirAll(b.opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	staging := filepath.Join(b.opts.OutputDir, ".audio-staging-"+uuid.NewString())
	if err := os.Mkdir(staging, 0755); err != nil {
		return fmt.Errorf("creating staging dir: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dst := filepath.Join(staging, filepath.FromSlash(job.Dst))
			if err := fsutil.CopyFile(job.Src, dst); err != nil {
				return fmt.Errorf("copying %s: %w", job.Dst, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	audioDir := filepath.Join(b.opts.OutputDir, audioDirName)
	retired := filepath.Join(b.opts.OutputDir, ".audio-retired-"+uuid.NewString())
	hadAudio := fsutil.IsDir(audioDir)
	if hadAudio {
		if err := os.Rename(audioDir, retired); err != nil {
			return fmt.Errorf("retiring audio dir: %w", err)
		}
	}
	if err := os.Rename(staging, audioDir); err != nil {
		if hadAudio {
			_ = os.Rename(retired, audioDir)
		}
		return fmt.Errorf("publishing audio dir: %w", err)
	}
	committed = true
	if hadAudio {
		if err := os.RemoveAll(retired); err != nil {
			b.log.Warn("could not remove retired audio dir", "dir", retired, "error", err)
		}
	}
	b.log.Info("published audio", "files", len(jobs))
	return nil
}

// mergeJobs flattens the locale plans into one copy list. Locales that share
// a case id share audio/<case_id>, so a destination claimed more than once is
// copied once when every claim has the same bytes and is an error otherwise.
func mergeJobs(plans []*localePlan) ([]copyJob, []error) {
	type claim struct {
		src    string
		locale string
	}
	claims := make(map[string]claim)
	var jobs []copyJob
	var errs []error
	for _, plan := range plans {
		for _, job := range plan.Jobs {
			prev, ok := claims[job.Dst]
			if !ok {
				claims[job.Dst] = claim{src: job.Src, locale: plan.Locale}
				jobs = append(jobs, job)
				continue
			}
			same, err := sameContent(prev.src, job.Src)
			if err != nil {
				errs = append(errs, fmt.Errorf("[%s] %s: %w", plan.Locale, job.Dst, err))
				continue
			}
			if !same {
				caseID, _, _ := strings.Cut(job.Dst, "/")
				errs = append(errs, fmt.Errorf("case id %q publishes different audio for %s in %s and %s",
					caseID, audioDirName+"/"+job.Dst, prev.locale, plan.Locale))
			}
		}
	}
	return jobs, errs
}

func sameContent(a, b string) (bool, error) {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true, nil
	}
	ha, _, err := fsutil.HashFile(a)
	if err != nil {
		return false, err
	}
	hb, _, err := fsutil.HashFile(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

func dataFiles(r *Report) []string {
	names := make([]string, 0, len(r.Locales))
	for _, l := range r.Locales {
		names = append(names, l.Output)
	}
	return names
}

// CollectArtifacts hashes the given data files and every file under audio/,
// returning them sorted by path.
func CollectArtifacts(outputDir string, dataFiles []string) ([]domain.Artifact, error) {
	var artifacts []domain.Artifact
	for _, name := range dataFiles {
		sum, size, err := fsutil.HashFile(filepath.Join(outputDir, name))
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, domain.Artifact{Path: name, SHA256: sum, Size: size})
	}

	audioDir := filepath.Join(outputDir, audioDirName)
	if fsutil.IsDir(audioDir) {
		err := filepath.WalkDir(audioDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(outputDir, p)
			if err != nil {
				return err
			}
			sum, size, err := fsutil.HashFile(p)
			if err != nil {
				return err
			}
			artifacts = append(artifacts, domain.Artifact{Path: filepath.ToSlash(rel), SHA256: sum, Size: size})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("hashing audio: %w", err)
		}
	}

	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Path < artifacts[j].Path })
	return artifacts, nil
}

func formatBuildErrors(errs []error) error {
	msg := fmt.Sprintf("build failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return &Error{msg: msg, Errs: errs}
}

// Error is returned when one or more cases could not be built.
type Error struct {
	msg  string
	Errs []error
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the individual failures to errors.Is/As.
func (e *Error) Unwrap() []error { return e.Errs }
