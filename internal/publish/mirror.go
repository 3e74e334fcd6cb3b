package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/alexanderramin/showcase/internal/build"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/fsutil"
	"github.com/alexanderramin/showcase/internal/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// Options configure a mirror run.
type Options struct {
	OutputDir string
	Prefix    string
	DryRun    bool
	// Locales and DefaultLocale name the data files that are published.
	// With neither set only data.js is.
	Locales       []string
	DefaultLocale string
	// Workers bounds concurrent uploads and deletes. Values < 1 mean 8.
	Workers int
}

// DataFiles returns the data file names the build writes for the configured
// locales, default locale first.
func (o Options) DataFiles() []string {
	def := o.DefaultLocale
	if def == "" && len(o.Locales) > 0 {
		def = o.Locales[0]
	}
	names := []string{build.DataFileName(def, def)}
	for _, l := range o.Locales {
		if l != def {
			names = append(names, build.DataFileName(l, def))
		}
	}
	return names
}

// Plan is the set of object operations that makes the bucket match the
// local output. Names are full object names including the prefix.
type Plan struct {
	Upload    []domain.Artifact
	Delete    []string
	Unchanged []string
}

// Result reports a mirror run.
type Result struct {
	Target string
	Plan   Plan
	DryRun bool
}

// LocalArtifacts lists the publishable files of outputDir: whichever of
// dataFiles exist at the top level and everything under audio/.
func LocalArtifacts(outputDir string, dataFiles []string) ([]domain.Artifact, error) {
	names := make([]string, 0, len(dataFiles))
	for _, name := range dataFiles {
		if fsutil.IsFile(filepath.Join(outputDir, name)) {
			names = append(names, name)
		}
	}
	return build.CollectArtifacts(outputDir, names)
}

// PlanMirror compares local artifacts with the remote listing. Remote
// objects are deleted only when the build manages them: audio/, dataFiles,
// and data_<locale>.js left behind by a locale that is no longer configured.
func PlanMirror(local []domain.Artifact, remote []ObjectInfo, prefix string, dataFiles []string) Plan {
	remoteByName := make(map[string]ObjectInfo, len(remote))
	for _, o := range remote {
		remoteByName[o.Name] = o
	}

	var plan Plan
	wanted := make(map[string]bool, len(local))
	for _, a := range local {
		name := objectName(prefix, a.Path)
		wanted[name] = true
		if o, ok := remoteByName[name]; ok && o.SHA256 == a.SHA256 && o.Size == a.Size {
			plan.Unchanged = append(plan.Unchanged, name)
			continue
		}
		plan.Upload = append(plan.Upload, a)
	}
	for _, o := range remote {
		if !wanted[o.Name] && isManaged(strings.TrimPrefix(o.Name, prefix), dataFiles) {
			plan.Delete = append(plan.Delete, o.Name)
		}
	}
	sort.Strings(plan.Delete)
	sort.Strings(plan.Unchanged)
	return plan
}

// Mirror uploads new and changed files, then deletes build-managed objects
// under the prefix that no longer exist locally. Deletes run only after every
// upload succeeded so the published data never points at missing audio.
func Mirror(ctx context.Context, store ObjectStore, opts Options, log *logging.Logger) (*Result, error) {
	log = logging.OrNop(log).With("component", "publish")
	if opts.Workers < 1 {
		opts.Workers = 8
	}
	prefix := normalizePrefix(opts.Prefix)

	dataFiles := opts.DataFiles()
	local, err := LocalArtifacts(opts.OutputDir, dataFiles)
	if err != nil {
		return nil, fmt.Errorf("collecting local artifacts: %w", err)
	}
	if len(local) == 0 {
		return nil, fmt.Errorf("nothing to publish in %s; run build first", opts.OutputDir)
	}
	remote, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Target: store.Target(prefix),
		Plan:   PlanMirror(local, remote, prefix, dataFiles),
		DryRun: opts.DryRun,
	}
	log.Info("publish plan",
		"target", result.Target,
		"upload", len(result.Plan.Upload),
		"delete", len(result.Plan.Delete),
		"unchanged", len(result.Plan.Unchanged),
	)
	if opts.DryRun {
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, a := range result.Plan.Upload {
		g.Go(func() error {
			return upload(gctx, store, opts.OutputDir, objectName(prefix, a.Path), a)
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, name := range result.Plan.Delete {
		g.Go(func() error {
			log.Debug("deleting stale object", "name", name)
			return store.Delete(gctx, name)
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

func upload(ctx context.Context, store ObjectStore, outputDir, name string, a domain.Artifact) error {
	f, err := os.Open(filepath.Join(outputDir, filepath.FromSlash(a.Path)))
	if err != nil {
		return fmt.Errorf("opening %s: %w", a.Path, err)
	}
	defer f.Close()
	return store.Upload(ctx, name, f, ContentTypeFor(a.Path), a.SHA256)
}

// isManaged reports whether rel is a path the build produces. Other objects
// under the prefix (an index.html or a data.backup.js, say) are left alone.
func isManaged(rel string, dataFiles []string) bool {
	if strings.HasPrefix(rel, "audio/") || slices.Contains(dataFiles, rel) {
		return true
	}
	tag, ok := strings.CutPrefix(rel, "data_")
	if !ok {
		return false
	}
	tag, ok = strings.CutSuffix(tag, ".js")
	if !ok || tag == "" || strings.ContainsAny(tag, "/.") {
		return false
	}
	_, err := language.Parse(tag)
	return err == nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func objectName(prefix, rel string) string {
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}
