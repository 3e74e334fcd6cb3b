package build

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/fsutil"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/alexanderramin/showcase/internal/session"
)

const audioDirName = "audio"

// copyJob copies one source file into the staged audio tree. Dst is relative
// to the audio directory and uses forward slashes.
type copyJob struct {
	Src string
	Dst string
}

// CaseError attributes a build failure to one case.
type CaseError struct {
	Locale string
	Ref    catalog.Ref
	Err    error
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("[%s] case %s: %v", e.Locale, e.Ref, e.Err)
}

func (e *CaseError) Unwrap() error { return e.Err }

// localePlan is everything needed to materialize one locale's output.
type localePlan struct {
	Locale  string
	Source  string
	Site    *domain.Site
	Jobs    []copyJob
	Skipped []string
}

type planner struct {
	sessions     *session.Store
	resourcesDir string
	outputAudio  string
	// sessionLang is used for abilities without session_lang. It does not
	// follow the locale being built, since translated catalogs reuse the
	// sessions recorded for the default locale.
	sessionLang string
	log          *logging.Logger
}

// planLocale converts a validated document into the published site and the
// audio copies it needs. Case failures are collected, not returned early.
func (p *planner) planLocale(locale, source string, doc *catalog.Document) (*localePlan, []error) {
	plan := &localePlan{
		Locale: locale,
		Source: source,
		Site:   &domain.Site{Meta: doc.Meta, Abilities: []domain.SiteAbility{}},
	}
	var errs []error

	for _, a := range doc.Abilities {
		lang := a.SessionLang
		if lang == "" {
			lang = p.sessionLang
		}
		siteAbility := domain.SiteAbility{
			ID:           a.ID,
			Name:         a.Name,
			Description:  a.Description,
			SubAbilities: []domain.SiteSubAbility{},
		}
		for _, sub := range a.SubAbilities {
			siteSub := domain.SiteSubAbility{
				ID:          sub.ID,
				Name:        sub.Name,
				Description: sub.Description,
				Cases:       []domain.SiteCase{},
			}
			for _, c := range sub.Cases {
				ref := catalog.Ref{Ability: a.ID, SubAbility: sub.ID, Case: c.ID}
				siteCase, jobs, ok, err := p.planCase(lang, c)
				if err != nil {
					errs = append(errs, &CaseError{Locale: locale, Ref: ref, Err: err})
					continue
				}
				if !ok {
					p.log.Warn("case has neither turns nor source_session, skipping", "locale", locale, "case", ref.String())
					plan.Skipped = append(plan.Skipped, ref.String())
					continue
				}
				siteSub.Cases = append(siteSub.Cases, siteCase)
				plan.Jobs = append(plan.Jobs, jobs...)
			}
			siteAbility.SubAbilities = append(siteAbility.SubAbilities, siteSub)
		}
		plan.Site.Abilities = append(plan.Site.Abilities, siteAbility)
	}

	return plan, errs
}

// planCase applies the precedence rules: a fully specified case is used
// verbatim, otherwise the case is derived from its source session with
// user_text_override applied on top. ok is false when the case has nothing
// to publish.
func (p *planner) planCase(lang string, c catalog.Case) (domain.SiteCase, []copyJob, bool, error) {
	if c.FullySpecified() {
		p.log.Debug("using stored case", "case_id", c.ID)
		sc, jobs, err := p.verbatimCase(lang, c)
		return sc, jobs, true, err
	}
	if c.SourceSession == "" {
		return domain.SiteCase{}, nil, false, nil
	}
	p.log.Debug("deriving case from session", "case_id", c.ID, "session", c.SourceSession)
	sc, jobs, err := p.sessionCase(lang, c)
	return sc, jobs, true, err
}

func (p *planner) sessionCase(lang string, c catalog.Case) (domain.SiteCase, []copyJob, error) {
	dir, err := p.sessions.Find(lang, c.SourceSession)
	if err != nil {
		return domain.SiteCase{}, nil, err
	}
	tr, err := session.Read(dir)
	if err != nil {
		return domain.SiteCase{}, nil, err
	}

	sc := domain.SiteCase{
		ID:      c.ID,
		Summary: c.Summary,
		System:  domain.SiteSystem{Prefix: tr.Prefix, Suffix: tr.Suffix},
		Turns:   make([]domain.SiteTurn, 0, len(tr.Turns)),
	}
	var jobs []copyJob

	if tr.HasRef {
		job := copyJob{Src: filepath.Join(dir, session.RefAudioFile()), Dst: path.Join(c.ID, "ref.mp3")}
		jobs = append(jobs, job)
		sc.System.RefAudio = publishedPath(job.Dst)
	}

	overrides := turnOverrides(c.UserTextOverride)
	for i, t := range tr.Turns {
		turn := domain.SiteTurn{UserText: t.UserText, AssistantText: t.AssistantText}
		if text, ok := overrides[i]; ok {
			turn.UserText = text
		}
		if t.HasAudio {
			job := copyJob{
				Src: filepath.Join(dir, session.AssistantAudioFile(i)),
				Dst: path.Join(c.ID, fmt.Sprintf("%03d_assistant.mp3", i)),
			}
			jobs = append(jobs, job)
			turn.AssistantAudio = publishedPath(job.Dst)
		}
		sc.Turns = append(sc.Turns, turn)
	}

	return sc, jobs, nil
}

// verbatimCase keeps every text field as stored. Audio references are
// re-materialized under audio/<case_id>/ because the audio directory is
// rebuilt from scratch on every run.
func (p *planner) verbatimCase(lang string, c catalog.Case) (domain.SiteCase, []copyJob, error) {
	sc := domain.SiteCase{
		ID:      c.ID,
		Summary: c.Summary,
		System:  domain.SiteSystem{Prefix: c.System.Prefix, Suffix: c.System.Suffix},
		Turns:   make([]domain.SiteTurn, 0, len(c.Turns)),
	}
	res := &assetResolver{planner: p, lang: lang, c: c}
	var jobs []copyJob

	refAudio, job, err := res.resolve(c.System.RefAudio, "ref", roleRef)
	if err != nil {
		return sc, nil, fmt.Errorf("system.ref_audio: %w", err)
	}
	sc.System.RefAudio = refAudio
	if job != nil {
		jobs = append(jobs, *job)
	}

	for i, t := range c.Turns {
		audio, job, err := res.resolve(t.AssistantAudio, fmt.Sprintf("%03d_assistant", i), i)
		if err != nil {
			return sc, nil, fmt.Errorf("turns[%d].assistant_audio: %w", i, err)
		}
		if job != nil {
			jobs = append(jobs, *job)
		}
		sc.Turns = append(sc.Turns, domain.SiteTurn{
			UserText:       t.UserText,
			AssistantText:  t.AssistantText,
			AssistantAudio: audio,
		})
	}

	return sc, jobs, nil
}

// roleRef marks the reference-audio slot; turn slots use their index.
const roleRef = -1

var errUnresolvedAsset = errors.New("audio file not found")

type assetResolver struct {
	planner    *planner
	lang       string
	c          catalog.Case
	sessionDir string
}

// resolve maps a stored audio reference to a copy job. Remote URLs are
// published unchanged; nil or empty references publish null.
func (r *assetResolver) resolve(ref *string, base string, role int) (*string, *copyJob, error) {
	if ref == nil || *ref == "" {
		return nil, nil, nil
	}
	value := *ref
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		out := value
		return &out, nil, nil
	}

	src, err := r.locate(value, role)
	if err != nil {
		return nil, nil, err
	}
	ext := path.Ext(value)
	if ext == "" {
		ext = ".mp3"
	}
	job := &copyJob{Src: src, Dst: path.Join(r.c.ID, base+ext)}
	return publishedPath(job.Dst), job, nil
}

func (r *assetResolver) locate(value string, role int) (string, error) {
	switch {
	case strings.HasPrefix(value, "resources/"):
		src, err := fsutil.SafeJoin(r.planner.resourcesDir, strings.TrimPrefix(value, "resources/"))
		if err != nil {
			return "", err
		}
		return requireFile(src, value)

	case strings.HasPrefix(value, audioDirName+"/"):
		// A path from a previous build. Prefer the session original, then
		// the currently published copy.
		if r.c.SourceSession != "" {
			if src, ok := r.sessionFile(role); ok {
				return src, nil
			}
		}
		src, err := fsutil.SafeJoin(r.planner.outputAudio, strings.TrimPrefix(value, audioDirName+"/"))
		if err != nil {
			return "", err
		}
		return requireFile(src, value)

	default:
		src, err := fsutil.SafeJoin(r.planner.sessions.Root(), value)
		if err != nil {
			return "", err
		}
		return requireFile(src, value)
	}
}

func (r *assetResolver) sessionFile(role int) (string, bool) {
	if r.sessionDir == "" {
		dir, err := r.planner.sessions.Find(r.lang, r.c.SourceSession)
		if err != nil {
			return "", false
		}
		r.sessionDir = dir
	}
	name := session.RefAudioFile()
	if role != roleRef {
		name = session.AssistantAudioFile(role)
	}
	src := filepath.Join(r.sessionDir, name)
	return src, fsutil.IsFile(src)
}

func requireFile(src, ref string) (string, error) {
	if !fsutil.IsFile(src) {
		return "", fmt.Errorf("%q: %w", ref, errUnresolvedAsset)
	}
	return src, nil
}

// turnOverrides converts user_text_override keys to indices. Keys that are
// not turn indices were rejected by validation and are ignored here.
func turnOverrides(m map[string]string) map[int]string {
	out := make(map[int]string, len(m))
	for k, v := range m {
		if i, err := catalog.ParseTurnIndex(k); err == nil {
			out[i] = v
		}
	}
	return out
}

func publishedPath(dst string) *string {
	p := audioDirName + "/" + dst
	return &p
}
