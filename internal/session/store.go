// Package session reads the recorder's collected tree:
// collected/<lang>/<category>/session_*/ with per-turn transcripts and audio.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/fsutil"
	"golang.org/x/text/unicode/norm"
)

var ErrSessionNotFound = errors.New("session not found")

// Store reads sessions under a collected root.
type Store struct {
	root  string
	langs []string
}

// NewStore creates a Store rooted at the collected directory. langs lists the
// language directories that List and Detail consider.
func NewStore(root string, langs []string) *Store {
	return &Store{root: root, langs: langs}
}

// Root returns the collected directory.
func (s *Store) Root() string { return s.root }

// Find locates the directory of sessionID anywhere under collected/<lang>.
// Directories are walked in lexical order so the first match is stable.
func (s *Store) Find(lang, sessionID string) (string, error) {
	langDir := filepath.Join(s.root, lang)
	if !fsutil.IsDir(langDir) {
		return "", fmt.Errorf("%s (lang %s): %w", sessionID, lang, ErrSessionNotFound)
	}

	var found string
	err := filepath.WalkDir(langDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == sessionID && path != langDir {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching %s: %w", langDir, err)
	}
	if found == "" {
		return "", fmt.Errorf("%s (lang %s): %w", sessionID, lang, ErrSessionNotFound)
	}
	return found, nil
}

// Read loads the transcript of the session at dir. Turns are enumerated from
// 000 until an index has neither a user transcript nor an assistant text.
func Read(dir string) (*domain.Transcript, error) {
	if !fsutil.IsDir(dir) {
		return nil, fmt.Errorf("%s: %w", dir, ErrSessionNotFound)
	}

	t := &domain.Transcript{HasRef: fsutil.IsFile(filepath.Join(dir, refAudioFile))}
	var err error
	if t.Prefix, err = readText(filepath.Join(dir, prefixFile)); err != nil {
		return nil, err
	}
	if t.Suffix, err = readText(filepath.Join(dir, suffixFile)); err != nil {
		return nil, err
	}

	for i := 0; ; i++ {
		userPath := filepath.Join(dir, UserTranscriptFile(i))
		assistantPath := filepath.Join(dir, AssistantTextFile(i))
		if !fsutil.IsFile(userPath) && !fsutil.IsFile(assistantPath) {
			break
		}

		var turn domain.TranscriptTurn
		if turn.UserText, err = readText(userPath); err != nil {
			return nil, err
		}
		if turn.AssistantText, err = readText(assistantPath); err != nil {
			return nil, err
		}
		turn.HasAudio = fsutil.IsFile(filepath.Join(dir, AssistantAudioFile(i)))
		t.Turns = append(t.Turns, turn)
	}

	return t, nil
}

// readText returns trimmed NFC text, or "" when the file does not exist.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return norm.NFC.String(strings.TrimSpace(string(data))), nil
}

// List returns every session under the configured languages, newest first.
func (s *Store) List() ([]domain.SessionInfo, error) {
	var sessions []domain.SessionInfo

	for _, lang := range s.langs {
		langDir := filepath.Join(s.root, lang)
		categories, err := readSubdirs(langDir)
		if err != nil {
			return nil, err
		}
		for _, category := range categories {
			dirs, err := readSubdirs(filepath.Join(langDir, category))
			if err != nil {
				return nil, err
			}
			for _, name := range dirs {
				if !IsSessionDir(name) {
					continue
				}
				sessions = append(sessions, s.info(lang, category, name))
			}
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Timestamp != sessions[j].Timestamp {
			return sessions[i].Timestamp > sessions[j].Timestamp
		}
		return sessions[i].Path < sessions[j].Path
	})
	return sessions, nil
}

func (s *Store) info(lang, category, name string) domain.SessionInfo {
	dir := filepath.Join(s.root, lang, category, name)
	turns, _ := filepath.Glob(filepath.Join(dir, "*_assistant.txt"))
	return domain.SessionInfo{
		ID:        name,
		Path:      lang + "/" + category + "/" + name,
		Lang:      lang,
		Category:  category,
		Timestamp: Timestamp(name),
		HasRef:    fsutil.IsFile(filepath.Join(dir, refAudioFile)),
		TurnCount: len(turns),
	}
}

// Detail returns the editor view of the session at rel (relative to the
// collected root). Audio is reported as collected-relative paths.
func (s *Store) Detail(rel string) (*domain.SessionDetail, error) {
	dir, err := fsutil.SafeJoin(s.root, rel)
	if err != nil {
		return nil, err
	}
	if !fsutil.IsDir(dir) {
		return nil, fmt.Errorf("%s: %w", rel, ErrSessionNotFound)
	}

	detail := &domain.SessionDetail{Path: rel, Turns: []domain.SessionDetailTurn{}}
	if detail.System.Prefix, err = readText(filepath.Join(dir, prefixFile)); err != nil {
		return nil, err
	}
	if detail.System.Suffix, err = readText(filepath.Join(dir, suffixFile)); err != nil {
		return nil, err
	}
	if fsutil.IsFile(filepath.Join(dir, refAudioFile)) {
		detail.System.RefAudio = s.relative(filepath.Join(dir, refAudioFile))
	}

	turnFiles, err := filepath.Glob(filepath.Join(dir, "*_assistant.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(turnFiles)
	for _, turnFile := range turnFiles {
		idx := strings.SplitN(filepath.Base(turnFile), "_", 2)[0]

		var turn domain.SessionDetailTurn
		if turn.UserText, err = readText(filepath.Join(dir, idx+"_user_audio0.asr.txt")); err != nil {
			return nil, err
		}
		if turn.AssistantText, err = readText(turnFile); err != nil {
			return nil, err
		}
		audio := filepath.Join(dir, idx+"_assistant_audio0.mp3")
		if fsutil.IsFile(audio) {
			turn.AssistantAudio = s.relative(audio)
		}
		detail.Turns = append(detail.Turns, turn)
	}

	return detail, nil
}

func (s *Store) relative(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// readSubdirs lists directory names under dir in lexical order. A missing
// dir yields no entries.
func readSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
