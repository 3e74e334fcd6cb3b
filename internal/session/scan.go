package session

import (
	"path/filepath"

	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/fsutil"
)

const summaryRunes = 50

// Scan summarizes every session of every category under collected/<lang>,
// keyed by category name. Categories without sessions are omitted; sessions
// within a category keep lexical order.
func (s *Store) Scan(lang string) (map[string][]domain.SessionSummary, error) {
	langDir := filepath.Join(s.root, lang)
	categories, err := readSubdirs(langDir)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]domain.SessionSummary)
	for _, category := range categories {
		dirs, err := readSubdirs(filepath.Join(langDir, category))
		if err != nil {
			return nil, err
		}
		var sessions []domain.SessionSummary
		for _, name := range dirs {
			if !IsSessionDir(name) {
				continue
			}
			dir := filepath.Join(langDir, category, name)
			summary, err := firstUserText(dir)
			if err != nil {
				return nil, err
			}
			if summary == "" {
				summary = name
			}
			sessions = append(sessions, domain.SessionSummary{
				SessionID: name,
				Summary:   summary,
				Turns:     countTurns(dir),
			})
		}
		if len(sessions) > 0 {
			results[category] = sessions
		}
	}
	return results, nil
}

func firstUserText(dir string) (string, error) {
	text, err := readText(filepath.Join(dir, UserTranscriptFile(0)))
	if err != nil {
		return "", err
	}
	return Truncate(text, summaryRunes), nil
}

// countTurns counts consecutive assistant text files from 000.
func countTurns(dir string) int {
	n := 0
	for fsutil.IsFile(filepath.Join(dir, AssistantTextFile(n))) {
		n++
	}
	return n
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
