package scaffold

import (
	"fmt"

	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/domain"
)

// Scanner summarizes the sessions of one language by category.
type Scanner interface {
	Scan(lang string) (map[string][]domain.SessionSummary, error)
}

// Entry reports what happened to one mapped sub-ability.
type Entry struct {
	Ability        string
	AbilityName    string
	SubAbility     string
	SubAbilityName string
	Category       string
	Lang           string
	Sessions       []domain.SessionSummary
	// Missing is set when the category has no sessions; the sub-ability's
	// cases are left untouched.
	Missing bool
}

// Report summarizes a scaffold run.
type Report struct {
	Entries []Entry
	// Unmatched lists mapping keys with no counterpart in the catalog.
	Unmatched []string
}

// CaseCount is the number of cases written.
func (r *Report) CaseCount() int {
	n := 0
	for _, e := range r.Entries {
		n += len(e.Sessions)
	}
	return n
}

// Apply replaces the cases of every mapped sub-ability in doc with one case
// per session of its source category, in lexical session order. Mapped
// abilities get session_lang set to the mapping's language.
func Apply(doc *catalog.Document, m Mapping, scanner Scanner) (*Report, error) {
	if errs := m.Validate(); len(errs) > 0 {
		return nil, formatMappingErrors(errs)
	}

	scans := make(map[string]map[string][]domain.SessionSummary)
	scan := func(lang string) (map[string][]domain.SessionSummary, error) {
		if s, ok := scans[lang]; ok {
			return s, nil
		}
		s, err := scanner.Scan(lang)
		if err != nil {
			return nil, fmt.Errorf("scanning %s sessions: %w", lang, err)
		}
		scans[lang] = s
		return s, nil
	}

	report := &Report{}
	matched := make(map[string]bool)

	for ai := range doc.Abilities {
		ability := &doc.Abilities[ai]
		am, ok := m[ability.ID]
		if !ok {
			continue
		}
		for si := range ability.SubAbilities {
			sub := &ability.SubAbilities[si]
			src, ok := am.SubAbilities[sub.ID]
			if !ok {
				continue
			}
			matched[ability.ID+"/"+sub.ID] = true
			ability.SessionLang = src.Lang

			byCategory, err := scan(src.Lang)
			if err != nil {
				return nil, err
			}
			entry := Entry{
				Ability:        ability.ID,
				AbilityName:    ability.Name,
				SubAbility:     sub.ID,
				SubAbilityName: sub.Name,
				Category:       src.SourceCategory,
				Lang:           src.Lang,
			}
			sessions, ok := byCategory[src.SourceCategory]
			if !ok {
				entry.Missing = true
				report.Entries = append(report.Entries, entry)
				continue
			}
			entry.Sessions = sessions
			sub.Cases = CasesFor(ability.ID, sub.ID, sessions)
			report.Entries = append(report.Entries, entry)
		}
	}

	for _, abilityID := range sortedKeys(m) {
		for _, subID := range sortedKeys(m[abilityID].SubAbilities) {
			if !matched[abilityID+"/"+subID] {
				report.Unmatched = append(report.Unmatched, abilityID+"/"+subID)
			}
		}
	}
	return report, nil
}

// CasesFor builds session-derived cases with ids <ability>_<sub>_<NNN>.
func CasesFor(abilityID, subID string, sessions []domain.SessionSummary) []catalog.Case {
	cases := make([]catalog.Case, 0, len(sessions))
	for i, s := range sessions {
		cases = append(cases, catalog.Case{
			ID:            fmt.Sprintf("%s_%s_%03d", abilityID, subID, i+1),
			Summary:       s.Summary,
			SourceSession: s.SessionID,
		})
	}
	return cases
}
