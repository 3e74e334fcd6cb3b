package domain

// Site is the published payload embedded in data.js. It carries no provenance:
// source sessions and authoring overrides never reach the page.
type Site struct {
	Meta      Meta          `json:"meta"`
	Abilities []SiteAbility `json:"abilities"`
}

// Meta is the page-level title block shared by authoring documents and the site.
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SiteAbility struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	SubAbilities []SiteSubAbility `json:"sub_abilities"`
}

type SiteSubAbility struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cases       []SiteCase `json:"cases"`
}

type SiteCase struct {
	ID      string     `json:"id"`
	Summary string     `json:"summary"`
	System  SiteSystem `json:"system"`
	Turns   []SiteTurn `json:"turns"`
}

// SiteSystem holds the system prompt around the reference voice. RefAudio is
// nil when the case has no reference audio.
type SiteSystem struct {
	Prefix   string  `json:"prefix"`
	RefAudio *string `json:"ref_audio"`
	Suffix   string  `json:"suffix"`
}

type SiteTurn struct {
	UserText       string  `json:"user_text"`
	AssistantText  string  `json:"assistant_text"`
	AssistantAudio *string `json:"assistant_audio"`
}

// CaseCount returns the number of published cases across all abilities.
func (s *Site) CaseCount() int {
	n := 0
	for _, a := range s.Abilities {
		for _, sub := range a.SubAbilities {
			n += len(sub.Cases)
		}
	}
	return n
}
