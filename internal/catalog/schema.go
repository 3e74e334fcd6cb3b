package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/fsutil"
)

// Document is the authoring-side catalog for one locale. The editor saves it
// as data_<locale>.json; the base catalog (cases.json) uses the same shape.
type Document struct {
	Meta      domain.Meta `json:"meta"`
	Abilities []Ability   `json:"abilities"`
}

// Ability is the top-level grouping shown as a tab on the page.
type Ability struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	SessionLang  string       `json:"session_lang,omitempty"`
	SubAbilities []SubAbility `json:"sub_abilities"`
}

type SubAbility struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cases       []Case `json:"cases"`
}

// Case is one demo conversation. A case is either fully specified (System and
// Turns present, typically saved by the editor) or derived at build time from
// SourceSession.
type Case struct {
	ID               string            `json:"id"`
	Summary          string            `json:"summary"`
	SourceSession    string            `json:"source_session,omitempty"`
	UserTextOverride map[string]string `json:"user_text_override,omitempty"`
	System           *System           `json:"system,omitempty"`
	Turns            []Turn            `json:"turns,omitempty"`
}

type System struct {
	Prefix   string  `json:"prefix"`
	RefAudio *string `json:"ref_audio"`
	Suffix   string  `json:"suffix"`
}

type Turn struct {
	UserText       string  `json:"user_text"`
	AssistantText  string  `json:"assistant_text"`
	AssistantAudio *string `json:"assistant_audio"`
}

// FullySpecified reports whether the case can be published without reading
// its source session.
func (c *Case) FullySpecified() bool {
	return len(c.Turns) > 0 && c.System != nil
}

// HasFullData reports whether any case in the document carries dialogue turns.
func (d *Document) HasFullData() bool {
	for _, a := range d.Abilities {
		for _, sub := range a.SubAbilities {
			for _, c := range sub.Cases {
				if len(c.Turns) > 0 {
					return true
				}
			}
		}
	}
	return false
}

// Empty returns a document with the given title and no abilities.
func Empty(title string) *Document {
	return &Document{
		Meta:      domain.Meta{Title: title},
		Abilities: []Ability{},
	}
}

// Load reads and parses a catalog JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a catalog document from JSON.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &doc, nil
}

// Marshal encodes the document the way it is stored on disk: two-space
// indent, no HTML escaping, trailing newline.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the document atomically: a temp file in the target directory
// is renamed over path.
func Save(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data)
}
