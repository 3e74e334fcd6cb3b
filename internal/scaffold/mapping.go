// Package scaffold fills the base catalog with one case per recorded session,
// following a mapping from catalog sub-abilities to collected categories.
package scaffold

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mapping maps ability id to its mapped sub-abilities.
//
//	haitian:
//	  sub_abilities:
//	    story: {source_category: story_zh, lang: zh}
type Mapping map[string]AbilityMapping

type AbilityMapping struct {
	SubAbilities map[string]Source `yaml:"sub_abilities"`
}

// Source names the collected category a sub-ability draws its sessions from.
type Source struct {
	SourceCategory string `yaml:"source_category"`
	Lang           string `yaml:"lang"`
}

// LoadMapping reads a mapping file.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping: %w", err)
	}
	return ParseMapping(data)
}

// ParseMapping decodes and validates a YAML mapping.
func ParseMapping(data []byte) (Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if errs := m.Validate(); len(errs) > 0 {
		return nil, formatMappingErrors(errs)
	}
	return m, nil
}

// Validate checks every entry names a category and a language. An ability
// may only draw from one language because session_lang is per ability.
func (m Mapping) Validate() []error {
	var errs []error
	for _, abilityID := range sortedKeys(m) {
		langs := make(map[string]bool)
		subs := m[abilityID].SubAbilities
		if len(subs) == 0 {
			errs = append(errs, fmt.Errorf("%s: no sub_abilities mapped", abilityID))
		}
		for _, subID := range sortedKeys(subs) {
			src := subs[subID]
			if src.SourceCategory == "" {
				errs = append(errs, fmt.Errorf("%s.%s.source_category is required", abilityID, subID))
			}
			if src.Lang == "" {
				errs = append(errs, fmt.Errorf("%s.%s.lang is required", abilityID, subID))
			} else {
				langs[src.Lang] = true
			}
		}
		if len(langs) > 1 {
			errs = append(errs, fmt.Errorf("%s: sub_abilities map to more than one lang", abilityID))
		}
	}
	return errs
}

func formatMappingErrors(errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "mapping validation failed (%d errors):", len(errs))
	for _, e := range errs {
		fmt.Fprintf(&b, "\n  - %s", e)
	}
	return fmt.Errorf("%s", b.String())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
