package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate checks the document for errors before it is saved or built.
// Returns a slice of all validation errors found.
func Validate(doc *Document) []error {
	var errs []error

	abilityIDs := make(map[string]bool)
	for i, a := range doc.Abilities {
		prefix := fmt.Sprintf("abilities[%d]", i)
		errs = append(errs, validateID(prefix, a.ID, abilityIDs)...)
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		errs = append(errs, validateSubAbilities(prefix, a.SubAbilities)...)
	}

	return errs
}

func validateSubAbilities(parent string, subs []SubAbility) []error {
	var errs []error

	subIDs := make(map[string]bool)
	for i, sub := range subs {
		prefix := fmt.Sprintf("%s.sub_abilities[%d]", parent, i)
		errs = append(errs, validateID(prefix, sub.ID, subIDs)...)
		if sub.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		errs = append(errs, validateCases(prefix, sub.Cases)...)
	}

	return errs
}

func validateCases(parent string, cases []Case) []error {
	var errs []error

	caseIDs := make(map[string]bool)
	for i, c := range cases {
		prefix := fmt.Sprintf("%s.cases[%d]", parent, i)
		errs = append(errs, validateID(prefix, c.ID, caseIDs)...)

		for key := range c.UserTextOverride {
			if _, err := ParseTurnIndex(key); err != nil {
				errs = append(errs, fmt.Errorf("%s.user_text_override: %w", prefix, err))
			}
		}
		if c.SourceSession != "" && !validPathSegment(c.SourceSession) {
			errs = append(errs, fmt.Errorf("%s.source_session: invalid session name %q", prefix, c.SourceSession))
		}
	}

	return errs
}

// validateID enforces presence, sibling uniqueness, and that the id is usable
// as a single path segment (case ids name audio directories).
func validateID(prefix, id string, seen map[string]bool) []error {
	if id == "" {
		return []error{fmt.Errorf("%s.id is required", prefix)}
	}
	var errs []error
	if seen[id] {
		errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, id))
	} else {
		seen[id] = true
	}
	if !validPathSegment(id) {
		errs = append(errs, fmt.Errorf("%s.id: %q must not contain path separators or \"..\"", prefix, id))
	}
	return errs
}

func validPathSegment(s string) bool {
	return s != "." && !strings.Contains(s, "..") && !strings.ContainsAny(s, `/\`)
}

// ParseTurnIndex parses a user_text_override key as a zero-based turn index.
func ParseTurnIndex(key string) (int, error) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || strconv.Itoa(n) != key {
		return 0, fmt.Errorf("key %q is not a zero-based turn index", key)
	}
	return n, nil
}

// FormatValidationErrors folds a list of validation errors into one error.
func FormatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("catalog validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
