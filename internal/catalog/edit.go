package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate id")
)

// Ref addresses a node in the hierarchy as "ability[/sub[/case]]".
type Ref struct {
	Ability    string
	SubAbility string
	Case       string
}

// ParseRef splits a slash-separated reference. Empty segments are rejected.
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) > 3 {
		return Ref{}, fmt.Errorf("reference %q has more than three segments", s)
	}
	for _, p := range parts {
		if p == "" {
			return Ref{}, fmt.Errorf("reference %q has an empty segment", s)
		}
	}
	var r Ref
	r.Ability = parts[0]
	if len(parts) > 1 {
		r.SubAbility = parts[1]
	}
	if len(parts) > 2 {
		r.Case = parts[2]
	}
	return r, nil
}

func (r Ref) String() string {
	parts := []string{r.Ability}
	if r.SubAbility != "" {
		parts = append(parts, r.SubAbility)
	}
	if r.Case != "" {
		parts = append(parts, r.Case)
	}
	return strings.Join(parts, "/")
}

// Ability returns the ability with the given id.
func (d *Document) Ability(id string) (*Ability, error) {
	i := indexOf(d.Abilities, func(a Ability) string { return a.ID }, id)
	if i < 0 {
		return nil, fmt.Errorf("ability %q: %w", id, ErrNotFound)
	}
	return &d.Abilities[i], nil
}

// SubAbility returns the sub-ability addressed by abilityID/subID.
func (d *Document) SubAbility(abilityID, subID string) (*SubAbility, error) {
	a, err := d.Ability(abilityID)
	if err != nil {
		return nil, err
	}
	i := indexOf(a.SubAbilities, func(s SubAbility) string { return s.ID }, subID)
	if i < 0 {
		return nil, fmt.Errorf("sub-ability %q in %q: %w", subID, abilityID, ErrNotFound)
	}
	return &a.SubAbilities[i], nil
}

// Case returns the case addressed by ref.
func (d *Document) Case(ref Ref) (*Case, error) {
	sub, err := d.SubAbility(ref.Ability, ref.SubAbility)
	if err != nil {
		return nil, err
	}
	i := indexOf(sub.Cases, func(c Case) string { return c.ID }, ref.Case)
	if i < 0 {
		return nil, fmt.Errorf("case %q: %w", ref, ErrNotFound)
	}
	return &sub.Cases[i], nil
}

// AddAbility inserts a at position at, or appends when at is out of range.
func (d *Document) AddAbility(a Ability, at int) error {
	if indexOf(d.Abilities, func(x Ability) string { return x.ID }, a.ID) >= 0 {
		return fmt.Errorf("ability %q: %w", a.ID, ErrDuplicate)
	}
	d.Abilities = insertAt(d.Abilities, a, at)
	return nil
}

// AddSubAbility inserts sub under abilityID.
func (d *Document) AddSubAbility(abilityID string, sub SubAbility, at int) error {
	a, err := d.Ability(abilityID)
	if err != nil {
		return err
	}
	if indexOf(a.SubAbilities, func(x SubAbility) string { return x.ID }, sub.ID) >= 0 {
		return fmt.Errorf("sub-ability %q in %q: %w", sub.ID, abilityID, ErrDuplicate)
	}
	a.SubAbilities = insertAt(a.SubAbilities, sub, at)
	return nil
}

// AddCase inserts c under ref.Ability/ref.SubAbility; ref.Case is ignored.
func (d *Document) AddCase(ref Ref, c Case, at int) error {
	sub, err := d.SubAbility(ref.Ability, ref.SubAbility)
	if err != nil {
		return err
	}
	if indexOf(sub.Cases, func(x Case) string { return x.ID }, c.ID) >= 0 {
		return fmt.Errorf("case %q in %s/%s: %w", c.ID, ref.Ability, ref.SubAbility, ErrDuplicate)
	}
	sub.Cases = insertAt(sub.Cases, c, at)
	return nil
}

// Remove deletes the node addressed by ref (the deepest segment set).
func (d *Document) Remove(ref Ref) error {
	switch {
	case ref.Case != "":
		sub, err := d.SubAbility(ref.Ability, ref.SubAbility)
		if err != nil {
			return err
		}
		i := indexOf(sub.Cases, func(c Case) string { return c.ID }, ref.Case)
		if i < 0 {
			return fmt.Errorf("case %q: %w", ref, ErrNotFound)
		}
		sub.Cases = append(sub.Cases[:i], sub.Cases[i+1:]...)
	case ref.SubAbility != "":
		a, err := d.Ability(ref.Ability)
		if err != nil {
			return err
		}
		i := indexOf(a.SubAbilities, func(s SubAbility) string { return s.ID }, ref.SubAbility)
		if i < 0 {
			return fmt.Errorf("sub-ability %q: %w", ref, ErrNotFound)
		}
		a.SubAbilities = append(a.SubAbilities[:i], a.SubAbilities[i+1:]...)
	default:
		i := indexOf(d.Abilities, func(a Ability) string { return a.ID }, ref.Ability)
		if i < 0 {
			return fmt.Errorf("ability %q: %w", ref.Ability, ErrNotFound)
		}
		d.Abilities = append(d.Abilities[:i], d.Abilities[i+1:]...)
	}
	return nil
}

// Move reorders the node addressed by ref among its siblings so that it ends
// up at index to (clamped to the sibling range).
func (d *Document) Move(ref Ref, to int) error {
	switch {
	case ref.Case != "":
		sub, err := d.SubAbility(ref.Ability, ref.SubAbility)
		if err != nil {
			return err
		}
		i := indexOf(sub.Cases, func(c Case) string { return c.ID }, ref.Case)
		if i < 0 {
			return fmt.Errorf("case %q: %w", ref, ErrNotFound)
		}
		sub.Cases = moveItem(sub.Cases, i, to)
	case ref.SubAbility != "":
		a, err := d.Ability(ref.Ability)
		if err != nil {
			return err
		}
		i := indexOf(a.SubAbilities, func(s SubAbility) string { return s.ID }, ref.SubAbility)
		if i < 0 {
			return fmt.Errorf("sub-ability %q: %w", ref, ErrNotFound)
		}
		a.SubAbilities = moveItem(a.SubAbilities, i, to)
	default:
		i := indexOf(d.Abilities, func(a Ability) string { return a.ID }, ref.Ability)
		if i < 0 {
			return fmt.Errorf("ability %q: %w", ref.Ability, ErrNotFound)
		}
		d.Abilities = moveItem(d.Abilities, i, to)
	}
	return nil
}

func indexOf[T any](items []T, id func(T) string, want string) int {
	for i, item := range items {
		if id(item) == want {
			return i
		}
	}
	return -1
}

func insertAt[T any](items []T, item T, at int) []T {
	if at < 0 || at >= len(items) {
		return append(items, item)
	}
	items = append(items, item)
	copy(items[at+1:], items[at:])
	items[at] = item
	return items
}

func moveItem[T any](items []T, from, to int) []T {
	if to < 0 {
		to = 0
	}
	if to >= len(items) {
		to = len(items) - 1
	}
	if from == to {
		return items
	}
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items, item)
	copy(items[to+1:], items[to:len(items)-1])
	items[to] = item
	return items
}
