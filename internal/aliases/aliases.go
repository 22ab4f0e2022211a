// Package aliases maps team aliases to canonical team names. Maps are
// built once per sport from configuration and are immutable afterwards.
package aliases

import (
	"strings"

	"matchday/internal/normalize"
)

// Entry is one canonical team name with its known aliases, in declaration
// order. The order of entries is significant: on normalized-key collisions
// the first writer keeps the slot.
type Entry struct {
	Canonical string
	Aliases   []string
}

// Map resolves normalized alias tokens to canonical team names.
type Map struct {
	byToken map[string]string
}

// Build constructs an alias map from ordered entries. Canonical names are
// registered as aliases of themselves. Empty and whitespace-only aliases
// are skipped. Insertion is first-write-wins: when two teams normalize to
// the same token, the earlier entry owns it and the later team remains
// reachable only through its other aliases.
func Build(entries []Entry) *Map {
	m := &Map{byToken: make(map[string]string, len(entries)*4)}
	for _, entry := range entries {
		canonical := strings.TrimSpace(entry.Canonical)
		if canonical == "" {
			continue
		}
		m.insert(normalize.Token(canonical), canonical)
		for _, alias := range entry.Aliases {
			if strings.TrimSpace(alias) == "" {
				continue
			}
			m.insert(normalize.Token(alias), canonical)
		}
	}
	return m
}

func (m *Map) insert(token, canonical string) {
	if token == "" {
		return
	}
	if _, exists := m.byToken[token]; exists {
		return
	}
	m.byToken[token] = canonical
}

// Lookup resolves a raw token to its canonical team name. The token is
// normalized before lookup, so case and punctuation differences do not
// matter.
func (m *Map) Lookup(token string) (string, bool) {
	if m == nil {
		return "", false
	}
	canonical, ok := m.byToken[normalize.Token(token)]
	return canonical, ok
}

// Len reports the number of distinct normalized tokens registered.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byToken)
}
