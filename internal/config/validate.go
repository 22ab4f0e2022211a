package config

import (
	"fmt"
	"strings"

	"matchday/internal/aliases"
	"matchday/internal/rules"
)

// UnknownPatternSetError reports a sport referencing an undefined rule
// set. Fatal at configuration build time, never at match time.
type UnknownPatternSetError struct {
	Sport   string
	RuleSet string
}

func (e *UnknownPatternSetError) Error() string {
	return fmt.Sprintf("sport %q references undefined pattern set %q", e.Sport, e.RuleSet)
}

// Validate checks structural configuration invariants: unique non-empty
// identifiers, resolvable pattern-set references, and compilable rule
// expressions.
func (c *Config) Validate() error {
	setNames := make(map[string]struct{}, len(c.PatternSets))
	for i, set := range c.PatternSets {
		name := strings.TrimSpace(set.Name)
		if name == "" {
			return fmt.Errorf("pattern set %d: name is required", i+1)
		}
		if _, dup := setNames[name]; dup {
			return fmt.Errorf("pattern set %q: duplicate name", name)
		}
		setNames[name] = struct{}{}

		if _, err := rules.Compile(name, ruleDefinitions(set.Rules)); err != nil {
			return fmt.Errorf("pattern set %q: %w", name, err)
		}
	}

	sportIDs := make(map[string]struct{}, len(c.Sports))
	for i, sport := range c.Sports {
		id := strings.TrimSpace(sport.ID)
		if id == "" {
			return fmt.Errorf("sport %d: id is required", i+1)
		}
		if _, dup := sportIDs[id]; dup {
			return fmt.Errorf("sport %q: duplicate id", id)
		}
		sportIDs[id] = struct{}{}

		if ruleSet := strings.TrimSpace(sport.RuleSet); ruleSet != "" {
			if _, ok := setNames[ruleSet]; !ok {
				return &UnknownPatternSetError{Sport: id, RuleSet: ruleSet}
			}
		}
	}
	return nil
}

// CompileRules builds the immutable per-sport rule sets. Sports without
// a rule set are absent from the result and fall straight through to
// structured parsing.
func (c *Config) CompileRules() (map[string]*rules.Set, error) {
	sets := make(map[string]PatternSet, len(c.PatternSets))
	for _, set := range c.PatternSets {
		sets[set.Name] = set
	}

	compiled := make(map[string]*rules.Set, len(c.Sports))
	for _, sport := range c.Sports {
		ruleSet := strings.TrimSpace(sport.RuleSet)
		if ruleSet == "" {
			continue
		}
		set, ok := sets[ruleSet]
		if !ok {
			return nil, &UnknownPatternSetError{Sport: sport.ID, RuleSet: ruleSet}
		}
		sportSet, err := rules.Compile(sport.ID, ruleDefinitions(set.Rules))
		if err != nil {
			return nil, fmt.Errorf("sport %q: %w", sport.ID, err)
		}
		compiled[sport.ID] = sportSet
	}
	return compiled, nil
}

// BuildAliases builds the immutable per-sport alias maps, preserving
// team declaration order.
func (c *Config) BuildAliases() map[string]*aliases.Map {
	maps := make(map[string]*aliases.Map, len(c.Sports))
	for _, sport := range c.Sports {
		entries := make([]aliases.Entry, 0, len(sport.Teams))
		for _, team := range sport.Teams {
			entries = append(entries, aliases.Entry{Canonical: team.Name, Aliases: team.Aliases})
		}
		maps[sport.ID] = aliases.Build(entries)
	}
	return maps
}

func ruleDefinitions(defs []RuleDef) []rules.Definition {
	out := make([]rules.Definition, 0, len(defs))
	for _, def := range defs {
		out = append(out, rules.Definition{
			Name:      def.Name,
			Expr:      def.Expr,
			Priority:  def.Priority,
			FullMatch: def.FullMatch,
		})
	}
	return out
}
