// Package rules evaluates prioritized regular-expression rules against
// source filenames. Rule sets are compiled once from configuration and
// are immutable afterwards; matching is deterministic and side-effect
// free, with optional diagnostics for operator troubleshooting.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrNoPatternMatch reports that no rule in the set matched the filename.
// It is recoverable: callers fall back to structured filename parsing.
var ErrNoPatternMatch = errors.New("no pattern rule matched")

// Definition is the raw configuration shape of one rule before compilation.
type Definition struct {
	Name     string
	Expr     string
	Priority int
	// FullMatch anchors the expression so it must cover the entire
	// filename instead of any sub-span.
	FullMatch bool
}

// Rule is a compiled pattern with its evaluation priority. Named capture
// groups in the expression become variables on a successful match.
type Rule struct {
	Name     string
	Priority int
	Sport    string
	re       *regexp.Regexp
}

// Match is a successful rule evaluation.
type Match struct {
	Rule     *Rule
	Captures map[string]string
}

// Attempt records one rule evaluation for diagnostics.
type Attempt struct {
	Rule     string
	Priority int
	Matched  bool
	Reason   string
}

// Diagnostics collects every attempted rule during a match call. A nil
// *Diagnostics disables collection; collecting never changes the outcome.
type Diagnostics struct {
	Attempts []Attempt
}

func (d *Diagnostics) record(a Attempt) {
	if d == nil {
		return
	}
	d.Attempts = append(d.Attempts, a)
}

// Set is an ordered list of compiled rules for one sport. Rules are held
// in ascending priority order; ties keep declaration order.
type Set struct {
	sport string
	rules []Rule
}

// Compile builds a rule set from definitions. Definitions are reordered
// by ascending priority with a stable sort, so rules sharing a priority
// keep their declaration order. An invalid expression fails the whole
// compilation; rule-set problems are configuration-time errors, never
// match-time ones.
func Compile(sport string, defs []Definition) (*Set, error) {
	compiled := make([]Rule, 0, len(defs))
	for i, def := range defs {
		name := def.Name
		if name == "" {
			name = fmt.Sprintf("%s-rule-%d", sport, i+1)
		}
		expr := def.Expr
		if def.FullMatch {
			expr = "^(?:" + expr + ")$"
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", name, err)
		}
		compiled = append(compiled, Rule{
			Name:     name,
			Priority: def.Priority,
			Sport:    sport,
			re:       re,
		})
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority < compiled[j].Priority
	})
	return &Set{sport: sport, rules: compiled}, nil
}

// Sport returns the sport this set was compiled for.
func (s *Set) Sport() string {
	if s == nil {
		return ""
	}
	return s.sport
}

// Len reports the number of compiled rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Match evaluates rules in ascending priority order and returns the first
// success with its named captures. Every attempted rule is appended to
// diag when diag is non-nil. Returns ErrNoPatternMatch when no rule
// matches, or when the set is empty.
func (s *Set) Match(filename string, diag *Diagnostics) (*Match, error) {
	if s == nil || len(s.rules) == 0 {
		return nil, ErrNoPatternMatch
	}
	for i := range s.rules {
		rule := &s.rules[i]
		groups := rule.re.FindStringSubmatch(filename)
		if groups == nil {
			diag.record(Attempt{Rule: rule.Name, Priority: rule.Priority, Reason: "expression did not match"})
			continue
		}
		captures := make(map[string]string)
		for gi, groupName := range rule.re.SubexpNames() {
			if gi == 0 || groupName == "" || gi >= len(groups) {
				continue
			}
			if groups[gi] != "" {
				captures[groupName] = groups[gi]
			}
		}
		diag.record(Attempt{Rule: rule.Name, Priority: rule.Priority, Matched: true})
		return &Match{Rule: rule, Captures: captures}, nil
	}
	return nil, ErrNoPatternMatch
}
