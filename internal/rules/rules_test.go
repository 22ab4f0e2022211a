package rules

import (
	"errors"
	"testing"
)

func TestMatchAscendingPriorityOrder(t *testing.T) {
	set, err := Compile("f1", []Definition{
		{Name: "low-priority", Expr: `(?P<session>FP\d)`, Priority: 10},
		{Name: "high-priority", Expr: `R(?P<round>\d+)`, Priority: 5},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	match, err := set.Match("F1.2024.R01.FP1.mkv", nil)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match.Rule.Name != "high-priority" {
		t.Fatalf("winner = %q, want high-priority", match.Rule.Name)
	}
	if match.Captures["round"] != "01" {
		t.Errorf("captures = %v, want round=01", match.Captures)
	}
	if _, ok := match.Captures["session"]; ok {
		t.Error("losing rule's captures must not leak into the result")
	}
}

func TestMatchPriorityTieKeepsDeclarationOrder(t *testing.T) {
	set, err := Compile("demo", []Definition{
		{Name: "declared-first", Expr: `game`, Priority: 1},
		{Name: "declared-second", Expr: `game`, Priority: 1},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	match, err := set.Match("game.mkv", nil)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match.Rule.Name != "declared-first" {
		t.Fatalf("tie winner = %q, want declared-first", match.Rule.Name)
	}
}

func TestMatchStopsAtFirstSuccess(t *testing.T) {
	set, err := Compile("demo", []Definition{
		{Name: "p1", Expr: `(?P<a>match)`, Priority: 1},
		{Name: "p2", Expr: `(?P<b>match)`, Priority: 2},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	diag := &Diagnostics{}
	match, err := set.Match("match.mkv", diag)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match.Rule.Name != "p1" {
		t.Fatalf("winner = %q, want p1", match.Rule.Name)
	}
	if len(diag.Attempts) != 1 {
		t.Fatalf("evaluation must stop at first success, attempts = %v", diag.Attempts)
	}
}

func TestMatchNoRuleMatches(t *testing.T) {
	set, err := Compile("demo", []Definition{
		{Name: "only", Expr: `NHL`, Priority: 1},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	diag := &Diagnostics{}
	_, err = set.Match("random-video.mkv", diag)
	if !errors.Is(err, ErrNoPatternMatch) {
		t.Fatalf("err = %v, want ErrNoPatternMatch", err)
	}
	if len(diag.Attempts) != 1 || diag.Attempts[0].Matched {
		t.Fatalf("failed attempt must be recorded, got %v", diag.Attempts)
	}
	if diag.Attempts[0].Reason == "" {
		t.Error("failed attempt must carry a reason")
	}
}

func TestDiagnosticsDoNotAlterOutcome(t *testing.T) {
	set, err := Compile("demo", []Definition{
		{Name: "miss", Expr: `zzz`, Priority: 1},
		{Name: "hit", Expr: `(?P<x>abc)`, Priority: 2},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	withDiag, errWith := set.Match("abc.mkv", &Diagnostics{})
	withoutDiag, errWithout := set.Match("abc.mkv", nil)
	if errWith != nil || errWithout != nil {
		t.Fatalf("unexpected errors: %v, %v", errWith, errWithout)
	}
	if withDiag.Rule.Name != withoutDiag.Rule.Name {
		t.Fatal("diagnostics collection changed the matching outcome")
	}
}

func TestCompileEmptySetMatchesNothing(t *testing.T) {
	set, err := Compile("demo", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := set.Match("anything", nil); !errors.Is(err, ErrNoPatternMatch) {
		t.Fatalf("empty set err = %v, want ErrNoPatternMatch", err)
	}
}

func TestCompileRejectsInvalidExpression(t *testing.T) {
	_, err := Compile("demo", []Definition{{Name: "bad", Expr: `([`, Priority: 1}})
	if err == nil {
		t.Fatal("expected compile error for invalid expression")
	}
}

func TestFullMatchAnchorsExpression(t *testing.T) {
	set, err := Compile("demo", []Definition{
		{Name: "anchored", Expr: `NHL\.(?P<date>\d{4}-\d{2}-\d{2})\.mkv`, Priority: 1, FullMatch: true},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := set.Match("prefix-NHL.2025-11-22.mkv", nil); !errors.Is(err, ErrNoPatternMatch) {
		t.Fatal("anchored rule must not match a sub-span")
	}
	match, err := set.Match("NHL.2025-11-22.mkv", nil)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match.Captures["date"] != "2025-11-22" {
		t.Errorf("captures = %v", match.Captures)
	}
}

func TestOptionalGroupAbsentFromCaptures(t *testing.T) {
	set, err := Compile("demo", []Definition{
		{Name: "optional", Expr: `game(?:\.(?P<tag>\w+))?\.mkv`, Priority: 1},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	match, err := set.Match("game.mkv", nil)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if _, ok := match.Captures["tag"]; ok {
		t.Errorf("empty optional group must be absent, got %v", match.Captures)
	}
}
