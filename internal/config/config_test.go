package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("absent file must report exists=false")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("defaults not applied: %+v", cfg.Logging)
	}
	if cfg.Paths.CacheDB == "" || cfg.Paths.CacheDB[0] == '~' {
		t.Errorf("cache_db not expanded: %q", cfg.Paths.CacheDB)
	}
}

func TestLoadParsesSportsAndRules(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"

[[pattern_set]]
name = "f1"

[[pattern_set.rule]]
name = "session"
expr = 'F1\.(?P<season>\d{4})'
priority = 5

[[sport]]
id = "f1"
show = "Formula 1"
rule_set = "f1"

[[sport]]
id = "nhl"
show = "NHL"

[[sport.team]]
name = "Boston Bruins"
aliases = ["BOS", "Bruins"]
`)
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists must be true")
	}
	if len(cfg.Sports) != 2 || cfg.Sports[0].ID != "f1" || cfg.Sports[1].ID != "nhl" {
		t.Fatalf("sports = %+v", cfg.Sports)
	}

	sets, err := cfg.CompileRules()
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	if sets["f1"].Len() != 1 {
		t.Errorf("f1 rule set len = %d", sets["f1"].Len())
	}
	if _, ok := sets["nhl"]; ok {
		t.Error("sport without rule_set must be absent from compiled sets")
	}

	maps := cfg.BuildAliases()
	canonical, ok := maps["nhl"].Lookup("bruins")
	if !ok || canonical != "Boston Bruins" {
		t.Errorf("alias lookup = %q, %v", canonical, ok)
	}
}

func TestValidateUnknownPatternSet(t *testing.T) {
	path := writeConfig(t, `
[[sport]]
id = "nhl"
show = "NHL"
rule_set = "missing"
`)
	_, _, _, err := Load(path)
	var unknown *UnknownPatternSetError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownPatternSetError", err)
	}
	if unknown.Sport != "nhl" || unknown.RuleSet != "missing" {
		t.Errorf("error fields: %+v", unknown)
	}
}

func TestValidateBadRuleExpression(t *testing.T) {
	path := writeConfig(t, `
[[pattern_set]]
name = "broken"

[[pattern_set.rule]]
name = "bad"
expr = '(['
priority = 1
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid rule expression")
	}
}

func TestValidateDuplicateSportID(t *testing.T) {
	path := writeConfig(t, `
[[sport]]
id = "nhl"

[[sport]]
id = "nhl"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate sport id")
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("sample must exist after CreateSample")
	}
	if len(cfg.Sports) == 0 || len(cfg.PatternSets) == 0 {
		t.Errorf("sample should declare sports and pattern sets: %+v", cfg)
	}
}
