package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"matchday/internal/aliases"
	"matchday/internal/metadata"
	"matchday/internal/parsename"
	"matchday/internal/rules"
)

func airDate(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func nhlShow() *metadata.Show {
	return &metadata.Show{
		SportID: "nhl",
		Title:   "NHL",
		Seasons: []metadata.Season{
			{
				Key:    "2025",
				Number: 2025,
				Title:  "2025-26 Season",
				Episodes: []metadata.Episode{
					{
						Key:     "20251122-njd-phi",
						Title:   "New Jersey Devils vs Philadelphia Flyers",
						Aliases: []string{"NJD vs PHI"},
						Aired:   airDate(2025, 11, 22),
						Index:   1,
					},
					{
						Key:   "20251123-bos-nyr",
						Title: "Boston Bruins vs New York Rangers",
						Aired: airDate(2025, 11, 23),
						Index: 2,
					},
				},
			},
		},
	}
}

func nhlAliases() *aliases.Map {
	return aliases.Build([]aliases.Entry{
		{Canonical: "New Jersey Devils", Aliases: []string{"NJD", "Devils"}},
		{Canonical: "Philadelphia Flyers", Aliases: []string{"PHI", "Flyers"}},
		{Canonical: "Boston Bruins", Aliases: []string{"BOS", "Bruins"}},
		{Canonical: "New York Rangers", Aliases: []string{"NYR", "Rangers"}},
	})
}

func emptySet(t *testing.T, sport string) *rules.Set {
	t.Helper()
	set, err := rules.Compile(sport, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return set
}

func TestResolveStructuredFallbackAtPair(t *testing.T) {
	// No regex rules configured: the '@'-separated pair must resolve
	// through the structured fallback path after alias resolution.
	r := New(nhlShow(), emptySet(t, "nhl"), nhlAliases(), nil)

	match, err := r.Resolve(context.Background(), SourceFile{
		Path:    "/srv/incoming/NHL-2025-11-22_NJD@PHI.mkv",
		MTimeNS: 1700000000000000000,
		Size:    4096,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if match.Episode.Key != "20251122-njd-phi" {
		t.Fatalf("episode = %q, want 20251122-njd-phi", match.Episode.Key)
	}
	if match.Season.Key != "2025" {
		t.Errorf("season = %q", match.Season.Key)
	}
	if match.RuleName != "" {
		t.Errorf("no rule should be credited, got %q", match.RuleName)
	}
}

func TestResolveTeamsEitherOrder(t *testing.T) {
	r := New(nhlShow(), emptySet(t, "nhl"), nhlAliases(), nil)

	for _, filename := range []string{
		"Devils vs Flyers.mkv",
		"Flyers vs Devils.mkv",
		"PHI @ NJD.mkv",
	} {
		match, err := r.Resolve(context.Background(), SourceFile{Path: filename})
		if err != nil {
			t.Fatalf("Resolve(%q): %v", filename, err)
		}
		if match.Episode.Key != "20251122-njd-phi" {
			t.Errorf("Resolve(%q) = %q", filename, match.Episode.Key)
		}
	}
}

func TestResolveByExactDate(t *testing.T) {
	r := New(nhlShow(), emptySet(t, "nhl"), nhlAliases(), nil)

	match, err := r.Resolve(context.Background(), SourceFile{Path: "NHL 2025-11-23 RS.mkv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if match.Episode.Key != "20251123-bos-nyr" {
		t.Fatalf("episode = %q", match.Episode.Key)
	}
}

func TestResolvePatternRuleIdentityCaptures(t *testing.T) {
	set, err := rules.Compile("nhl", []rules.Definition{
		{
			Name:     "keyed",
			Expr:     `(?P<season>\d{4})\.(?P<episode>\d+)\.fixture`,
			Priority: 1,
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	r := New(nhlShow(), set, nhlAliases(), nil)

	match, err := r.Resolve(context.Background(), SourceFile{Path: "2025.2.fixture.mkv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if match.Episode.Key != "20251123-bos-nyr" {
		t.Fatalf("episode = %q", match.Episode.Key)
	}
	if match.RuleName != "keyed" {
		t.Errorf("rule = %q, want keyed", match.RuleName)
	}
}

func TestResolvePatternCapturesAsHints(t *testing.T) {
	set, err := rules.Compile("nhl", []rules.Definition{
		{
			Name:     "hints",
			Expr:     `(?P<away>[A-Z]{3})@(?P<home>[A-Z]{3})`,
			Priority: 1,
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	r := New(nhlShow(), set, nhlAliases(), nil)

	match, err := r.Resolve(context.Background(), SourceFile{Path: "NJD@PHI.mkv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if match.Episode.Key != "20251122-njd-phi" {
		t.Fatalf("episode = %q", match.Episode.Key)
	}
	if match.RuleName != "hints" {
		t.Errorf("rule = %q", match.RuleName)
	}
}

func TestResolvePriorityWinnerCapturesInResult(t *testing.T) {
	set, err := rules.Compile("f1", []rules.Definition{
		{Name: "priority-5", Expr: `F1\.(?P<season>\d{4})\.R(?P<episode>\d+)`, Priority: 5},
		{Name: "priority-10", Expr: `F1\.(?P<other>\d{4})`, Priority: 10},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	show := &metadata.Show{
		SportID: "f1",
		Title:   "Formula 1",
		Seasons: []metadata.Season{
			{
				Key:    "2024",
				Number: 2024,
				Episodes: []metadata.Episode{
					{Key: "r01-fp1", Title: "Round 1 FP1", Index: 1},
				},
			},
		},
	}
	r := New(show, set, nil, nil)

	match, err := r.Resolve(context.Background(), SourceFile{Path: "F1.2024.R01.FP1.mkv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if match.RuleName != "priority-5" {
		t.Fatalf("rule = %q, want priority-5", match.RuleName)
	}
	vars := match.Vars()
	if vars["season"] != "2024" {
		t.Errorf("capture season missing from vars: %v", vars)
	}
	if _, ok := vars["other"]; ok {
		t.Error("losing rule's captures must not appear in vars")
	}
}

func TestResolveAmbiguousTie(t *testing.T) {
	show := &metadata.Show{
		SportID: "afl",
		Title:   "AFL",
		Seasons: []metadata.Season{
			{
				Key:    "finals",
				Number: 1,
				Episodes: []metadata.Episode{
					{Key: "a", Title: "Richmond vs Carlton Final", Index: 1},
					{Key: "b", Title: "Carlton vs Richmond Final", Index: 2},
				},
			},
		},
	}
	r := New(show, emptySet(t, "afl"), nil, nil)

	_, err := r.Resolve(context.Background(), SourceFile{Path: "Richmond v Carlton.mkv"})
	if err == nil {
		t.Fatal("expected ambiguous failure")
	}
	var ambiguous *AmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("err = %v, want AmbiguousError", err)
	}
	if len(ambiguous.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(ambiguous.Candidates))
	}
}

func TestResolveSpecificityBreaksTie(t *testing.T) {
	show := &metadata.Show{
		SportID: "nrl",
		Title:   "NRL",
		Seasons: []metadata.Season{
			{
				Key:    "7",
				Number: 7,
				Episodes: []metadata.Episode{
					{Key: "specific", Title: "Round 7 Broncos vs Storm", Index: 1},
					{Key: "generic", Title: "Broncos vs Storm Final", Index: 2},
				},
			},
		},
	}
	r := New(show, emptySet(t, "nrl"), nil, nil)

	match, err := r.Resolve(context.Background(), SourceFile{Path: "Broncos v Storm.mkv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if match.Episode.Key != "specific" {
		t.Fatalf("episode = %q, want specific (higher label specificity)", match.Episode.Key)
	}
}

func TestResolveRoundOnlySingleEpisodeSeason(t *testing.T) {
	show := &metadata.Show{
		SportID: "f1",
		Title:   "Formula 1",
		Seasons: []metadata.Season{
			{Key: "r1", Number: 1, Episodes: []metadata.Episode{{Key: "race", Title: "Race", Index: 1}}},
			{Key: "r2", Number: 2, Episodes: []metadata.Episode{{Key: "race2", Title: "Race", Index: 1}}},
		},
	}
	r := New(show, emptySet(t, "f1"), nil, nil)

	match, err := r.Resolve(context.Background(), SourceFile{Path: "GP Round 2 Race.mkv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if match.Episode.Key != "race2" {
		t.Fatalf("episode = %q, want race2", match.Episode.Key)
	}
}

func TestResolveNoUsableFields(t *testing.T) {
	r := New(nhlShow(), emptySet(t, "nhl"), nhlAliases(), nil)

	_, err := r.Resolve(context.Background(), SourceFile{Path: "randomclip.mkv"})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
	if !errors.Is(err, parsename.ErrNoUsableFields) {
		t.Fatalf("err = %v, want wrapped ErrNoUsableFields", err)
	}
	var resolution *ResolutionError
	if !errors.As(err, &resolution) {
		t.Fatal("expected ResolutionError with diagnostics")
	}
}

func TestResolveUnknownTeamsNoMatch(t *testing.T) {
	r := New(nhlShow(), emptySet(t, "nhl"), nhlAliases(), nil)

	_, err := r.Resolve(context.Background(), SourceFile{Path: "Sharks vs Kraken.mkv"})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestVarsIdentityNotClobberedByCaptures(t *testing.T) {
	match := &Match{
		Sport:     "nhl",
		ShowTitle: "NHL",
		Season:    &metadata.Season{Key: "2025", Number: 2025},
		Episode:   &metadata.Episode{Key: "e1", Title: "Devils vs Flyers", Index: 1},
		Extra: map[string]string{
			"episode_key": "spoofed",
			"quality":     "1080p",
		},
		source: SourceFile{Path: "/in/a.mkv", MTimeNS: 42, Size: 7},
	}
	vars := match.Vars()
	if vars["episode_key"] != "e1" {
		t.Errorf("identity key overwritten: %q", vars["episode_key"])
	}
	if vars["quality"] != "1080p" {
		t.Errorf("new capture key missing: %v", vars)
	}
	if vars["source_name"] != "a" || vars["source_ext"] != "mkv" {
		t.Errorf("source attributes wrong: %v", vars)
	}
	if vars["mtime_ns"] != "42" || vars["size"] != "7" {
		t.Errorf("stat attributes wrong: %v", vars)
	}
}

func TestVarsCapturesFillUnsetFields(t *testing.T) {
	match := &Match{
		Sport:     "nhl",
		ShowTitle: "NHL",
		Season:    &metadata.Season{Key: "2025", Number: 2025},
		Episode:   &metadata.Episode{Key: "e1", Title: "Devils vs Flyers", Index: 1},
		Extra:     map[string]string{"air_date": "2025-11-22"},
		source:    SourceFile{Path: "/in/a.mkv"},
	}
	vars := match.Vars()
	if vars["air_date"] != "2025-11-22" {
		t.Errorf("capture must fill unset identity field, got %q", vars["air_date"])
	}
}
