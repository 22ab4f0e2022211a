package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"matchday/internal/aliases"
	"matchday/internal/filecache"
	"matchday/internal/resolve"
	"matchday/internal/rules"
	"matchday/internal/testsupport"
)

func testResolver(t *testing.T) *resolve.Resolver {
	t.Helper()
	aliasMap := aliases.Build([]aliases.Entry{
		{Canonical: "New Jersey Devils", Aliases: []string{"NJD"}},
		{Canonical: "Philadelphia Flyers", Aliases: []string{"PHI"}},
		{Canonical: "Boston Bruins", Aliases: []string{"BOS"}},
		{Canonical: "New York Rangers", Aliases: []string{"NYR"}},
	})
	set, err := rules.Compile("nhl", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return resolve.New(testsupport.HockeyShow(), set, aliasMap, nil)
}

func staticDestination(match *resolve.Match) (string, error) {
	return filepath.Join("/library", match.Sport, match.Episode.Key+".mkv"), nil
}

func TestRunProcessesAndRecords(t *testing.T) {
	dir := t.TempDir()
	sourcePath, _, _ := testsupport.WriteSource(t, dir, "NHL-2025-11-22_NJD@PHI.mkv")
	// Every parser-recognized container must be discovered too.
	testsupport.WriteSource(t, dir, "NHL-2025-11-23_BOS@NYR.wmv")
	// A non-media file must be ignored by discovery.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	cache := filecache.New(nil)
	r, err := New([]*resolve.Resolver{testResolver(t)}, cache, staticDestination, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Error("run must carry a correlation ID")
	}
	if len(report.Processed) != 2 || len(report.Skipped) != 0 || len(report.Failed) != 0 {
		t.Fatalf("report = %+v", report)
	}
	// Discovery sorts paths, so the .mkv fixture comes first.
	outcome := report.Processed[0]
	if outcome.Sport != "nhl" || outcome.EpisodeKey != "20251122-njd-phi" {
		t.Errorf("outcome = %+v", outcome)
	}
	if report.Processed[1].EpisodeKey != "20251123-bos-nyr" {
		t.Errorf("wmv outcome = %+v", report.Processed[1])
	}

	rec, ok := cache.Lookup(sourcePath)
	if !ok {
		t.Fatal("cache must hold the new record")
	}
	if !rec.HasOwnership() || rec.SeasonKey != "2025" {
		t.Errorf("record ownership = %+v", rec)
	}
	if !cache.Dirty() {
		t.Error("run with new records must dirty the cache")
	}
}

func TestRunSkipsAlreadyProcessed(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteSource(t, dir, "NHL-2025-11-22_NJD@PHI.mkv")

	cache := filecache.New(nil)
	r, err := New([]*resolve.Resolver{testResolver(t)}, cache, staticDestination, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := r.Run(context.Background(), dir); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	report, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(report.Skipped) != 1 || len(report.Processed) != 0 {
		t.Fatalf("second run report = %+v", report)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteSource(t, dir, "garbage.mkv")
	testsupport.WriteSource(t, dir, "NHL-2025-11-22_NJD@PHI.mkv")

	cache := filecache.New(nil)
	r, err := New([]*resolve.Resolver{testResolver(t)}, cache, staticDestination, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Failed) != 1 || len(report.Processed) != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Failed[0].Err == nil {
		t.Error("failed outcome must carry its error")
	}
}
