// Package testsupport provides shared fixtures for matchday tests:
// temp-dir configs, source file helpers, and a small metadata tree.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"matchday/internal/config"
	"matchday/internal/metadata"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "incoming")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDB = filepath.Join(base, "cache", "processed.db")
	return &cfg
}

// WriteSource creates a small media file and returns its path with the
// stat fingerprint callers record in cache entries.
func WriteSource(t testing.TB, dir, name string) (path string, mtimeNS, size int64) {
	t.Helper()

	path = filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("matchday test payload"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return path, info.ModTime().UnixNano(), info.Size()
}

// HockeyShow returns a one-season NHL tree with two aliased fixtures.
func HockeyShow() *metadata.Show {
	aired1 := time.Date(2025, 11, 22, 0, 0, 0, 0, time.UTC)
	aired2 := time.Date(2025, 11, 23, 0, 0, 0, 0, time.UTC)
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
						Aired:   &aired1,
						Index:   1,
					},
					{
						Key:     "20251123-bos-nyr",
						Title:   "Boston Bruins vs New York Rangers",
						Aliases: []string{"BOS vs NYR"},
						Aired:   &aired2,
						Index:   2,
					},
				},
			},
		},
	}
}
