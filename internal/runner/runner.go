// Package runner drives one incremental processing pass: discover
// source files, skip the ones the cache already knows, resolve the rest,
// and record new mappings. Destination-path construction stays outside;
// the runner calls an injected collaborator for it.
package runner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"matchday/internal/filecache"
	"matchday/internal/logging"
	"matchday/internal/parsename"
	"matchday/internal/resolve"
)

// DestinationFunc builds the destination path for a resolved match.
// Rendering templates and creating links are external concerns.
type DestinationFunc func(match *resolve.Match) (string, error)

// FileOutcome is the per-file result of a run.
type FileOutcome struct {
	Path        string
	Destination string
	Sport       string
	SeasonKey   string
	EpisodeKey  string
	Err         error
}

// Report summarizes one processing run.
type Report struct {
	RunID     string
	Processed []FileOutcome
	Skipped   []string
	Failed    []FileOutcome
}

// Runner coordinates resolvers and the processed-file cache for a run.
// Resolvers are tried in declaration order; the first sport to resolve a
// file claims it.
type Runner struct {
	resolvers []*resolve.Resolver
	cache     *filecache.Cache
	dest      DestinationFunc
	logger    *slog.Logger
}

// New constructs a runner. The destination collaborator is required;
// a run without resolvers only exercises the cache.
func New(resolvers []*resolve.Resolver, cache *filecache.Cache, dest DestinationFunc, logger *slog.Logger) (*Runner, error) {
	if cache == nil {
		return nil, fmt.Errorf("runner requires a cache")
	}
	if dest == nil {
		return nil, fmt.Errorf("runner requires a destination builder")
	}
	return &Runner{
		resolvers: resolvers,
		cache:     cache,
		dest:      dest,
		logger:    logging.NewComponentLogger(logger, "runner"),
	}, nil
}

// Run processes every media file under sourceDir sequentially. Per-file
// failures are reported and skipped, never fatal to the run.
func (r *Runner) Run(ctx context.Context, sourceDir string) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)

	files, err := discoverSources(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("discover sources: %w", err)
	}
	logger.Info("processing run started",
		logging.Int("candidates", len(files)),
		logging.String("source_dir", sourceDir),
	)

	for _, path := range files {
		fileCtx := logging.WithSourceFile(ctx, path)
		fileLogger := logging.WithContext(fileCtx, r.logger)

		if r.cache.IsProcessed(path) {
			report.Skipped = append(report.Skipped, path)
			fileLogger.Debug("skipped already-processed file")
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			report.Failed = append(report.Failed, FileOutcome{Path: path, Err: fmt.Errorf("stat source: %w", err)})
			fileLogger.Warn("source disappeared during run", logging.Error(err))
			continue
		}
		src := resolve.SourceFile{
			Path:    path,
			MTimeNS: info.ModTime().UnixNano(),
			Size:    info.Size(),
		}

		match, err := r.resolveAcrossSports(fileCtx, src)
		if err != nil {
			report.Failed = append(report.Failed, FileOutcome{Path: path, Err: err})
			fileLogger.Warn("resolution failed", logging.Error(err))
			continue
		}

		destination, err := r.dest(match)
		if err != nil {
			report.Failed = append(report.Failed, FileOutcome{Path: path, Err: fmt.Errorf("build destination: %w", err)})
			fileLogger.Warn("destination build failed", logging.Error(err))
			continue
		}

		r.cache.MarkProcessed(path, filecache.Record{
			MTimeNS:     src.MTimeNS,
			Size:        src.Size,
			Destination: destination,
			SportID:     match.Sport,
			SeasonKey:   match.Season.Key,
			EpisodeKey:  match.Episode.Key,
		})
		report.Processed = append(report.Processed, FileOutcome{
			Path:        path,
			Destination: destination,
			Sport:       match.Sport,
			SeasonKey:   match.Season.Key,
			EpisodeKey:  match.Episode.Key,
		})
		fileLogger.Info("file resolved",
			logging.String(logging.FieldSport, match.Sport),
			logging.String(logging.FieldSeasonKey, match.Season.Key),
			logging.String(logging.FieldEpisodeKey, match.Episode.Key),
		)
	}

	logger.Info("processing run finished",
		logging.Int("processed", len(report.Processed)),
		logging.Int("skipped", len(report.Skipped)),
		logging.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// resolveAcrossSports tries each sport's resolver in order and returns
// the first success; the last failure is surfaced when every sport
// declines.
func (r *Runner) resolveAcrossSports(ctx context.Context, src resolve.SourceFile) (*resolve.Match, error) {
	if len(r.resolvers) == 0 {
		return nil, fmt.Errorf("no sports configured: %w", resolve.ErrNoMatch)
	}
	var lastErr error
	for _, resolver := range r.resolvers {
		sportCtx := logging.WithSport(ctx, resolver.Sport())
		match, err := resolver.Resolve(sportCtx, src)
		if err == nil {
			return match, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func discoverSources(sourceDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if parsename.IsMediaPath(entry.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
