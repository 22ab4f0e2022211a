package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"matchday/internal/filecache"
	"matchday/internal/logging"
	"matchday/internal/resolve"
	"matchday/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve and catalog new files in the source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Paths.SourceDir) == "" {
				return errors.New("paths.source_dir is not configured")
			}

			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			resolvers, err := ctx.buildResolvers(logger)
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "matchday.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !ok {
				return errors.New("another matchday run is already in progress")
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release run lock", logging.Error(err))
				}
			}()

			store, err := filecache.OpenStore(cfg.Paths.CacheDB)
			if err != nil {
				return fmt.Errorf("open cache store: %w", err)
			}
			defer store.Close()

			var cache *filecache.Cache
			records, err := store.Load(cmd.Context())
			if err != nil {
				logger.Warn("cache load failed, starting clean", logging.Error(err))
				cache = filecache.New(logger)
			} else {
				cache = filecache.NewFromRecords(records, logger)
			}

			run, err := runner.New(resolvers, cache, destinationBuilder(cfg.Paths.LibraryDir), logger)
			if err != nil {
				return err
			}

			report, err := run.Run(cmd.Context(), cfg.Paths.SourceDir)
			if err != nil {
				return err
			}

			if err := cache.Flush(cmd.Context(), store); err != nil {
				return fmt.Errorf("flush cache: %w", err)
			}

			if jsonOutput {
				return writeJSON(cmd, reportDoc(report))
			}
			printReport(cmd, report)
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d file(s) failed to resolve", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

// destinationBuilder maps a resolved match onto its library path:
// <library>/<show>/<season>/<episode title or key>.<ext>.
func destinationBuilder(libraryDir string) runner.DestinationFunc {
	return func(match *resolve.Match) (string, error) {
		if strings.TrimSpace(libraryDir) == "" {
			return "", errors.New("paths.library_dir is not configured")
		}
		vars := match.Vars()

		seasonDir := vars[resolve.VarSeasonTitle]
		if strings.TrimSpace(seasonDir) == "" {
			seasonDir = vars[resolve.VarSeasonKey]
		}
		base := vars[resolve.VarEpisodeTitle]
		if strings.TrimSpace(base) == "" {
			base = vars[resolve.VarEpisodeKey]
		}
		filename := sanitizeComponent(base)
		// VarSourceExt carries the extension without its dot.
		if ext := vars[resolve.VarSourceExt]; ext != "" {
			filename += "." + ext
		}
		return filepath.Join(
			libraryDir,
			sanitizeComponent(vars[resolve.VarShow]),
			sanitizeComponent(seasonDir),
			filename,
		), nil
	}
}

// sanitizeComponent keeps titles usable as single path elements.
func sanitizeComponent(value string) string {
	value = strings.TrimSpace(value)
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", " -")
	return replacer.Replace(value)
}

func printReport(cmd *cobra.Command, report *runner.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Processed", "Skipped", "Failed"},
		[][]string{{
			report.RunID,
			strconv.Itoa(len(report.Processed)),
			strconv.Itoa(len(report.Skipped)),
			strconv.Itoa(len(report.Failed)),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))

	if len(report.Processed) > 0 {
		rows := make([][]string, 0, len(report.Processed))
		for _, outcome := range report.Processed {
			rows = append(rows, []string{
				filepath.Base(outcome.Path),
				outcome.Sport,
				outcome.SeasonKey,
				outcome.EpisodeKey,
				outcome.Destination,
			})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Sport", "Season", "Episode", "Destination"}, rows, nil))
	}

	if len(report.Failed) > 0 {
		rows := make([][]string, 0, len(report.Failed))
		for _, outcome := range report.Failed {
			rows = append(rows, []string{filepath.Base(outcome.Path), outcome.Err.Error()})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Error"}, rows, nil))
	}
}

type outcomeDoc struct {
	Path        string `json:"path"`
	Destination string `json:"destination,omitempty"`
	Sport       string `json:"sport,omitempty"`
	SeasonKey   string `json:"season_key,omitempty"`
	EpisodeKey  string `json:"episode_key,omitempty"`
	Error       string `json:"error,omitempty"`
}

type runReportDoc struct {
	RunID     string       `json:"run_id"`
	Processed []outcomeDoc `json:"processed"`
	Skipped   []string     `json:"skipped"`
	Failed    []outcomeDoc `json:"failed"`
}

func reportDoc(report *runner.Report) runReportDoc {
	doc := runReportDoc{RunID: report.RunID, Skipped: report.Skipped}
	for _, outcome := range report.Processed {
		doc.Processed = append(doc.Processed, outcomeDoc{
			Path:        outcome.Path,
			Destination: outcome.Destination,
			Sport:       outcome.Sport,
			SeasonKey:   outcome.SeasonKey,
			EpisodeKey:  outcome.EpisodeKey,
		})
	}
	for _, outcome := range report.Failed {
		doc.Failed = append(doc.Failed, outcomeDoc{Path: outcome.Path, Error: outcome.Err.Error()})
	}
	return doc
}
