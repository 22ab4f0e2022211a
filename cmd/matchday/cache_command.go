package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"matchday/internal/filecache"
	"matchday/internal/logging"
	"matchday/internal/metadata"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the processed-file cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheInvalidateCommand(ctx))

	return cacheCmd
}

func (c *commandContext) withStore(fn func(store *filecache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := filecache.OpenStore(cfg.Paths.CacheDB)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer store.Close()

	return fn(store)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached processed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *filecache.Store) error {
				records, err := store.Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("load cache: %w", err)
				}

				paths := make([]string, 0, len(records))
				for path := range records {
					paths = append(paths, path)
				}
				sort.Strings(paths)

				if jsonOutput {
					docs := make([]cacheRecordDoc, 0, len(paths))
					for _, path := range paths {
						docs = append(docs, newCacheRecordDoc(path, records[path]))
					}
					return writeJSON(cmd, docs)
				}

				rows := make([][]string, 0, len(paths))
				for _, path := range paths {
					rec := records[path]
					rows = append(rows, []string{
						path,
						rec.SportID,
						rec.SeasonKey,
						rec.EpisodeKey,
						strconv.FormatInt(rec.Size, 10),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Path", "Sport", "Season", "Episode", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop cache records whose source files no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *filecache.Store) error {
				records, err := store.Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("load cache: %w", err)
				}
				cache := filecache.NewFromRecords(records, logging.NewNop())

				removed := cache.PruneMissingSources()
				if err := cache.Flush(cmd.Context(), store); err != nil {
					return fmt.Errorf("flush cache: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(removed) == 0 {
					fmt.Fprintln(out, "Cache is clean; nothing to prune.")
					return nil
				}
				for _, path := range removed {
					fmt.Fprintf(out, "pruned %s\n", path)
				}
				fmt.Fprintf(out, "Removed %d record(s).\n", len(removed))
				return nil
			})
		},
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize cache contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *filecache.Store) error {
				records, err := store.Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("load cache: %w", err)
				}

				perSport := map[string]int{}
				legacy := 0
				for _, rec := range records {
					if !rec.HasOwnership() {
						legacy++
						continue
					}
					perSport[rec.SportID]++
				}

				if jsonOutput {
					return writeJSON(cmd, map[string]any{
						"total":     len(records),
						"legacy":    legacy,
						"per_sport": perSport,
						"path":      store.Path(),
					})
				}

				rows := [][]string{
					{"Total records", strconv.Itoa(len(records))},
					{"Legacy records", strconv.Itoa(legacy)},
				}
				sports := make([]string, 0, len(perSport))
				for sport := range perSport {
					sports = append(sports, sport)
				}
				sort.Strings(sports)
				for _, sport := range sports {
					rows = append(rows, []string{"Sport " + sport, strconv.Itoa(perSport[sport])})
				}
				rows = append(rows, []string{"Database", store.Path()})
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Stat", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newCacheInvalidateCommand(ctx *commandContext) *cobra.Command {
	var previousPath string

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Evict records affected by a metadata snapshot change",
		Long: "Invalidate diffs a previous metadata snapshot against the current one\n" +
			"and evicts every cache record whose season or episode changed, so the\n" +
			"next run re-resolves those files against the fresh metadata.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			previous, err := metadata.LoadShows(previousPath)
			if err != nil {
				return fmt.Errorf("load previous snapshot: %w", err)
			}
			current, err := metadata.LoadShows(cfg.Paths.MetadataFile)
			if err != nil {
				return fmt.Errorf("load current snapshot: %w", err)
			}

			changes := map[string]metadata.ChangeResult{}
			for sport, fresh := range current {
				change := metadata.Diff(previous[sport], fresh)
				if !change.Empty() {
					changes[sport] = change
				}
			}
			for sport := range previous {
				if _, ok := current[sport]; !ok {
					changes[sport] = metadata.ChangeResult{InvalidateAll: true}
				}
			}

			out := cmd.OutOrStdout()
			if len(changes) == 0 {
				fmt.Fprintln(out, "Snapshots are identical; nothing to invalidate.")
				return nil
			}

			return ctx.withStore(func(store *filecache.Store) error {
				records, err := store.Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("load cache: %w", err)
				}
				cache := filecache.NewFromRecords(records, logging.NewNop())

				removed := cache.RemoveByMetadataChanges(changes)
				if err := cache.Flush(cmd.Context(), store); err != nil {
					return fmt.Errorf("flush cache: %w", err)
				}

				for _, path := range removed {
					fmt.Fprintf(out, "evicted %s\n", path)
				}
				fmt.Fprintf(out, "Evicted %d record(s) across %d changed sport(s).\n", len(removed), len(changes))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&previousPath, "previous", "", "Path to the metadata snapshot used by earlier runs")
	_ = cmd.MarkFlagRequired("previous")
	return cmd
}

type cacheRecordDoc struct {
	Path        string `json:"path"`
	Sport       string `json:"sport,omitempty"`
	SeasonKey   string `json:"season_key,omitempty"`
	EpisodeKey  string `json:"episode_key,omitempty"`
	Destination string `json:"destination,omitempty"`
	MTimeNS     int64  `json:"mtime_ns"`
	Size        int64  `json:"size"`
}

func newCacheRecordDoc(path string, rec filecache.Record) cacheRecordDoc {
	return cacheRecordDoc{
		Path:        path,
		Sport:       rec.SportID,
		SeasonKey:   rec.SeasonKey,
		EpisodeKey:  rec.EpisodeKey,
		Destination: rec.Destination,
		MTimeNS:     rec.MTimeNS,
		Size:        rec.Size,
	}
}
