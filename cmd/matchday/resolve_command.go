package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"matchday/internal/logging"
	"matchday/internal/resolve"
	"matchday/internal/rules"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showAttempts bool

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Resolve one filename to a season and episode",
		Long: "Resolve runs the full resolution chain for a single file and prints\n" +
			"the outcome without touching the processed-file cache. Useful for\n" +
			"testing pattern rules and alias tables before a run.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolvers, err := ctx.buildResolvers(logging.NewNop())
			if err != nil {
				return err
			}

			src := resolve.SourceFile{Path: args[0]}
			if info, err := os.Stat(args[0]); err == nil {
				src.MTimeNS = info.ModTime().UnixNano()
				src.Size = info.Size()
			}

			var match *resolve.Match
			var lastErr error
			for _, r := range resolvers {
				m, err := r.Resolve(cmd.Context(), src)
				if err == nil {
					match = m
					break
				}
				lastErr = err
			}

			if match == nil {
				if lastErr == nil {
					return fmt.Errorf("no sports configured")
				}
				printResolutionFailure(cmd, lastErr)
				return lastErr
			}

			if jsonOutput {
				return writeJSON(cmd, resolveDoc(match))
			}
			printMatch(cmd, match, showAttempts)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&showAttempts, "attempts", false, "Show every pattern rule attempted")
	return cmd
}

func printMatch(cmd *cobra.Command, match *resolve.Match, showAttempts bool) {
	out := cmd.OutOrStdout()

	rows := [][]string{
		{"Sport", match.Sport},
		{"Show", match.ShowTitle},
		{"Season", match.Season.Key},
		{"Episode", match.Episode.Key},
		{"Title", match.Episode.Title},
	}
	if match.RuleName != "" {
		rows = append(rows, []string{"Rule", match.RuleName})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))

	vars := match.Vars()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	varRows := make([][]string, 0, len(keys))
	for _, k := range keys {
		varRows = append(varRows, []string{k, vars[k]})
	}
	fmt.Fprintln(out, renderTable([]string{"Variable", "Value"}, varRows, nil))

	if showAttempts && len(match.Attempts) > 0 {
		fmt.Fprintln(out, renderTable(attemptHeaders, attemptRows(match.Attempts), attemptAligns))
	}
}

var (
	attemptHeaders = []string{"Rule", "Priority", "Matched", "Reason"}
	attemptAligns  = []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft}
)

func attemptRows(attempts []rules.Attempt) [][]string {
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, []string{a.Rule, strconv.Itoa(a.Priority), yesNo(a.Matched), a.Reason})
	}
	return rows
}

func printResolutionFailure(cmd *cobra.Command, err error) {
	out := cmd.OutOrStdout()

	var resErr *resolve.ResolutionError
	if !errors.As(err, &resErr) {
		return
	}
	if len(resErr.Attempts) > 0 {
		fmt.Fprintln(out, renderTable(attemptHeaders, attemptRows(resErr.Attempts), attemptAligns))
	}
	if resErr.Parsed != nil && !resErr.Parsed.Empty() {
		rows := [][]string{}
		if len(resErr.Parsed.Teams) > 0 {
			rows = append(rows, []string{"Teams", fmt.Sprintf("%v", resErr.Parsed.Teams)})
		}
		if resErr.Parsed.Date != nil {
			rows = append(rows, []string{"Date", resErr.Parsed.Date.Format("2006-01-02")})
		}
		if resErr.Parsed.Round != nil {
			rows = append(rows, []string{"Round", strconv.Itoa(*resErr.Parsed.Round)})
		}
		for tag, value := range resErr.Parsed.Tags {
			rows = append(rows, []string{tag, value})
		}
		if len(rows) > 0 {
			fmt.Fprintln(out, renderTable([]string{"Parsed", "Value"}, rows, nil))
		}
	}

	var ambErr *resolve.AmbiguousError
	if errors.As(err, &ambErr) {
		rows := make([][]string, 0, len(ambErr.Candidates))
		for _, c := range ambErr.Candidates {
			rows = append(rows, []string{c.Season.Key, c.Episode.Key, c.Label()})
		}
		fmt.Fprintln(out, renderTable([]string{"Season", "Episode", "Title"}, rows, nil))
	}
}

type resolveJSONDoc struct {
	Sport    string            `json:"sport"`
	Show     string            `json:"show"`
	Season   string            `json:"season_key"`
	Episode  string            `json:"episode_key"`
	Title    string            `json:"episode_title"`
	Rule     string            `json:"rule,omitempty"`
	Vars     map[string]string `json:"vars"`
	Attempts []rules.Attempt   `json:"attempts,omitempty"`
}

func resolveDoc(match *resolve.Match) resolveJSONDoc {
	return resolveJSONDoc{
		Sport:    match.Sport,
		Show:     match.ShowTitle,
		Season:   match.Season.Key,
		Episode:  match.Episode.Key,
		Title:    match.Episode.Title,
		Rule:     match.RuleName,
		Vars:     match.Vars(),
		Attempts: match.Attempts,
	}
}
