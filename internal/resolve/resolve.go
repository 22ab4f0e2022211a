package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"matchday/internal/aliases"
	"matchday/internal/logging"
	"matchday/internal/metadata"
	"matchday/internal/normalize"
	"matchday/internal/parsename"
	"matchday/internal/rules"
)

// Resolver matches source filenames against one sport's metadata tree.
// Rule sets, alias maps, and the tree are immutable; a resolver is safe
// for concurrent use.
type Resolver struct {
	show    *metadata.Show
	set     *rules.Set
	aliases *aliases.Map
	logger  *slog.Logger
}

// New constructs a resolver for one sport. The rule set and alias map
// may be nil: a sport without rules goes straight to structured parsing,
// and without aliases team tokens are matched verbatim.
func New(show *metadata.Show, set *rules.Set, aliasMap *aliases.Map, logger *slog.Logger) *Resolver {
	return &Resolver{
		show:    show,
		set:     set,
		aliases: aliasMap,
		logger:  logging.NewComponentLogger(logger, "resolve"),
	}
}

// Sport returns the sport identifier of the tree this resolver serves.
func (r *Resolver) Sport() string {
	if r.show == nil {
		return ""
	}
	return r.show.SportID
}

// Capture group names the resolver interprets rather than passing
// through as plain variables.
const (
	captureSeason     = "season"
	captureSeasonKey  = "season_key"
	captureEpisode    = "episode"
	captureEpisodeKey = "episode_key"
	captureRound      = "round"
	captureWeek       = "week"
	captureDate       = "date"
	captureTeam1      = "team1"
	captureTeam2      = "team2"
	captureHome       = "home"
	captureAway       = "away"
)

// Resolve maps one source file to exactly one episode, or fails with a
// diagnosed ResolutionError. No retries happen here; callers decide
// whether to try again on a later run.
func (r *Resolver) Resolve(ctx context.Context, src SourceFile) (*Match, error) {
	logger := logging.WithContext(ctx, r.logger)
	filename := filepath.Base(src.Path)

	diag := &rules.Diagnostics{}
	var parsed *parsename.Structured
	var ruleName string
	var extra map[string]string
	var seasonHint *metadata.Season

	ruleMatch, err := r.set.Match(filename, diag)
	if err == nil {
		ruleName = ruleMatch.Rule.Name
		extra = ruleMatch.Captures

		season, episode, ok := r.resolveFromCaptures(ruleMatch.Captures)
		if ok {
			logger.Debug("resolved by pattern rule",
				logging.String(logging.FieldDecisionType, "pattern_identity"),
				logging.String("rule", ruleName),
				logging.String(logging.FieldEpisodeKey, episode.Key),
			)
			return r.buildMatch(src, season, episode, ruleName, extra, diag.Attempts), nil
		}
		// Captures resolved no identity directly; treat them as hints.
		seasonHint = season
		parsed = structuredFromCaptures(ruleMatch.Captures)
	} else {
		parsed, err = parsename.Parse(filename)
		if err != nil {
			logger.Debug("resolution failed",
				logging.String(logging.FieldDecisionType, "structured_parse"),
				logging.Error(err),
			)
			return nil, &ResolutionError{
				Path:     src.Path,
				Reason:   fmt.Errorf("%w: %w", ErrNoMatch, err),
				Attempts: diag.Attempts,
			}
		}
	}

	seasons := r.candidateSeasons(parsed, seasonHint)
	candidates := r.candidateEpisodes(seasons, parsed)

	switch len(candidates) {
	case 0:
		logger.Debug("resolution failed",
			logging.String(logging.FieldDecisionType, "candidate_selection"),
			logging.Int("candidate_seasons", len(seasons)),
		)
		return nil, &ResolutionError{
			Path:     src.Path,
			Reason:   ErrNoMatch,
			Attempts: diag.Attempts,
			Parsed:   parsed,
		}
	case 1:
		winner := candidates[0]
		return r.buildMatch(src, winner.Season, winner.Episode, ruleName, extra, diag.Attempts), nil
	}

	winner, ok := pickMostSpecific(candidates)
	if !ok {
		logger.Debug("resolution failed",
			logging.String(logging.FieldDecisionType, "specificity_tiebreak"),
			logging.Int("tied_candidates", len(candidates)),
		)
		return nil, &ResolutionError{
			Path:     src.Path,
			Reason:   &AmbiguousError{Candidates: candidates},
			Attempts: diag.Attempts,
			Parsed:   parsed,
		}
	}
	return r.buildMatch(src, winner.Season, winner.Episode, ruleName, extra, diag.Attempts), nil
}

// pickMostSpecific returns the candidate with the strictly highest label
// specificity. A tie at the top leaves the match ambiguous.
func pickMostSpecific(candidates []Candidate) (Candidate, bool) {
	best := candidates[0]
	bestScore := Specificity(best.Label())
	tied := false
	for _, candidate := range candidates[1:] {
		score := Specificity(candidate.Label())
		switch {
		case score > bestScore:
			best, bestScore, tied = candidate, score, false
		case score == bestScore:
			tied = true
		}
	}
	return best, !tied
}

// resolveFromCaptures maps identity-declaring captures straight onto the
// tree. The second return is non-nil when only the season resolved, so
// the caller can scope heuristic episode selection to it.
func (r *Resolver) resolveFromCaptures(captures map[string]string) (*metadata.Season, *metadata.Episode, bool) {
	season := r.seasonFromCapture(captures)
	if season == nil {
		return nil, nil, false
	}

	value, ok := captures[captureEpisodeKey]
	if !ok {
		value, ok = captures[captureEpisode]
	}
	if !ok {
		return season, nil, false
	}
	if episode, found := season.EpisodeByKey(value); found {
		return season, episode, true
	}
	if index, err := strconv.Atoi(value); err == nil {
		for i := range season.Episodes {
			if season.Episodes[i].Index == index {
				return season, &season.Episodes[i], true
			}
		}
	}
	return season, nil, false
}

func (r *Resolver) seasonFromCapture(captures map[string]string) *metadata.Season {
	if key, ok := captures[captureSeasonKey]; ok {
		if season, found := r.show.SeasonByKey(key); found {
			return season
		}
	}
	value, ok := captures[captureSeason]
	if !ok {
		return nil
	}
	if number, err := strconv.Atoi(value); err == nil {
		if season, found := r.show.SeasonByNumber(number); found {
			return season
		}
	}
	if season, found := r.show.SeasonByKey(value); found {
		return season
	}
	return nil
}

// structuredFromCaptures reinterprets non-identity captures as the same
// hint record the fallback parser produces.
func structuredFromCaptures(captures map[string]string) *parsename.Structured {
	hints := &parsename.Structured{}
	if value, ok := captures[captureDate]; ok {
		for _, layout := range []string{"2006-01-02", "2006.01.02", "20060102"} {
			if date, err := time.Parse(layout, value); err == nil {
				hints.Date = &date
				break
			}
		}
	}
	roundValue, ok := captures[captureRound]
	if !ok {
		roundValue, ok = captures[captureWeek]
	}
	if ok {
		if round, err := strconv.Atoi(roundValue); err == nil {
			hints.Round = &round
		}
	}
	if home, ok := captures[captureHome]; ok {
		hints.Teams = append(hints.Teams, home)
	}
	if away, ok := captures[captureAway]; ok {
		hints.Teams = append(hints.Teams, away)
	}
	if len(hints.Teams) == 0 {
		if t1, ok := captures[captureTeam1]; ok {
			hints.Teams = append(hints.Teams, t1)
		}
		if t2, ok := captures[captureTeam2]; ok {
			hints.Teams = append(hints.Teams, t2)
		}
	}
	return hints
}

// candidateSeasons selects seasons by explicit round number, then by air
// date containment, then by team containment across all seasons.
func (r *Resolver) candidateSeasons(parsed *parsename.Structured, hint *metadata.Season) []*metadata.Season {
	if hint != nil {
		return []*metadata.Season{hint}
	}
	if r.show == nil {
		return nil
	}

	if parsed.Round != nil {
		var out []*metadata.Season
		for i := range r.show.Seasons {
			if r.show.Seasons[i].Number == *parsed.Round {
				out = append(out, &r.show.Seasons[i])
			}
		}
		return out
	}

	if parsed.Date != nil {
		var out []*metadata.Season
		for i := range r.show.Seasons {
			season := &r.show.Seasons[i]
			for j := range season.Episodes {
				if season.Episodes[j].AiredOn(*parsed.Date) {
					out = append(out, season)
					break
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	if parsed.HasTeams() {
		sides := r.teamSides(parsed.Teams)
		var out []*metadata.Season
		for i := range r.show.Seasons {
			season := &r.show.Seasons[i]
			for j := range season.Episodes {
				if episodeMatchesTeams(&season.Episodes[j], sides) {
					out = append(out, season)
					break
				}
			}
		}
		return out
	}

	return nil
}

// candidateEpisodes applies the episode-level filters within the chosen
// seasons: alias-resolved team containment in either order, or an exact
// air-date match. With neither signal available (round-only input), every
// episode of the candidate seasons stays in play and the tie-break or a
// single-episode season decides.
func (r *Resolver) candidateEpisodes(seasons []*metadata.Season, parsed *parsename.Structured) []Candidate {
	var sides [][]string
	if parsed.HasTeams() {
		sides = r.teamSides(parsed.Teams)
	}

	var out []Candidate
	for _, season := range seasons {
		for i := range season.Episodes {
			episode := &season.Episodes[i]
			switch {
			case sides != nil && episodeMatchesTeams(episode, sides):
				out = append(out, Candidate{Season: season, Episode: episode})
			case parsed.Date != nil && episode.AiredOn(*parsed.Date):
				out = append(out, Candidate{Season: season, Episode: episode})
			case sides == nil && parsed.Date == nil:
				out = append(out, Candidate{Season: season, Episode: episode})
			}
		}
	}
	return out
}

// teamSides resolves each raw team segment into the set of normalized
// tokens worth matching: the alias-resolved canonical name plus the raw
// token itself. Leading tokens (league prefixes, stray separators) are
// trimmed away until an alias lookup succeeds.
func (r *Resolver) teamSides(teams []string) [][]string {
	sides := make([][]string, 0, len(teams))
	for _, side := range teams {
		fields := strings.Fields(side)
		var tokens []string
		for i := range fields {
			candidate := strings.Join(fields[i:], " ")
			if canonical, ok := r.aliases.Lookup(candidate); ok {
				tokens = appendToken(tokens, normalize.Token(canonical))
				tokens = appendToken(tokens, normalize.Token(candidate))
				break
			}
		}
		if len(tokens) == 0 {
			tokens = appendToken(tokens, normalize.Token(side))
			if len(fields) > 1 {
				tokens = appendToken(tokens, normalize.Token(fields[len(fields)-1]))
			}
		}
		if len(tokens) > 0 {
			sides = append(sides, tokens)
		}
	}
	return sides
}

func appendToken(tokens []string, token string) []string {
	if token == "" {
		return tokens
	}
	for _, existing := range tokens {
		if existing == token {
			return tokens
		}
	}
	return append(tokens, token)
}

// episodeMatchesTeams reports whether one of the episode's normalized
// title/alias strings contains every side. Substring containment makes
// the check order-agnostic, covering both "home vs away" and the
// away-first '@' convention.
func episodeMatchesTeams(episode *metadata.Episode, sides [][]string) bool {
	if len(sides) == 0 {
		return false
	}
	haystacks := make([]string, 0, 1+len(episode.Aliases))
	haystacks = append(haystacks, normalize.Token(episode.Title))
	for _, alias := range episode.Aliases {
		haystacks = append(haystacks, normalize.Token(alias))
	}

	for _, haystack := range haystacks {
		if haystack == "" {
			continue
		}
		all := true
		for _, side := range sides {
			if !sideInHaystack(side, haystack) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func sideInHaystack(tokens []string, haystack string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

func (r *Resolver) buildMatch(src SourceFile, season *metadata.Season, episode *metadata.Episode, ruleName string, extra map[string]string, attempts []rules.Attempt) *Match {
	return &Match{
		Sport:     r.show.SportID,
		ShowTitle: r.show.Title,
		Season:    season,
		Episode:   episode,
		RuleName:  ruleName,
		Extra:     extra,
		Attempts:  attempts,
		source:    src,
	}
}
