package metadata

import "time"

// ChangeResult describes how one sport's metadata differs from the
// previously known tree. It is the unit of cache invalidation: changed
// seasons evict whole seasons, changed episodes evict individual
// episodes, and InvalidateAll evicts every record owned by the sport.
type ChangeResult struct {
	ChangedSeasons  map[string]struct{}
	ChangedEpisodes map[string]map[string]struct{}
	InvalidateAll   bool
}

// Empty reports whether the change carries no invalidation work.
func (c ChangeResult) Empty() bool {
	return !c.InvalidateAll && len(c.ChangedSeasons) == 0 && len(c.ChangedEpisodes) == 0
}

// Diff compares a previously loaded tree against a freshly loaded one.
// A nil or differently-titled old tree yields InvalidateAll, since no
// per-season attribution is trustworthy across a wholesale change.
// A season counts as changed when it is new, removed, or renamed; within
// an unchanged season, individual episodes count as changed when their
// title, aliases, or air date differ.
func Diff(old, fresh *Show) ChangeResult {
	result := ChangeResult{
		ChangedSeasons:  make(map[string]struct{}),
		ChangedEpisodes: make(map[string]map[string]struct{}),
	}
	if fresh == nil {
		result.InvalidateAll = true
		return result
	}
	if old == nil || old.Title != fresh.Title {
		result.InvalidateAll = true
		return result
	}

	oldSeasons := make(map[string]*Season, len(old.Seasons))
	for i := range old.Seasons {
		oldSeasons[old.Seasons[i].Key] = &old.Seasons[i]
	}

	seen := make(map[string]struct{}, len(fresh.Seasons))
	for i := range fresh.Seasons {
		freshSeason := &fresh.Seasons[i]
		seen[freshSeason.Key] = struct{}{}

		oldSeason, ok := oldSeasons[freshSeason.Key]
		if !ok || oldSeason.Number != freshSeason.Number || oldSeason.Title != freshSeason.Title {
			result.ChangedSeasons[freshSeason.Key] = struct{}{}
			continue
		}
		if changed := diffEpisodes(oldSeason, freshSeason); len(changed) > 0 {
			result.ChangedEpisodes[freshSeason.Key] = changed
		}
	}

	// Seasons that disappeared entirely.
	for key := range oldSeasons {
		if _, ok := seen[key]; !ok {
			result.ChangedSeasons[key] = struct{}{}
		}
	}

	return result
}

func diffEpisodes(old, fresh *Season) map[string]struct{} {
	oldEpisodes := make(map[string]*Episode, len(old.Episodes))
	for i := range old.Episodes {
		oldEpisodes[old.Episodes[i].Key] = &old.Episodes[i]
	}

	changed := make(map[string]struct{})
	seen := make(map[string]struct{}, len(fresh.Episodes))
	for i := range fresh.Episodes {
		episode := &fresh.Episodes[i]
		seen[episode.Key] = struct{}{}
		prev, ok := oldEpisodes[episode.Key]
		if !ok || !episodeEqual(prev, episode) {
			changed[episode.Key] = struct{}{}
		}
	}
	for key := range oldEpisodes {
		if _, ok := seen[key]; !ok {
			changed[key] = struct{}{}
		}
	}
	if len(changed) == 0 {
		return nil
	}
	return changed
}

func episodeEqual(a, b *Episode) bool {
	if a.Title != b.Title || a.Index != b.Index {
		return false
	}
	if !timeEqual(a.Aired, b.Aired) {
		return false
	}
	if len(a.Aliases) != len(b.Aliases) {
		return false
	}
	for i := range a.Aliases {
		if a.Aliases[i] != b.Aliases[i] {
			return false
		}
	}
	return true
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
