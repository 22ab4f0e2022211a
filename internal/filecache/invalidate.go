package filecache

import (
	"sort"

	"matchday/internal/logging"
	"matchday/internal/metadata"
)

// RemoveByMetadataChanges evicts every record whose resolution can no
// longer be trusted after a metadata refresh and returns the removed
// paths, sorted. A record is evicted when its sport invalidated
// everything, its season is in the sport's changed set, or its exact
// episode changed. Legacy records without ownership are evicted by any
// non-empty change map regardless of which sport changed: without
// attribution, reprocessing is safer than serving a possibly stale
// mapping. The operation is idempotent.
func (c *Cache) RemoveByMetadataChanges(changes map[string]metadata.ChangeResult) []string {
	if len(changes) == 0 {
		return nil
	}

	var removed []string
	for path, rec := range c.records {
		if recordInvalidated(rec, changes) {
			delete(c.records, path)
			removed = append(removed, path)
		}
	}
	if len(removed) > 0 {
		c.dirty = true
		sort.Strings(removed)
		c.logger.Info("invalidated records after metadata change",
			logging.Int("removed", len(removed)),
			logging.Int("sports_changed", len(changes)),
		)
	}
	return removed
}

func recordInvalidated(rec Record, changes map[string]metadata.ChangeResult) bool {
	if !rec.HasOwnership() {
		return true
	}
	change, ok := changes[rec.SportID]
	if !ok {
		return false
	}
	if change.InvalidateAll {
		return true
	}
	if _, ok := change.ChangedSeasons[rec.SeasonKey]; ok {
		return true
	}
	if episodes, ok := change.ChangedEpisodes[rec.SeasonKey]; ok {
		if _, ok := episodes[rec.EpisodeKey]; ok {
			return true
		}
	}
	return false
}
