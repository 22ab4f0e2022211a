package filecache

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"matchday/internal/logging"
)

// Record is one processed-file entry: the source fingerprint at the time
// of processing, the destination produced, and optional ownership
// attribution used for scoped invalidation.
type Record struct {
	MTimeNS     int64
	Size        int64
	Destination string
	SportID     string
	SeasonKey   string
	EpisodeKey  string
}

// HasOwnership reports whether the record carries sport attribution.
// Records without it are legacy entries and are invalidated
// conservatively.
func (r Record) HasOwnership() bool {
	return r.SportID != ""
}

// Cache is the in-memory processed-file map. Not safe for concurrent
// mutation; all writes must be funneled through one owner.
type Cache struct {
	logger  *slog.Logger
	records map[string]Record
	dirty   bool
}

// New returns an empty cache.
func New(logger *slog.Logger) *Cache {
	return &Cache{
		logger:  logging.NewComponentLogger(logger, "filecache"),
		records: make(map[string]Record),
	}
}

// NewFromRecords builds a cache over records loaded from persistence.
// The cache starts clean.
func NewFromRecords(records map[string]Record, logger *slog.Logger) *Cache {
	c := New(logger)
	for path, rec := range records {
		c.records[path] = rec
	}
	return c
}

// IsProcessed reports whether path was already processed and is
// unchanged since. A record whose source file disappeared is pruned
// lazily and reported unprocessed, so the cache never claims "processed"
// for a file it cannot verify. A stale fingerprint also reports
// unprocessed but keeps the record in place: the next successful
// processing overwrites it, and a failed one loses nothing.
func (c *Cache) IsProcessed(path string) bool {
	rec, ok := c.records[path]
	if !ok {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			delete(c.records, path)
			c.dirty = true
			c.logger.Debug("pruned record for missing source", logging.String(logging.FieldSourceFile, path))
		}
		return false
	}

	if info.ModTime().UnixNano() != rec.MTimeNS || info.Size() != rec.Size {
		return false
	}
	return true
}

// MarkProcessed inserts or refreshes the record for path.
func (c *Cache) MarkProcessed(path string, rec Record) {
	c.records[path] = rec
	c.dirty = true
}

// Remove deletes the record for path, reporting whether one existed.
func (c *Cache) Remove(path string) bool {
	if _, ok := c.records[path]; !ok {
		return false
	}
	delete(c.records, path)
	c.dirty = true
	return true
}

// Lookup returns the record for path without touching the filesystem.
func (c *Cache) Lookup(path string) (Record, bool) {
	rec, ok := c.records[path]
	return rec, ok
}

// Len reports the number of records held.
func (c *Cache) Len() int {
	return len(c.records)
}

// Dirty reports whether the cache holds unpersisted mutation.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// Records returns a copy of the record map for persistence or display.
func (c *Cache) Records() map[string]Record {
	out := make(map[string]Record, len(c.records))
	for path, rec := range c.records {
		out[path] = rec
	}
	return out
}

// PruneMissingSources removes every record whose source file no longer
// exists and returns the removed paths, sorted. Batch form of the
// missing-file branch of IsProcessed, for periodic cache hygiene.
func (c *Cache) PruneMissingSources() []string {
	var removed []string
	for path := range c.records {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			delete(c.records, path)
			removed = append(removed, path)
		}
	}
	if len(removed) > 0 {
		c.dirty = true
		sort.Strings(removed)
		c.logger.Info("pruned records for missing sources", logging.Int("removed", len(removed)))
	}
	return removed
}
