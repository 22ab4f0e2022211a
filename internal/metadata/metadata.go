// Package metadata defines the immutable Show/Season/Episode tree the
// resolver matches filenames against, and the change diff that drives
// processed-cache invalidation after a metadata refresh.
package metadata

import "time"

// Episode is a single broadcast within a season.
type Episode struct {
	Key     string
	Title   string
	Aliases []string
	Aired   *time.Time
	Index   int
}

// Season groups episodes under a round or display number.
type Season struct {
	Key      string
	Number   int
	Title    string
	Episodes []Episode
}

// Show is the root of one sport's metadata tree.
type Show struct {
	SportID string
	Title   string
	Seasons []Season
}

// SeasonByNumber returns the first season whose round/display number matches.
func (s *Show) SeasonByNumber(number int) (*Season, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Seasons {
		if s.Seasons[i].Number == number {
			return &s.Seasons[i], true
		}
	}
	return nil, false
}

// SeasonByKey returns the season with the given key.
func (s *Show) SeasonByKey(key string) (*Season, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Seasons {
		if s.Seasons[i].Key == key {
			return &s.Seasons[i], true
		}
	}
	return nil, false
}

// EpisodeByKey returns the episode with the given key.
func (s *Season) EpisodeByKey(key string) (*Episode, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Episodes {
		if s.Episodes[i].Key == key {
			return &s.Episodes[i], true
		}
	}
	return nil, false
}

// AiredOn reports whether the episode's originally-available date equals
// the given calendar day.
func (e *Episode) AiredOn(day time.Time) bool {
	if e == nil || e.Aired == nil {
		return false
	}
	y1, m1, d1 := e.Aired.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
