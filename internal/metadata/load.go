package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSON document shapes for the on-disk metadata snapshot. The tree types
// themselves stay serialization-free; these mirror them.
type showDoc struct {
	SportID string      `json:"sport_id"`
	Title   string      `json:"title"`
	Seasons []seasonDoc `json:"seasons"`
}

type seasonDoc struct {
	Key      string       `json:"key"`
	Number   int          `json:"number"`
	Title    string       `json:"title"`
	Episodes []episodeDoc `json:"episodes"`
}

type episodeDoc struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Aliases []string `json:"aliases"`
	Aired   string   `json:"aired"`
	Index   int      `json:"index"`
}

type snapshotDoc struct {
	Shows []showDoc `json:"shows"`
}

// LoadShows reads a metadata snapshot file and returns one tree per
// sport. Air dates use the 2006-01-02 layout; an empty aired field means
// the episode has no originally-available date.
func LoadShows(path string) (map[string]*Show, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata snapshot: %w", err)
	}

	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse metadata snapshot: %w", err)
	}

	shows := make(map[string]*Show, len(doc.Shows))
	for _, sd := range doc.Shows {
		show := &Show{SportID: sd.SportID, Title: sd.Title}
		for _, sn := range sd.Seasons {
			season := Season{
				Key:    sn.Key,
				Number: sn.Number,
				Title:  sn.Title,
			}
			for _, ep := range sn.Episodes {
				episode := Episode{
					Key:     ep.Key,
					Title:   ep.Title,
					Aliases: ep.Aliases,
					Index:   ep.Index,
				}
				if ep.Aired != "" {
					aired, err := time.Parse("2006-01-02", ep.Aired)
					if err != nil {
						return nil, fmt.Errorf("episode %s: parse aired %q: %w", ep.Key, ep.Aired, err)
					}
					episode.Aired = &aired
				}
				season.Episodes = append(season.Episodes, episode)
			}
			show.Seasons = append(show.Seasons, season)
		}
		shows[show.SportID] = show
	}
	return shows, nil
}
