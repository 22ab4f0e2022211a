package resolve

import (
	"path/filepath"
	"strconv"
	"strings"

	"matchday/internal/metadata"
	"matchday/internal/rules"
)

// SourceFile is the stat view of one candidate media file.
type SourceFile struct {
	Path    string
	MTimeNS int64
	Size    int64
}

// Match is a successful resolution of a source file to one episode.
type Match struct {
	Sport     string
	ShowTitle string
	Season    *metadata.Season
	Episode   *metadata.Episode
	// RuleName is set when a pattern rule produced or seeded the match.
	RuleName string
	// Extra holds capture-group values that are not identity fields.
	// They become additional template variables.
	Extra map[string]string
	// Attempts records every pattern rule tried, for troubleshooting.
	Attempts []rules.Attempt

	source SourceFile
}

// Identity variable keys. Capture groups may fill these when the
// metadata left them empty but can never overwrite a set value.
const (
	VarSport        = "sport"
	VarShow         = "show"
	VarSeasonKey    = "season_key"
	VarSeasonNumber = "season_number"
	VarSeasonTitle  = "season_title"
	VarEpisodeKey   = "episode_key"
	VarEpisodeTitle = "episode_title"
	VarEpisodeIndex = "episode_index"
	VarAirDate      = "air_date"
	VarSourcePath   = "source_path"
	VarSourceName   = "source_name"
	VarSourceExt    = "source_ext"
	VarMTimeNS      = "mtime_ns"
	VarSize         = "size"
)

// Vars flattens the match into the template variable map consumed by
// destination-path builders. Identity fields and source attributes are
// set first; Extra entries are merged add-only, filling a key only when
// it is absent or was left empty.
func (m *Match) Vars() map[string]string {
	vars := map[string]string{
		VarSport:        m.Sport,
		VarShow:         m.ShowTitle,
		VarSourcePath:   m.source.Path,
		VarSourceName:   strings.TrimSuffix(filepath.Base(m.source.Path), filepath.Ext(m.source.Path)),
		VarSourceExt:    strings.TrimPrefix(filepath.Ext(m.source.Path), "."),
		VarMTimeNS:      strconv.FormatInt(m.source.MTimeNS, 10),
		VarSize:         strconv.FormatInt(m.source.Size, 10),
		VarSeasonKey:    "",
		VarSeasonNumber: "",
		VarSeasonTitle:  "",
		VarEpisodeKey:   "",
		VarEpisodeTitle: "",
		VarEpisodeIndex: "",
		VarAirDate:      "",
	}
	if m.Season != nil {
		vars[VarSeasonKey] = m.Season.Key
		vars[VarSeasonNumber] = strconv.Itoa(m.Season.Number)
		vars[VarSeasonTitle] = m.Season.Title
	}
	if m.Episode != nil {
		vars[VarEpisodeKey] = m.Episode.Key
		vars[VarEpisodeTitle] = m.Episode.Title
		vars[VarEpisodeIndex] = strconv.Itoa(m.Episode.Index)
		if m.Episode.Aired != nil {
			vars[VarAirDate] = m.Episode.Aired.Format("2006-01-02")
		}
	}
	for key, value := range m.Extra {
		if existing, ok := vars[key]; ok && existing != "" {
			continue
		}
		vars[key] = value
	}
	return vars
}
