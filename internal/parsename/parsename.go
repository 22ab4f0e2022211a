// Package parsename extracts a structured record from free-form broadcast
// filenames when no configured pattern rule matches. Extraction is
// best-effort: any combination of date, round, and team pair is a valid
// partial result, and only a completely empty extraction is an error.
package parsename

import (
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoUsableFields reports that no date, round, or team pair could be
// extracted. An empty record carries no resolution value downstream.
var ErrNoUsableFields = errors.New("no usable fields in filename")

// Structured is the best-effort parse of a broadcast filename. All fields
// are optional; nil pointers and empty slices mean "not present".
type Structured struct {
	// Teams holds the raw text of each side of the team-pair segment,
	// in the order written (0, 1, or 2 entries). Sides may still carry a
	// league prefix; alias resolution trims that downstream.
	Teams []string
	// AwayFirst is true when the pair was delimited by '@', which by
	// convention reads "away at home".
	AwayFirst bool
	Date      *time.Time
	Round     *int
	// RegularSeason is set by an explicit RS marker.
	RegularSeason bool
	// Tags carries trailing quality/codec/provider markers. Captured but
	// never required for resolution.
	Tags map[string]string
}

// HasTeams reports whether a team pair (or single team) was found.
func (s *Structured) HasTeams() bool { return s != nil && len(s.Teams) > 0 }

// Empty reports whether the record carries no resolution-relevant fields.
func (s *Structured) Empty() bool {
	return s == nil || (len(s.Teams) == 0 && s.Date == nil && s.Round == nil && !s.RegularSeason)
}

var mediaExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".avi": {}, ".ts": {}, ".m2ts": {}, ".mov": {}, ".wmv": {},
}

// IsMediaPath reports whether the filename carries a recognized media
// container extension. Discovery and extension stripping share this set.
func IsMediaPath(name string) bool {
	_, ok := mediaExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

var (
	// Date boundaries are explicit non-digit classes rather than \b:
	// underscores are word characters, so \b would miss dates glued to
	// the next token ("2025-11-22_NJD"). The consumed boundary chars are
	// separators and get cut with the match.
	isoDateRe = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)\d{2})[-._ ](\d{1,2})[-._ ](\d{1,2})(?:[^0-9]|$)`)
	numDateRe = regexp.MustCompile(`(?:^|[^0-9])(\d{1,2})[-._ ](\d{1,2})[-._ ]((?:19|20)\d{2})(?:[^0-9]|$)`)

	monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

	dayMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[-._ ]+(` + monthNames + `)[-._ ]+((?:19|20)\d{2})\b`)
	monthDayRe = regexp.MustCompile(`(?i)\b(` + monthNames + `)[-._ ]+(\d{1,2})(?:st|nd|rd|th)?(?:[-._ ]+((?:19|20)\d{2}))?\b`)

	roundRe         = regexp.MustCompile(`(?i)\b(?:round|matchweek|week|rnd|wk)[-._ ]?(\d{1,3})\b`)
	shortRoundRe    = regexp.MustCompile(`\bR(\d{1,2})\b`)
	regularSeasonRe = regexp.MustCompile(`(?i)\bRS\b`)

	resolutionRe = regexp.MustCompile(`(?i)\b(\d{3,4}p|4k|uhd)\b`)
	frameRateRe  = regexp.MustCompile(`(?i)\b(\d{2,3})(?:fps)\b`)
	codecRe      = regexp.MustCompile(`(?i)\b(x264|x265|h[ .]?264|h[ .]?265|hevc|avc|av1|vp9)\b`)
	sourceRe     = regexp.MustCompile(`(?i)\b(web-?dl|webrip|web|hdtv|bluray|blu-ray|sdtv|iptv)\b`)
	providerRe   = regexp.MustCompile(`(?i)\b(espn\+?|espn|tnt|tsn|sn|sky(?:sports)?|f1tv|nbc(?:sn)?|abc|cbs|fox|mlbn|nhln|nfln|dazn|peacock|amazon|viaplay|btsport)\b`)

	versusRe    = regexp.MustCompile(`(?i)(^|[-._ ])(vs\.?|v\.?|versus)([-._ ]|$)`)
	separatorRe = regexp.MustCompile(`[._]+`)
	spacesRe    = regexp.MustCompile(`\s{2,}`)
)

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Parse extracts a Structured record from a filename. The extension is
// stripped first; date, round, and tag tokens are consumed from the text
// before the remainder is searched for a team-pair segment.
func Parse(filename string) (*Structured, error) {
	work := filepath.Base(filename)
	if ext := strings.ToLower(filepath.Ext(work)); ext != "" {
		if _, ok := mediaExtensions[ext]; ok {
			work = strings.TrimSuffix(work, filepath.Ext(work))
		}
	}

	result := &Structured{Tags: make(map[string]string)}

	work = extractDate(work, result)
	work = extractRound(work, result)
	work = extractTags(work, result)
	extractTeams(work, result)

	if result.Empty() {
		return nil, ErrNoUsableFields
	}
	if len(result.Tags) == 0 {
		result.Tags = nil
	}
	return result, nil
}

func extractDate(work string, result *Structured) string {
	if loc := isoDateRe.FindStringSubmatchIndex(work); loc != nil {
		groups := isoDateRe.FindStringSubmatch(work)
		year, _ := strconv.Atoi(groups[1])
		month, _ := strconv.Atoi(groups[2])
		day, _ := strconv.Atoi(groups[3])
		if setDate(result, year, month, day) {
			return cut(work, loc[0], loc[1])
		}
	}
	if loc := numDateRe.FindStringSubmatchIndex(work); loc != nil {
		groups := numDateRe.FindStringSubmatch(work)
		first, _ := strconv.Atoi(groups[1])
		second, _ := strconv.Atoi(groups[2])
		year, _ := strconv.Atoi(groups[3])
		// Disambiguate DD MM versus MM DD: a component above 12 must be
		// the day; otherwise assume day-first.
		day, month := first, second
		if first <= 12 && second > 12 {
			day, month = second, first
		}
		if setDate(result, year, month, day) {
			return cut(work, loc[0], loc[1])
		}
	}
	if loc := dayMonthRe.FindStringSubmatchIndex(work); loc != nil {
		groups := dayMonthRe.FindStringSubmatch(work)
		day, _ := strconv.Atoi(groups[1])
		month := monthIndex[strings.ToLower(groups[2][:3])]
		year, _ := strconv.Atoi(groups[3])
		if setDate(result, year, int(month), day) {
			return cut(work, loc[0], loc[1])
		}
	}
	if loc := monthDayRe.FindStringSubmatchIndex(work); loc != nil {
		groups := monthDayRe.FindStringSubmatch(work)
		month := monthIndex[strings.ToLower(groups[1][:3])]
		day, _ := strconv.Atoi(groups[2])
		year := time.Now().UTC().Year()
		if groups[3] != "" {
			year, _ = strconv.Atoi(groups[3])
		}
		if setDate(result, year, int(month), day) {
			return cut(work, loc[0], loc[1])
		}
	}
	return work
}

func setDate(result *Structured, year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow such as February 31.
	if date.Day() != day || int(date.Month()) != month {
		return false
	}
	result.Date = &date
	return true
}

func extractRound(work string, result *Structured) string {
	if loc := roundRe.FindStringSubmatchIndex(work); loc != nil {
		groups := roundRe.FindStringSubmatch(work)
		if round, err := strconv.Atoi(groups[1]); err == nil {
			result.Round = &round
			work = cut(work, loc[0], loc[1])
		}
	} else if loc := shortRoundRe.FindStringSubmatchIndex(work); loc != nil {
		groups := shortRoundRe.FindStringSubmatch(work)
		if round, err := strconv.Atoi(groups[1]); err == nil {
			result.Round = &round
			work = cut(work, loc[0], loc[1])
		}
	}
	if loc := regularSeasonRe.FindStringIndex(work); loc != nil {
		result.RegularSeason = true
		work = cut(work, loc[0], loc[1])
	}
	return work
}

func extractTags(work string, result *Structured) string {
	for _, tag := range []struct {
		key string
		re  *regexp.Regexp
	}{
		{"resolution", resolutionRe},
		{"fps", frameRateRe},
		{"codec", codecRe},
		{"source", sourceRe},
		{"provider", providerRe},
	} {
		if loc := tag.re.FindStringSubmatchIndex(work); loc != nil {
			groups := tag.re.FindStringSubmatch(work)
			result.Tags[tag.key] = groups[1]
			work = cut(work, loc[0], loc[1])
		}
	}
	return work
}

func extractTeams(work string, result *Structured) {
	// '@' binds tighter than textual delimiters and flips ordering:
	// the file names the away team first.
	if idx := strings.IndexByte(work, '@'); idx >= 0 {
		left := cleanTeamSide(work[:idx])
		right := cleanTeamSide(work[idx+1:])
		if left != "" && right != "" {
			result.Teams = []string{left, right}
			result.AwayFirst = true
			return
		}
	}

	if loc := versusRe.FindStringSubmatchIndex(work); loc != nil {
		left := cleanTeamSide(work[:loc[0]])
		right := cleanTeamSide(work[loc[1]:])
		if left != "" && right != "" {
			result.Teams = []string{left, right}
			return
		}
	}

	// Last resort: a spaced hyphen, or a single bare hyphen with
	// non-numeric text on both sides.
	normalized := normalizeSeparators(work)
	if idx := strings.Index(normalized, " - "); idx >= 0 {
		left := cleanTeamSide(normalized[:idx])
		right := cleanTeamSide(normalized[idx+3:])
		if left != "" && right != "" {
			result.Teams = []string{left, right}
			return
		}
	}
	if strings.Count(normalized, "-") == 1 {
		idx := strings.IndexByte(normalized, '-')
		left := cleanTeamSide(normalized[:idx])
		right := cleanTeamSide(normalized[idx+1:])
		if left != "" && right != "" && !isNumeric(left) && !isNumeric(right) {
			result.Teams = []string{left, right}
		}
	}
}

func cleanTeamSide(s string) string {
	s = normalizeSeparators(s)
	s = strings.Trim(s, " -")
	return s
}

func normalizeSeparators(s string) string {
	s = separatorRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cut(s string, start, end int) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s[:start]+" "+s[end:], " "))
}
