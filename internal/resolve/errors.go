package resolve

import (
	"errors"
	"fmt"
	"strings"

	"matchday/internal/metadata"
	"matchday/internal/parsename"
	"matchday/internal/rules"
)

// ErrNoMatch reports that neither pattern matching nor structured
// parsing produced an episode. Per-file and recoverable: the caller
// moves on to the next file and may retry after a metadata refresh.
var ErrNoMatch = errors.New("no matching episode")

// Candidate is one season/episode pair still plausible at tie-break time.
type Candidate struct {
	Season  *metadata.Season
	Episode *metadata.Episode
}

// Label is the text the specificity scorer ranks: the episode title,
// falling back to the season title when the episode has none.
func (c Candidate) Label() string {
	if c.Episode != nil && strings.TrimSpace(c.Episode.Title) != "" {
		return c.Episode.Title
	}
	if c.Season != nil {
		return c.Season.Title
	}
	return ""
}

// AmbiguousError reports two or more equally specific candidates. It is
// never auto-resolved; the tied candidates are carried for operator review.
type AmbiguousError struct {
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous match: %d equally specific candidates", len(e.Candidates))
}

// ResolutionError wraps a resolution failure with the diagnostics
// gathered along the way: every rule attempted and whatever the
// structured parser extracted.
type ResolutionError struct {
	Path     string
	Reason   error
	Attempts []rules.Attempt
	Parsed   *parsename.Structured
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Path, e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return e.Reason
}
