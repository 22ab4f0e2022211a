package resolve

import (
	"regexp"
	"strings"
)

var digitRunRe = regexp.MustCompile(`\d+`)

var qualifierKeywords = []string{
	"round", "week", "matchweek", "game", "match", "grand prix", "stage", "leg", "day",
}

// Specificity scores how discriminative a season or episode label is.
// Labels carrying numeric qualifiers ("Round 1", "Week 12") score higher
// than generic ones ("Final", "TBD"). Scores are only meaningful
// relative to each other; callers must compare, never rely on absolute
// values.
func Specificity(label string) int {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return 0
	}
	score := 1
	if digitRunRe.MatchString(s) {
		score += 5
	}
	for _, keyword := range qualifierKeywords {
		if strings.Contains(s, keyword) {
			score += 2
			break
		}
	}
	return score
}
