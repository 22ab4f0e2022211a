// Package resolve maps source filenames to episodes in a sport's
// metadata tree. Resolution tries the sport's configured pattern rules
// first, falls back to structured filename parsing, then narrows
// season/episode candidates using alias-resolved team pairs, air dates,
// and round numbers. Ties between equally plausible candidates are
// broken by label specificity; a remaining tie is surfaced as an
// ambiguous match for operator review rather than auto-resolved.
package resolve
