// Package normalize canonicalizes free-form name tokens for comparison.
// Normalization folds case, strips diacritics, and drops everything that
// is not a letter or digit, so "Montréal-Canadiens" and "montreal canadiens"
// produce the same token.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var memo = struct {
	sync.RWMutex
	tokens map[string]string
}{tokens: make(map[string]string)}

// Token returns the canonical comparison form of s. Results are memoized;
// repeated lookups of the same string are map hits.
func Token(s string) string {
	memo.RLock()
	cached, ok := memo.tokens[s]
	memo.RUnlock()
	if ok {
		return cached
	}

	token := fold(s)

	memo.Lock()
	memo.tokens[s] = token
	memo.Unlock()
	return token
}

// Tokens normalizes each input string, dropping any that normalize to empty.
func Tokens(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if token := Token(v); token != "" {
			out = append(out, token)
		}
	}
	return out
}

func fold(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining marks left over from NFKD decomposition.
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
