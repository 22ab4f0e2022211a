package normalize

import "testing"

func TestToken(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Boston Bruins", "bostonbruins"},
		{"BOS", "bos"},
		{"bos", "bos"},
		{"Montréal Canadiens", "montrealcanadiens"},
		{"St. Louis Blues", "stlouisblues"},
		{"N.J.D.", "njd"},
		{"Round 1", "round1"},
		{"", ""},
		{"---", ""},
		{"  spaced  out  ", "spacedout"},
	}
	for _, tc := range tests {
		if got := Token(tc.input); got != tc.want {
			t.Errorf("Token(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTokenMemoized(t *testing.T) {
	first := Token("Philadelphia Flyers")
	second := Token("Philadelphia Flyers")
	if first != second {
		t.Fatalf("memoized lookup diverged: %q vs %q", first, second)
	}
}

func TestTokens(t *testing.T) {
	got := Tokens([]string{"NJD", "", "  ", "PHI"})
	if len(got) != 2 || got[0] != "njd" || got[1] != "phi" {
		t.Fatalf("Tokens = %v, want [njd phi]", got)
	}
}
