package resolve

import "testing"

func TestSpecificityComparative(t *testing.T) {
	morespecific := []struct {
		high string
		low  string
	}{
		{"Round 1", "Final"},
		{"Round 12", "TBD"},
		{"Week 7", "Final"},
		{"Game 3", "Grand Final"},
		{"Semi Final 2", "Semi Final"},
		{"Matchweek 24", ""},
	}
	for _, tc := range morespecific {
		if Specificity(tc.high) <= Specificity(tc.low) {
			t.Errorf("Specificity(%q) = %d, expected greater than Specificity(%q) = %d",
				tc.high, Specificity(tc.high), tc.low, Specificity(tc.low))
		}
	}
}

func TestSpecificityEqualGenericLabels(t *testing.T) {
	if Specificity("Final") != Specificity("TBD") {
		t.Errorf("generic labels should tie: Final=%d TBD=%d",
			Specificity("Final"), Specificity("TBD"))
	}
}

func TestSpecificityEmptyLowest(t *testing.T) {
	if Specificity("") >= Specificity("Final") {
		t.Error("empty label must score below any non-empty label")
	}
}
