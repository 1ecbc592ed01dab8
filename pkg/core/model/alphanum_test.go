package model

import (
	"slices"
	"testing"
)

func TestCompareAlphaNumeric(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"1.0", "1.0", 0},
		{"1.9", "1.10", -1},
		{"1.10", "1.9", 1},
		{"rc2", "rc10", -1},
		{"1.0", "1.0.1", -1},
		{"1.0-alpha", "1.0-beta", -1},
		{"007", "7", 1},
		{"7", "007", -1},
		{"a", "1", 1},
		{"99999999999999999999", "100000000000000000000", -1},
	}
	for _, tt := range tests {
		if got := CompareAlphaNumeric(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareAlphaNumeric(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareAlphaNumericSort(t *testing.T) {
	versions := []string{"1.10.0", "1.2.0", "1.9.3", "1.2.0-rc1", "0.9"}
	slices.SortFunc(versions, CompareAlphaNumeric)
	want := []string{"0.9", "1.2.0", "1.2.0-rc1", "1.9.3", "1.10.0"}
	if !slices.Equal(versions, want) {
		t.Errorf("sorted = %v, want %v", versions, want)
	}
}
