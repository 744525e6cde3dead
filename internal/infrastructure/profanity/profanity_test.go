package profanity

import "testing"

func TestContains(t *testing.T) {
	f := NewFilter()

	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"Alice", false},
		{"Grass hill", false}, // substring of a banned word inside a clean one must not trip
		{"shit", true},
		{"ShIt", true},
		{"sh1t", true},
		{"s.h.i.t", true},
		{"total bastard move", true},
	}

	for _, tt := range tests {
		if got := f.Contains(tt.text); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
