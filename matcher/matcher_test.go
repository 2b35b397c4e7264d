package matcher

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	m := New(DefaultThreshold)

	tests := []struct {
		name   string
		query  string
		artist string
		title  string
		want   bool
	}{
		{"exact", "ed sheeran shape of you", "Ed Sheeran", "Shape of You", true},
		{"title_only", "Shape of You", "Ed Sheeran", "Shape of You", true},
		{"field_prefixes", "track:Shape of You artist:Ed Sheeran", "Ed Sheeran", "Shape of You", true},
		{"case_insensitive", "ED SHEERAN SHAPE OF YOU", "Ed Sheeran", "Shape of You", true},
		{"unrelated", "zzzz qqqq xxxx wwww kkkk", "Ed Sheeran", "Shape of You", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, found, ratio := m.Validate(tt.query, tt.artist, tt.title)
			if ok != tt.want {
				t.Errorf("Validate(%q) ok = %v (ratio %.2f); want %v", tt.query, ok, ratio, tt.want)
			}
			if !strings.Contains(found, "ed sheeran shape of you") {
				t.Errorf("found = %q; want comparison string present", found)
			}
		})
	}
}

func TestValidateRejectionAppendsRatio(t *testing.T) {
	m := New(DefaultThreshold)
	ok, found, _ := m.Validate("zzzz qqqq xxxx wwww kkkk", "Ed Sheeran", "Shape of You")
	if ok {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(found, "(0.") {
		t.Errorf("rejection diagnostics missing ratio: %q", found)
	}
}

func TestAcceptsBoundary(t *testing.T) {
	m := New(0.4)
	tests := []struct {
		name  string
		ratio float64
		want  bool
	}{
		{"exactly_threshold", 0.4, true},
		{"just_below", 0.3999, false},
		{"just_above", 0.4001, true},
		{"zero", 0, false},
		{"one", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.accepts(tt.ratio); got != tt.want {
				t.Errorf("accepts(%v) = %v; want %v", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestNewClampsThreshold(t *testing.T) {
	if m := New(0); m.Threshold != DefaultThreshold {
		t.Errorf("New(0).Threshold = %v", m.Threshold)
	}
	if m := New(2); m.Threshold != DefaultThreshold {
		t.Errorf("New(2).Threshold = %v", m.Threshold)
	}
	if m := New(0.7); m.Threshold != 0.7 {
		t.Errorf("New(0.7).Threshold = %v", m.Threshold)
	}
}

func TestIdenticalStringsScoreFull(t *testing.T) {
	m := New(DefaultThreshold)
	_, _, ratio := m.Validate("ed sheeran shape of you", "ed sheeran", "shape of you")
	if ratio < 0.99 {
		t.Errorf("identical comparison ratio = %v; want ~1", ratio)
	}
}
