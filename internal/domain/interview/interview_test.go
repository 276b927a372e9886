package interview_test

import (
	"testing"
	"time"

	"hrdesk/recruitment-service/internal/domain/interview"
)

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"VIDEO", "PHONE", "ONSITE"} {
		if _, err := interview.ParseMethod(s); err != nil {
			t.Errorf("ParseMethod(%q) unexpected error: %v", s, err)
		}
	}
	for _, s := range []string{"", "video", "ZOOM"} {
		if _, err := interview.ParseMethod(s); err == nil {
			t.Errorf("ParseMethod(%q) expected error", s)
		}
	}
}

// The window is open on both ends: exactly one hour apart is not a clash.
func TestOverlaps_Window(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{59 * time.Minute, true},
		{-59 * time.Minute, true},
		{time.Hour, false},
		{-time.Hour, false},
		{90 * time.Minute, false},
	}
	for _, c := range cases {
		if got := interview.Overlaps(at, at.Add(c.offset)); got != c.want {
			t.Errorf("Overlaps(offset %v) = %v, want %v", c.offset, got, c.want)
		}
	}
}

func TestOnPanel(t *testing.T) {
	iv := interview.Interview{Panel: []string{"e-1", "e-2"}}
	if !iv.OnPanel("e-2") {
		t.Error("e-2 should be on the panel")
	}
	if iv.OnPanel("e-3") {
		t.Error("e-3 should not be on the panel")
	}
}
