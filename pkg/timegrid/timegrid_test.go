package timegrid

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"10:30", 630, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"10:5", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock_RoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 30, 600, 630, 1439} {
		s := FormatClock(minutes)
		back, err := ParseClock(s)
		if err != nil {
			t.Fatalf("FormatClock(%d) produced unparseable %q: %v", minutes, s, err)
		}
		if back != minutes {
			t.Errorf("round trip %d -> %q -> %d", minutes, s, back)
		}
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     int
		want                           bool
	}{
		{"disjoint before", 600, 660, 660, 720, false},
		{"disjoint after", 720, 780, 660, 720, false},
		{"identical", 600, 660, 600, 660, true},
		{"partial head", 630, 690, 660, 720, true},
		{"partial tail", 690, 750, 660, 720, true},
		{"contained", 670, 700, 660, 720, true},
		{"touching edges do not overlap", 600, 660, 540, 600, false},
	}

	for _, tc := range cases {
		if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEnumerate(t *testing.T) {
	// Shift 10:00-14:00, 60 min service, 30 min grid.
	got := Enumerate(600, 840, 60, 30)
	want := []int{600, 630, 660, 690, 720, 750, 780}
	if len(got) != len(want) {
		t.Fatalf("Enumerate returned %d starts, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Enumerate[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestEnumerate_DurationLongerThanShift(t *testing.T) {
	if got := Enumerate(600, 630, 60, 30); got != nil {
		t.Errorf("expected no starts, got %v", got)
	}
}

func TestFree(t *testing.T) {
	busy := []Interval{{Start: 660, End: 720}} // 11:00-12:00

	occupiedStarts := []int{630, 660, 690}
	for _, s := range occupiedStarts {
		if Free(s, 60, busy) {
			t.Errorf("start %s should conflict with 11:00-12:00", FormatClock(s))
		}
	}

	freeStarts := []int{600, 720, 750}
	for _, s := range freeStarts {
		if !Free(s, 60, busy) {
			t.Errorf("start %s should be free", FormatClock(s))
		}
	}
}

func TestToday(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, loc)
	today := Today(now)
	if today.Hour() != 0 || today.Minute() != 0 || today.Day() != 14 {
		t.Errorf("Today(%v) = %v", now, today)
	}
}
