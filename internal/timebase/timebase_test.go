package timebase

import (
	"errors"
	"math"
	"testing"

	usErr "github.com/clem2k/ultrastar-generator/internal/errors"
)

func TestNewRejectsBadBPM(t *testing.T) {
	for _, bpm := range []float64{0, -1, -120} {
		_, err := New(bpm, 0, 4)
		if !errors.Is(err, usErr.ErrInvalidTimeBase) {
			t.Errorf("bpm %v: got %v, want ErrInvalidTimeBase", bpm, err)
		}
	}
}

func TestBeatsFromSeconds(t *testing.T) {
	// 120 BPM at resolution 1 is two beat units per second.
	tb, err := New(120, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		seconds float64
		want    int
	}{
		{0.0, 0},
		{0.5, 1},
		{1.0, 2},
		{1.5, 3},
		{4.0, 8},
	}
	for _, c := range cases {
		if got := tb.BeatsFromSeconds(c.seconds); got != c.want {
			t.Errorf("BeatsFromSeconds(%v) = %d, want %d", c.seconds, got, c.want)
		}
	}
}

func TestGapShiftsBeatZero(t *testing.T) {
	// One second of gap: the word at 1.0s lands on beat zero.
	tb, err := New(120, 1000, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := tb.BeatsFromSeconds(1.0); got != 0 {
		t.Errorf("beat at gap = %d, want 0", got)
	}
	if got := tb.BeatsFromSeconds(2.0); got != 8 {
		t.Errorf("beat one second past gap = %d, want 8", got)
	}
}

func TestClampsBeforeGap(t *testing.T) {
	tb, err := New(100, 5000, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, sec := range []float64{0, 1, 4.9} {
		if got := tb.BeatsFromSeconds(sec); got != 0 {
			t.Errorf("BeatsFromSeconds(%v) = %d, want clamp to 0", sec, got)
		}
	}
}

func TestRoundTripWithinOneUnit(t *testing.T) {
	bpms := []float64{60, 97.3, 120, 180.5}
	gaps := []int{0, 350, 12000}

	for _, bpm := range bpms {
		for _, gap := range gaps {
			tb, err := New(bpm, gap, 4)
			if err != nil {
				t.Fatal(err)
			}
			unit := 60.0 / (bpm * 4)
			for sec := float64(gap)/1000 + 0.1; sec < float64(gap)/1000+30; sec += 0.73 {
				back := tb.SecondsFromBeats(tb.BeatsFromSeconds(sec))
				if math.Abs(back-sec) > unit {
					t.Fatalf("bpm=%v gap=%d: round trip of %vs drifted to %vs (unit %vs)",
						bpm, gap, sec, back, unit)
				}
			}
		}
	}
}
