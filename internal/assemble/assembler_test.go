package assemble

import (
	"testing"

	usErr "github.com/clem2k/ultrastar-generator/internal/errors"
	"github.com/clem2k/ultrastar-generator/internal/phrase"
	"github.com/clem2k/ultrastar-generator/internal/pitch"
	"github.com/clem2k/ultrastar-generator/internal/timebase"
	"github.com/clem2k/ultrastar-generator/internal/track"
)

func testAssembler(t *testing.T, neutral int) *Assembler {
	t.Helper()
	tb, err := timebase.New(120, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	q := pitch.NewQuantizer(261.63, -60, 67)
	return New(tb, q, nil, neutral)
}

func c4At(start, end float64) []track.PitchSample {
	var out []track.PitchSample
	for tm := start; tm < end; tm += 0.05 {
		out = append(out, track.PitchSample{Time: tm, Frequency: 261.63})
	}
	return out
}

func TestAssembleBasic(t *testing.T) {
	a := testAssembler(t, 0)
	spans := []phrase.Span{{
		Words: []track.Word{
			{Text: "Hello,", Start: 0, End: 0.5},
			{Text: "world", Start: 0.5, End: 1.0},
		},
	}}

	phrases, warnings := a.Assemble(spans, c4At(0, 1.0))
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(phrases) != 1 || len(phrases[0].Notes) != 2 {
		t.Fatalf("got %d phrases, want 1 with 2 notes", len(phrases))
	}

	n := phrases[0].Notes[0]
	if n.StartBeat != 0 || n.DurationBeats != 1 || n.Pitch != 0 {
		t.Errorf("note 0 = {start %d, dur %d, pitch %d}, want {0, 1, 0}", n.StartBeat, n.DurationBeats, n.Pitch)
	}
	if n.Text != "Hello" {
		t.Errorf("note text = %q, want punctuation stripped %q", n.Text, "Hello")
	}
	if phrases[0].Break != nil {
		t.Error("final phrase must not carry a break")
	}
}

func TestAssembleMinimumDuration(t *testing.T) {
	a := testAssembler(t, 0)
	// 0.1s at two units per second rounds to zero beats; the note still
	// must occupy at least one.
	spans := []phrase.Span{{Words: []track.Word{{Text: "blip", Start: 1.0, End: 1.1}}}}

	phrases, _ := a.Assemble(spans, nil)
	if d := phrases[0].Notes[0].DurationBeats; d != 1 {
		t.Errorf("duration = %d, want minimum 1", d)
	}
}

func TestAssembleMonotonicityRepair(t *testing.T) {
	a := testAssembler(t, 0)
	// "aa" occupies [0,1) after the minimum-duration bump; "bb" rounds
	// back onto beat 0 and must be shifted to beat 1.
	spans := []phrase.Span{{Words: []track.Word{
		{Text: "aa", Start: 0, End: 0.3},
		{Text: "bb", Start: 0.2, End: 0.8},
	}}}

	phrases, warnings := a.Assemble(spans, nil)

	notes := phrases[0].Notes
	if notes[1].StartBeat < notes[0].EndBeat() {
		t.Fatalf("notes overlap: %d < %d", notes[1].StartBeat, notes[0].EndBeat())
	}
	if notes[1].StartBeat != 1 {
		t.Errorf("shifted start = %d, want 1 (minimal shift)", notes[1].StartBeat)
	}

	var found bool
	for _, w := range warnings {
		if w.Code == usErr.WarnMonotonicityAdjusted && w.Word == "bb" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a monotonicity warning for %q, got %v", "bb", warnings)
	}
}

func TestAssembleMonotonicityAcrossPhrases(t *testing.T) {
	a := testAssembler(t, 0)
	spans := []phrase.Span{
		{Words: []track.Word{{Text: "one", Start: 0, End: 0.4}}, BreakBeat: 1, HasBreak: true},
		{Words: []track.Word{{Text: "two", Start: 0.2, End: 0.9}}},
	}

	phrases, warnings := a.Assemble(spans, nil)
	first := phrases[0].Notes[0]
	second := phrases[1].Notes[0]
	if second.StartBeat < first.EndBeat() {
		t.Errorf("overlap across phrase boundary: %d < %d", second.StartBeat, first.EndBeat())
	}
	if len(warnings) == 0 {
		t.Error("expected a monotonicity warning")
	}
}

func TestAssembleNeutralPitchFallback(t *testing.T) {
	a := testAssembler(t, 5)
	spans := []phrase.Span{{Words: []track.Word{{Text: "hum", Start: 0, End: 0.5}}}}

	phrases, warnings := a.Assemble(spans, nil)
	if p := phrases[0].Notes[0].Pitch; p != 5 {
		t.Errorf("pitch = %d, want neutral 5", p)
	}
	if len(warnings) != 1 || warnings[0].Code != usErr.WarnPitchUnavailable {
		t.Errorf("warnings = %v, want one pitch_unavailable", warnings)
	}
}

func TestAssembleBreakClampedToLastNote(t *testing.T) {
	a := testAssembler(t, 0)
	// Precomputed break at beat 0 sits before the note's end; the break
	// must move to the note's end, never before it.
	spans := []phrase.Span{
		{Words: []track.Word{{Text: "long", Start: 0, End: 2.0}}, BreakBeat: 0, HasBreak: true},
		{Words: []track.Word{{Text: "tail", Start: 2.0, End: 2.5}}},
	}

	phrases, _ := a.Assemble(spans, nil)
	br := phrases[0].Break
	if br == nil {
		t.Fatal("expected a break on the first phrase")
	}
	if end := phrases[0].Notes[0].EndBeat(); br.StartBeat < end {
		t.Errorf("break at %d sits before last note end %d", br.StartBeat, end)
	}
}

func TestAssembleEmptySpans(t *testing.T) {
	a := testAssembler(t, 0)
	phrases, warnings := a.Assemble(nil, nil)
	if phrases != nil || warnings != nil {
		t.Errorf("Assemble(nil) = (%v, %v), want (nil, nil)", phrases, warnings)
	}
}
