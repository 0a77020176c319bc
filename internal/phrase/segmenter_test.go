package phrase

import (
	"fmt"
	"testing"

	"github.com/clem2k/ultrastar-generator/internal/config"
	"github.com/clem2k/ultrastar-generator/internal/timebase"
	"github.com/clem2k/ultrastar-generator/internal/track"
)

// testSegmenter uses 120 BPM at resolution 1, so one beat unit is half
// a second and the arithmetic in the cases below stays readable.
func testSegmenter(t *testing.T, maxWords int) *Segmenter {
	t.Helper()
	var cfg config.Config
	cfg.Phrase.MaxWords = maxWords
	cfg.Phrase.GapThreshold = 4
	cfg.Phrase.Fraction = 0.25

	tb, err := timebase.New(120, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	return NewSegmenter(cfg, tb)
}

func word(text string, start, end float64) track.Word {
	return track.Word{Text: text, Start: start, End: end}
}

func TestSegmentEmptyInput(t *testing.T) {
	s := testSegmenter(t, 3)
	if spans := s.Segment(nil); spans != nil {
		t.Errorf("Segment(nil) = %v, want nil", spans)
	}
}

func TestSegmentSingleWord(t *testing.T) {
	s := testSegmenter(t, 3)
	spans := s.Segment([]track.Word{word("solo", 0, 0.5)})
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].HasBreak {
		t.Error("final span must not carry a break")
	}
}

func TestSegmentWordCountLimit(t *testing.T) {
	s := testSegmenter(t, 3)
	words := []track.Word{
		word("Hello", 0, 0.5),
		word("world", 0.5, 1.0),
		word("pause", 1.0, 1.5),
		word("next", 4.0, 4.5),
	}

	spans := s.Segment(words)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if len(spans[0].Words) != 3 || len(spans[1].Words) != 1 {
		t.Fatalf("span sizes = %d, %d; want 3, 1", len(spans[0].Words), len(spans[1].Words))
	}
	if !spans[0].HasBreak {
		t.Fatal("first span must carry a break")
	}
	// "pause" ends at beat 3, "next" starts at beat 8: gap of 5 units,
	// so the break lands at 3 + round(0.25*5) = 4.
	if spans[0].BreakBeat != 4 {
		t.Errorf("BreakBeat = %d, want 4", spans[0].BreakBeat)
	}
	if spans[1].HasBreak {
		t.Error("final span must not carry a break")
	}
}

func TestSegmentSilenceBreak(t *testing.T) {
	s := testSegmenter(t, 7)
	words := []track.Word{
		word("first", 0, 0.5),
		word("line", 0.5, 1.0),
		word("second", 4.0, 4.5),
	}

	spans := s.Segment(words)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	// "line" ends at beat 2, "second" starts at beat 8: a 6-unit gap
	// crosses the threshold of 4. Break at 2 + round(0.25*6) = 4.
	if spans[0].BreakBeat != 4 {
		t.Errorf("BreakBeat = %d, want 4", spans[0].BreakBeat)
	}
}

func TestSegmentGapBelowThresholdKeepsPhrase(t *testing.T) {
	s := testSegmenter(t, 7)
	words := []track.Word{
		word("no", 0, 0.5),
		word("break", 0.5, 1.0),
		word("here", 2.0, 2.5), // gap of 2 units, under the threshold of 4
	}
	spans := s.Segment(words)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if len(spans[0].Words) != 3 {
		t.Errorf("got %d words in span, want 3", len(spans[0].Words))
	}
}

func TestSegmentWordCountTakesPriority(t *testing.T) {
	// Third word is followed by a long silence AND fills the phrase;
	// only one break comes out, positioned by the gap fraction.
	s := testSegmenter(t, 3)
	words := []track.Word{
		word("one", 0, 0.5),
		word("two", 0.5, 1.0),
		word("three", 1.0, 1.5),
		word("four", 10.0, 10.5),
	}
	spans := s.Segment(words)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	// end beat 3, next start beat 20: break at 3 + round(0.25*17) = 7.
	if spans[0].BreakBeat != 7 {
		t.Errorf("BreakBeat = %d, want 7", spans[0].BreakBeat)
	}
}

func TestSegmentPartition(t *testing.T) {
	// Every word lands in exactly one span, in input order, whatever
	// mix of rules fires.
	s := testSegmenter(t, 3)

	var words []track.Word
	tm := 0.0
	for i := 0; i < 25; i++ {
		words = append(words, word(fmt.Sprintf("w%d", i), tm, tm+0.4))
		tm += 0.5
		if i%7 == 6 {
			tm += 3 // inject silences
		}
	}

	spans := s.Segment(words)
	var flat []track.Word
	for i, sp := range spans {
		if len(sp.Words) == 0 {
			t.Fatalf("span %d is empty", i)
		}
		if len(sp.Words) > 3 {
			t.Fatalf("span %d holds %d words, limit is 3", i, len(sp.Words))
		}
		if i < len(spans)-1 && !sp.HasBreak {
			t.Fatalf("non-final span %d missing break", i)
		}
		flat = append(flat, sp.Words...)
	}
	if len(flat) != len(words) {
		t.Fatalf("partition lost words: %d in, %d out", len(words), len(flat))
	}
	for i := range flat {
		if flat[i] != words[i] {
			t.Fatalf("word %d reordered: got %q, want %q", i, flat[i].Text, words[i].Text)
		}
	}
}
