package phrase

import (
	"math"

	"github.com/clem2k/ultrastar-generator/internal/config"
	"github.com/clem2k/ultrastar-generator/internal/timebase"
	"github.com/clem2k/ultrastar-generator/internal/track"
)

// Span is one phrase worth of words plus the beat where its break
// marker belongs. The final span of a track has HasBreak == false.
type Span struct {
	Words     []track.Word
	BreakBeat int
	HasBreak  bool
}

// BreakReason says which rule forced a phrase break.
type BreakReason int

const (
	BreakNone BreakReason = iota
	BreakWordCount
	BreakSilence
)

// Segmenter groups the flat word stream into phrases. It is a pure
// fold over the input: no state survives a Segment call, so one
// segmenter can serve repeated runs with the same settings.
type Segmenter struct {
	tb           *timebase.TimeBase
	maxWords     int
	gapThreshold float64
	fraction     float64
}

// NewSegmenter builds a segmenter from the run configuration.
func NewSegmenter(cfg config.Config, tb *timebase.TimeBase) *Segmenter {
	return &Segmenter{
		tb:           tb,
		maxWords:     cfg.Phrase.MaxWords,
		gapThreshold: cfg.Phrase.GapThreshold,
		fraction:     cfg.Phrase.Fraction,
	}
}

// Segment partitions words into spans. Every input word lands in
// exactly one span, in order; empty input yields an empty result.
func (s *Segmenter) Segment(words []track.Word) []Span {
	if len(words) == 0 {
		return nil
	}

	var spans []Span
	current := make([]track.Word, 0, s.maxWords)

	for i, w := range words {
		current = append(current, w)

		if i == len(words)-1 {
			// Last word always terminates the final phrase; the
			// trailing break is omitted per format convention.
			spans = append(spans, Span{Words: current})
			break
		}

		endBeat := s.tb.BeatsFromSeconds(w.End)
		nextBeat := s.tb.BeatsFromSeconds(words[i+1].Start)
		gap := nextBeat - endBeat
		if gap < 0 {
			gap = 0
		}

		reason := BreakNone
		switch {
		case len(current) >= s.maxWords:
			// Word-count limit takes priority over the silence rule:
			// the break still lands at the configured fraction of
			// whatever gap exists, possibly right after the word.
			reason = BreakWordCount
		case float64(gap) >= s.gapThreshold:
			reason = BreakSilence
		}
		if reason == BreakNone {
			continue
		}

		spans = append(spans, Span{
			Words:     current,
			BreakBeat: endBeat + int(math.Round(s.fraction*float64(gap))),
			HasBreak:  true,
		})
		current = make([]track.Word, 0, s.maxWords)
	}

	return spans
}
