package assemble

import (
	"github.com/clem2k/ultrastar-generator/internal/classify"
	usErr "github.com/clem2k/ultrastar-generator/internal/errors"
	"github.com/clem2k/ultrastar-generator/internal/phrase"
	"github.com/clem2k/ultrastar-generator/internal/pitch"
	"github.com/clem2k/ultrastar-generator/internal/timebase"
	"github.com/clem2k/ultrastar-generator/internal/track"
)

// Assembler turns segmented words into note records. It owns the two
// local recovery policies of the engine: the neutral-pitch fallback
// and the monotonicity repair, both surfaced as warnings.
type Assembler struct {
	tb         *timebase.TimeBase
	quantizer  *pitch.Quantizer
	classifier classify.Classifier
	neutral    int
}

// New builds an assembler. A nil classifier falls back to the default
// all-normal classification.
func New(tb *timebase.TimeBase, q *pitch.Quantizer, c classify.Classifier, neutralPitch int) *Assembler {
	if c == nil {
		c = classify.Normal{}
	}
	return &Assembler{tb: tb, quantizer: q, classifier: c, neutral: neutralPitch}
}

// Assemble builds one phrase per span, appending each span's break
// marker after its last note. Notes come out strictly non-overlapping:
// a start beat that rounding collapsed onto the previous note is
// shifted forward by the minimal amount and recorded as a warning.
func (a *Assembler) Assemble(spans []phrase.Span, samples []track.PitchSample) ([]track.Phrase, []usErr.Warning) {
	var phrases []track.Phrase
	var warnings []usErr.Warning

	prevEnd := 0
	for _, span := range spans {
		var p track.Phrase
		for _, w := range span.Words {
			startBeat := a.tb.BeatsFromSeconds(w.Start)
			duration := a.tb.BeatsFromSeconds(w.End) - startBeat
			if duration < 1 {
				duration = 1
			}

			if len(phrases) > 0 || len(p.Notes) > 0 {
				if startBeat < prevEnd {
					warnings = append(warnings, usErr.Warnf(
						usErr.WarnMonotonicityAdjusted, w.Text, startBeat,
						"start shifted forward %d beats to restore non-overlap", prevEnd-startBeat))
					startBeat = prevEnd
				}
			}

			value, pitched := a.quantizer.Quantize(samples, w.Start, w.End)
			if !pitched {
				value = a.neutral
				warnings = append(warnings, usErr.Warnf(
					usErr.WarnPitchUnavailable, w.Text, startBeat,
					"no voiced samples in [%.2fs, %.2fs), using neutral pitch %d", w.Start, w.End, a.neutral))
			}

			kind := a.classifier.Kind(w, pitched)
			if kind == track.KindPhraseBreak {
				kind = track.KindNormal
			}

			note := track.Note{
				Kind:          kind,
				StartBeat:     startBeat,
				DurationBeats: duration,
				Pitch:         value,
				Text:          track.CleanText(w.Text),
			}
			p.Notes = append(p.Notes, note)
			prevEnd = note.EndBeat()
		}

		if span.HasBreak {
			breakBeat := span.BreakBeat
			if breakBeat < prevEnd {
				// Monotonicity repairs above can push the last note
				// past the precomputed break position.
				breakBeat = prevEnd
			}
			p.Break = &track.Note{Kind: track.KindPhraseBreak, StartBeat: breakBeat}
		}
		phrases = append(phrases, p)
	}

	return phrases, warnings
}
