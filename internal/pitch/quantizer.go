package pitch

import (
	"math"
	"sort"

	"github.com/clem2k/ultrastar-generator/internal/track"
)

// Quantizer maps the pitch contour overlapping a word's span to a
// single semitone value relative to the reference frequency (C4 by
// default, matching the UltraStar convention of pitch 0 = C4).
type Quantizer struct {
	referenceHz float64
	min, max    int
}

// NewQuantizer builds a quantizer with the given reference frequency
// and supported pitch range.
func NewQuantizer(referenceHz float64, min, max int) *Quantizer {
	return &Quantizer{referenceHz: referenceHz, min: min, max: max}
}

// Quantize returns the semitone value for the voiced samples whose
// time falls in [start, end). ok is false when the span holds no
// voiced samples; the caller decides the fallback — pitch is advisory,
// never blocking.
func (q *Quantizer) Quantize(samples []track.PitchSample, start, end float64) (value int, ok bool) {
	var voiced []float64
	for _, s := range samples {
		if s.Time >= start && s.Time < end && s.Voiced() {
			voiced = append(voiced, s.Frequency)
		}
	}
	if len(voiced) == 0 {
		return 0, false
	}

	// Median, not mean: a single octave-jump outlier from the pitch
	// tracker would drag a mean halfway to the wrong octave.
	freq := median(voiced)

	semitones := 12 * math.Log2(freq/q.referenceHz)
	value = int(math.Round(semitones))
	if value < q.min {
		value = q.min
	}
	if value > q.max {
		value = q.max
	}
	return value, true
}

// median sorts a copy so the result is independent of input order.
func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
