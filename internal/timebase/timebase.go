package timebase

import (
	"fmt"
	"math"

	usErr "github.com/clem2k/ultrastar-generator/internal/errors"
)

// TimeBase converts between absolute seconds and the beat coordinate
// system of an UltraStar file. Beat addressing runs at bpm*resolution
// so notes can sit on quarter-beat (or finer) boundaries while the
// header still carries the real BPM.
type TimeBase struct {
	bpm        float64
	gapMS      float64
	resolution int
}

// New builds a TimeBase for one track. bpm must be positive.
func New(bpm float64, gapMS int, resolution int) (*TimeBase, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("%w: bpm %v", usErr.ErrInvalidTimeBase, bpm)
	}
	if resolution < 1 {
		return nil, fmt.Errorf("%w: resolution %d", usErr.ErrInvalidTimeBase, resolution)
	}
	return &TimeBase{
		bpm:        bpm,
		gapMS:      float64(gapMS),
		resolution: resolution,
	}, nil
}

// BPM returns the real beats per minute.
func (tb *TimeBase) BPM() float64 { return tb.bpm }

// GapMS returns the gap in milliseconds.
func (tb *TimeBase) GapMS() int { return int(tb.gapMS) }

// Resolution returns the beat subdivision factor.
func (tb *TimeBase) Resolution() int { return tb.resolution }

// BeatsFromSeconds maps an absolute time to the nearest beat unit.
// Times before the gap clamp to beat zero; the first audible beat
// defines time zero for the whole file.
func (tb *TimeBase) BeatsFromSeconds(t float64) int {
	msPerBeat := 60000.0 / (tb.bpm * float64(tb.resolution))
	beat := int(math.Round((t*1000.0 - tb.gapMS) / msPerBeat))
	if beat < 0 {
		return 0
	}
	return beat
}

// SecondsFromBeats is the inverse mapping, used for diagnostics only.
func (tb *TimeBase) SecondsFromBeats(b int) float64 {
	msPerBeat := 60000.0 / (tb.bpm * float64(tb.resolution))
	return (float64(b)*msPerBeat + tb.gapMS) / 1000.0
}
