package midiexport

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/clem2k/ultrastar-generator/internal/track"
)

const (
	ticksPerQuarter = 480
	midiC4          = 60
	channel         = 0
	velocity        = 90
)

// Export renders the assembled note line as a single-track SMF so the
// reconstruction can be auditioned in any MIDI player. UltraStar pitch
// values are C4-relative semitones, so key = 60 + pitch.
func Export(phrases []track.Phrase, bpm float64, resolution int) (*smf.SMF, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("cannot export midi with bpm %v", bpm)
	}
	if resolution < 1 {
		resolution = 1
	}

	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(bpm))

	// One real beat spans `resolution` beat units.
	ticksPerUnit := float64(ticksPerQuarter) / float64(resolution)

	cursor := uint32(0)
	for _, p := range phrases {
		for _, n := range p.Notes {
			key := clampKey(midiC4 + n.Pitch)
			onTick := uint32(float64(n.StartBeat) * ticksPerUnit)
			offTick := uint32(float64(n.EndBeat()) * ticksPerUnit)
			if offTick <= onTick {
				offTick = onTick + 1
			}

			tr.Add(onTick-cursor, midi.NoteOn(channel, key, velocity))
			tr.Add(offTick-onTick, midi.NoteOff(channel, key))
			cursor = offTick
		}
	}
	tr.Close(0)

	s.Tracks = append(s.Tracks, tr)
	return &s, nil
}

// WriteFile exports phrases and saves the SMF at path.
func WriteFile(path string, phrases []track.Phrase, bpm float64, resolution int) error {
	s, err := Export(phrases, bpm, resolution)
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("write midi file: %w", err)
	}
	return nil
}

func clampKey(key int) uint8 {
	if key < 0 {
		return 0
	}
	if key > 127 {
		return 127
	}
	return uint8(key)
}
