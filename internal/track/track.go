package track

import "strings"

// Word is a single transcribed word with its time span in seconds.
// Words arrive ordered by start time and non-overlapping; the loaders
// in internal/input enforce that before anything downstream runs.
type Word struct {
	Text       string
	Start      float64
	End        float64
	Confidence float64
}

// PitchSample is one frame of the pitch contour. Frequency <= 0 marks
// an unvoiced frame.
type PitchSample struct {
	Time      float64
	Frequency float64
}

// Voiced reports whether the sample carries a usable frequency.
func (p PitchSample) Voiced() bool {
	return p.Frequency > 0
}

// Header holds the UltraStar file header fields. BPM is the real BPM;
// GapMS is the offset of beat zero from audio start in milliseconds.
// A negative GapMS means "derive from the first word".
type Header struct {
	Title    string
	Artist   string
	BPM      float64
	GapMS    int
	Language string
	Creator  string
	Album    string
	Genre    string
	Year     string

	// Media references, emitted only when set.
	Audio      string
	Cover      string
	Background string
	Video      string
}

// NoteKind is the UltraStar note type marker.
type NoteKind int

const (
	KindNormal NoteKind = iota
	KindGolden
	KindFreestyle
	KindPhraseBreak
)

// Marker returns the single-character marker used in the file body.
func (k NoteKind) Marker() string {
	switch k {
	case KindGolden:
		return "*"
	case KindFreestyle:
		return "F"
	case KindPhraseBreak:
		return "-"
	default:
		return ":"
	}
}

// KindFromMarker maps a body-line marker back to a NoteKind.
func KindFromMarker(m string) (NoteKind, bool) {
	switch m {
	case ":":
		return KindNormal, true
	case "*":
		return KindGolden, true
	case "F":
		return KindFreestyle, true
	case "-":
		return KindPhraseBreak, true
	}
	return KindNormal, false
}

// Note is one body line of the track: a sung note or a phrase break.
// For breaks only StartBeat is meaningful.
type Note struct {
	Kind          NoteKind
	StartBeat     int
	DurationBeats int
	Pitch         int
	Text          string
}

// EndBeat returns the first beat after the note.
func (n Note) EndBeat() int {
	return n.StartBeat + n.DurationBeats
}

// Phrase is one displayed line: sung notes plus the break that ends it.
// The final phrase of a track has Break == nil.
type Phrase struct {
	Notes []Note
	Break *Note
}

// Lines flattens the phrase into body-line order.
func (p Phrase) Lines() []Note {
	out := make([]Note, 0, len(p.Notes)+1)
	out = append(out, p.Notes...)
	if p.Break != nil {
		out = append(out, *p.Break)
	}
	return out
}

var punctuation = ".,;:!?\"()[]{}-_–—"

// CleanText strips punctuation from a word before it becomes note text.
// If stripping would leave nothing, the raw text is kept: a degenerate
// syllable beats an empty one.
func CleanText(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return strings.TrimSpace(s)
	}
	return cleaned
}
