package input

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	usErr "github.com/clem2k/ultrastar-generator/internal/errors"
	"github.com/clem2k/ultrastar-generator/internal/track"
)

// The loaders in this package are the concrete side of the consumed
// interfaces: the word list from the transcription collaborator, the
// pitch contour from the pitch collaborator, and the header fields
// from the metadata collaborator, all exchanged as JSON files.

type wordsFile struct {
	SrtWords         [][]json.RawMessage `json:"srtWords"`
	DetectedLanguage string              `json:"detected_language"`
}

// LoadWords reads the transcription cache shape: a list of
// [start, end, text] triples plus the detected language tag.
func LoadWords(path string) ([]track.Word, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read words file: %w", err)
	}
	return ParseWords(data)
}

// ParseWords decodes and validates the word list. Words must arrive
// ordered and non-overlapping with positive spans; anything else means
// the aligner output is corrupt and the run cannot proceed.
func ParseWords(data []byte) ([]track.Word, string, error) {
	var wf wordsFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, "", fmt.Errorf("%w: decode words: %v", usErr.ErrBadInput, err)
	}

	words := make([]track.Word, 0, len(wf.SrtWords))
	prevEnd := 0.0
	for i, entry := range wf.SrtWords {
		if len(entry) < 3 {
			return nil, "", fmt.Errorf("%w: word %d has %d fields, want 3", usErr.ErrBadInput, i, len(entry))
		}
		var w track.Word
		if err := json.Unmarshal(entry[0], &w.Start); err != nil {
			return nil, "", fmt.Errorf("%w: word %d start: %v", usErr.ErrBadInput, i, err)
		}
		if err := json.Unmarshal(entry[1], &w.End); err != nil {
			return nil, "", fmt.Errorf("%w: word %d end: %v", usErr.ErrBadInput, i, err)
		}
		if err := json.Unmarshal(entry[2], &w.Text); err != nil {
			return nil, "", fmt.Errorf("%w: word %d text: %v", usErr.ErrBadInput, i, err)
		}
		if w.Text == "" {
			return nil, "", fmt.Errorf("%w: word %d has empty text", usErr.ErrBadInput, i)
		}
		if w.Start < 0 || w.End <= w.Start {
			return nil, "", fmt.Errorf("%w: word %d (%q) has bad span [%v, %v]", usErr.ErrBadInput, i, w.Text, w.Start, w.End)
		}
		if w.Start < prevEnd {
			return nil, "", fmt.Errorf("%w: word %d (%q) starts at %v before its predecessor ends at %v",
				usErr.ErrBadInput, i, w.Text, w.Start, prevEnd)
		}
		prevEnd = w.End
		words = append(words, w)
	}

	return words, wf.DetectedLanguage, nil
}

type pitchWindow struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Frequency float64 `json:"frequency"`
}

// LoadPitch reads the pitch contour cache: fixed windows with an
// average frequency each, zero meaning unvoiced.
func LoadPitch(path string) ([]track.PitchSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pitch file: %w", err)
	}
	return ParsePitch(data)
}

// ParsePitch decodes the contour, stamping each sample at its window
// start. Unvoiced windows are kept so the quantizer sees the full span.
func ParsePitch(data []byte) ([]track.PitchSample, error) {
	var windows []pitchWindow
	if err := json.Unmarshal(data, &windows); err != nil {
		return nil, fmt.Errorf("%w: decode pitch contour: %v", usErr.ErrBadInput, err)
	}

	samples := make([]track.PitchSample, 0, len(windows))
	prev := math.Inf(-1)
	for i, w := range windows {
		if w.Start < prev {
			return nil, fmt.Errorf("%w: pitch window %d out of order", usErr.ErrBadInput, i)
		}
		prev = w.Start
		samples = append(samples, track.PitchSample{Time: w.Start, Frequency: w.Frequency})
	}
	return samples, nil
}

type headerFile struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	BPM        float64 `json:"bpm"`
	GapMS      *int    `json:"gap_ms"`
	Language   string  `json:"language"`
	Creator    string  `json:"creator"`
	Album      string  `json:"album"`
	Genre      string  `json:"genre"`
	Year       string  `json:"year"`
	Audio      string  `json:"audio"`
	Cover      string  `json:"cover"`
	Background string  `json:"background"`
	Video      string  `json:"video"`
}

// LoadHeader reads the metadata collaborator's header fields. A
// missing gap comes back as -1 so the pipeline can derive it from the
// first word.
func LoadHeader(path string) (track.Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return track.Header{}, fmt.Errorf("read header file: %w", err)
	}
	return ParseHeader(data)
}

// ParseHeader decodes the header JSON.
func ParseHeader(data []byte) (track.Header, error) {
	var hf headerFile
	if err := json.Unmarshal(data, &hf); err != nil {
		return track.Header{}, fmt.Errorf("%w: decode header: %v", usErr.ErrBadInput, err)
	}

	h := track.Header{
		Title:      hf.Title,
		Artist:     hf.Artist,
		BPM:        hf.BPM,
		GapMS:      -1,
		Language:   hf.Language,
		Creator:    hf.Creator,
		Album:      hf.Album,
		Genre:      hf.Genre,
		Year:       hf.Year,
		Audio:      hf.Audio,
		Cover:      hf.Cover,
		Background: hf.Background,
		Video:      hf.Video,
	}
	if hf.GapMS != nil {
		h.GapMS = *hf.GapMS
	}
	return h, nil
}

// DeriveGapMS computes the gap from the first word's start time, the
// original tool's fallback when no gap was supplied.
func DeriveGapMS(words []track.Word) int {
	if len(words) == 0 {
		return 0
	}
	return int(math.Round(words[0].Start * 1000))
}
