package ultrastar

import (
	"fmt"
	"strconv"
	"strings"

	usErr "github.com/clem2k/ultrastar-generator/internal/errors"
	"github.com/clem2k/ultrastar-generator/internal/track"
)

// languageNames maps the ISO 639-1 codes the transcription collaborator
// emits to the full names UltraStar players expect in #LANGUAGE.
var languageNames = map[string]string{
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"it": "Italian",
}

// Writer serializes a validated header and phrase sequence into the
// UltraStar text format.
type Writer struct {
	maxWordsPerPhrase int
}

// NewWriter builds a writer enforcing the given phrase word limit.
func NewWriter(maxWordsPerPhrase int) *Writer {
	return &Writer{maxWordsPerPhrase: maxWordsPerPhrase}
}

// Render validates the track and emits the full file text. Structural
// violations return an error wrapping ErrAssemblyInvalid; cosmetic
// issues (an unknown language code) come back as warnings with the
// text still produced.
func (w *Writer) Render(h track.Header, phrases []track.Phrase) (string, []usErr.Warning, error) {
	if err := w.Validate(h, phrases); err != nil {
		return "", nil, err
	}

	var warnings []usErr.Warning
	var sb strings.Builder

	writeTag := func(key, value string) {
		if value != "" {
			sb.WriteString("#" + key + ":" + value + "\n")
		}
	}

	writeTag("TITLE", h.Title)
	writeTag("ARTIST", h.Artist)
	writeTag("BPM", strconv.FormatFloat(h.BPM, 'f', -1, 64))
	writeTag("GAP", strconv.Itoa(h.GapMS))
	writeTag("CREATOR", h.Creator)
	writeTag("ALBUM", h.Album)
	writeTag("GENRE", h.Genre)
	writeTag("YEAR", h.Year)
	if h.Language != "" {
		name, ok := languageNames[strings.ToLower(h.Language)]
		if !ok {
			name = h.Language
			warnings = append(warnings, usErr.Warnf(
				usErr.WarnUnknownLanguage, "", 0,
				"language code %q has no known full name, written verbatim", h.Language))
		}
		writeTag("LANGUAGE", name)
	}
	writeTag("MP3", h.Audio)
	writeTag("AUDIO", h.Audio)
	writeTag("COVER", h.Cover)
	writeTag("BACKGROUND", h.Background)
	writeTag("VIDEO", h.Video)

	for _, p := range phrases {
		for _, n := range p.Notes {
			fmt.Fprintf(&sb, "%s %d %d %d %s\n",
				n.Kind.Marker(), n.StartBeat, n.DurationBeats, n.Pitch, n.Text)
		}
		if p.Break != nil {
			fmt.Fprintf(&sb, "- %d\n", p.Break.StartBeat)
		}
	}
	sb.WriteString("E\n")

	return sb.String(), warnings, nil
}

// Validate checks the invariants the format requires before emission.
// An empty phrase list is valid: zero words produce an empty-but-valid
// file, not an error.
func (w *Writer) Validate(h track.Header, phrases []track.Phrase) error {
	if h.Title == "" {
		return &usErr.AssemblyError{Detail: "header missing title"}
	}
	if h.Artist == "" {
		return &usErr.AssemblyError{Detail: "header missing artist"}
	}
	if h.BPM <= 0 {
		return &usErr.AssemblyError{Detail: fmt.Sprintf("header bpm %v not positive", h.BPM)}
	}
	if h.GapMS < 0 {
		return &usErr.AssemblyError{Detail: fmt.Sprintf("header gap %dms negative", h.GapMS)}
	}

	line := 0
	prevEnd := 0
	for pi, p := range phrases {
		if len(p.Notes) == 0 {
			return &usErr.AssemblyError{Line: line, Detail: fmt.Sprintf("phrase %d has no sung notes", pi)}
		}
		if w.maxWordsPerPhrase > 0 && len(p.Notes) > w.maxWordsPerPhrase {
			return &usErr.AssemblyError{Line: line,
				Detail: fmt.Sprintf("phrase %d holds %d notes, limit is %d", pi, len(p.Notes), w.maxWordsPerPhrase)}
		}
		for _, n := range p.Notes {
			line++
			if n.Kind == track.KindPhraseBreak {
				return &usErr.AssemblyError{Line: line, Detail: "phrase break listed as sung note"}
			}
			if n.DurationBeats <= 0 {
				return &usErr.AssemblyError{Line: line,
					Detail: fmt.Sprintf("note %q has non-positive duration %d", n.Text, n.DurationBeats)}
			}
			if n.Text == "" {
				return &usErr.AssemblyError{Line: line, Detail: "sung note with empty text"}
			}
			if n.StartBeat < prevEnd {
				return &usErr.AssemblyError{Line: line,
					Detail: fmt.Sprintf("note %q at beat %d overlaps previous note ending at %d", n.Text, n.StartBeat, prevEnd)}
			}
			prevEnd = n.EndBeat()
		}
		if p.Break == nil && pi != len(phrases)-1 {
			return &usErr.AssemblyError{Line: line, Detail: fmt.Sprintf("phrase %d missing break marker", pi)}
		}
		if p.Break != nil {
			line++
		}
	}
	return nil
}
