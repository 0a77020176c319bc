package ultrastar

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	usErr "github.com/clem2k/ultrastar-generator/internal/errors"
	"github.com/clem2k/ultrastar-generator/internal/track"
)

// Parse reads a rendered track back into header and phrases. It exists
// for round-trip verification and for inspecting generated files; the
// engine itself never consumes this format.
func Parse(text string) (track.Header, []track.Phrase, error) {
	var h track.Header
	var phrases []track.Phrase
	var current track.Phrase
	open := false
	terminated := false

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if terminated {
			return h, nil, fmt.Errorf("%w: line %d: content after terminator", usErr.ErrBadInput, lineNum)
		}

		switch {
		case strings.HasPrefix(line, "#"):
			if err := parseHeaderLine(&h, line); err != nil {
				return h, nil, fmt.Errorf("%w: line %d: %v", usErr.ErrBadInput, lineNum, err)
			}

		case line == "E":
			terminated = true

		case strings.HasPrefix(line, "- "):
			beat, err := strconv.Atoi(strings.TrimSpace(line[2:]))
			if err != nil {
				return h, nil, fmt.Errorf("%w: line %d: bad break beat: %v", usErr.ErrBadInput, lineNum, err)
			}
			if !open {
				return h, nil, fmt.Errorf("%w: line %d: break marker before any note", usErr.ErrBadInput, lineNum)
			}
			current.Break = &track.Note{Kind: track.KindPhraseBreak, StartBeat: beat}
			phrases = append(phrases, current)
			current = track.Phrase{}
			open = false

		default:
			n, err := parseNoteLine(line)
			if err != nil {
				return h, nil, fmt.Errorf("%w: line %d: %v", usErr.ErrBadInput, lineNum, err)
			}
			current.Notes = append(current.Notes, n)
			open = true
		}
	}
	if err := scanner.Err(); err != nil {
		return h, nil, fmt.Errorf("%w: %v", usErr.ErrBadInput, err)
	}
	if !terminated {
		return h, nil, fmt.Errorf("%w: missing E terminator", usErr.ErrBadInput)
	}
	if open {
		phrases = append(phrases, current)
	}

	return h, phrases, nil
}

func parseHeaderLine(h *track.Header, line string) error {
	key, value, found := strings.Cut(line[1:], ":")
	if !found {
		return fmt.Errorf("header line %q has no separator", line)
	}
	switch strings.ToUpper(key) {
	case "TITLE":
		h.Title = value
	case "ARTIST":
		h.Artist = value
	case "BPM":
		bpm, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
		if err != nil {
			return fmt.Errorf("bad bpm %q: %v", value, err)
		}
		h.BPM = bpm
	case "GAP":
		gap, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("bad gap %q: %v", value, err)
		}
		h.GapMS = gap
	case "LANGUAGE":
		h.Language = value
	case "CREATOR":
		h.Creator = value
	case "ALBUM":
		h.Album = value
	case "GENRE":
		h.Genre = value
	case "YEAR":
		h.Year = value
	case "MP3", "AUDIO":
		h.Audio = value
	case "COVER":
		h.Cover = value
	case "BACKGROUND":
		h.Background = value
	case "VIDEO":
		h.Video = value
	default:
		// Unknown directives pass through silently; players ignore
		// tags they do not understand and so do we.
	}
	return nil
}

func parseNoteLine(line string) (track.Note, error) {
	var n track.Note
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return n, fmt.Errorf("note line %q has %d fields, want at least 5", line, len(fields))
	}

	kind, ok := track.KindFromMarker(fields[0])
	if !ok || kind == track.KindPhraseBreak {
		return n, fmt.Errorf("unknown note marker %q", fields[0])
	}

	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return n, fmt.Errorf("bad start beat %q: %v", fields[1], err)
	}
	duration, err := strconv.Atoi(fields[2])
	if err != nil {
		return n, fmt.Errorf("bad duration %q: %v", fields[2], err)
	}
	pitchVal, err := strconv.Atoi(fields[3])
	if err != nil {
		return n, fmt.Errorf("bad pitch %q: %v", fields[3], err)
	}

	n.Kind = kind
	n.StartBeat = start
	n.DurationBeats = duration
	n.Pitch = pitchVal
	n.Text = strings.Join(fields[4:], " ")
	return n, nil
}
