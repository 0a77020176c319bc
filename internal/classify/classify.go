package classify

import "github.com/clem2k/ultrastar-generator/internal/track"

// Classifier decides the kind of a sung note. Golden and freestyle
// assignment is not derivable from word timing and pitch alone, so the
// engine ships a fixed default and leaves smarter strategies to
// implementations of this interface.
type Classifier interface {
	Kind(word track.Word, pitched bool) track.NoteKind
}

// Normal classifies every note as a normal sung note.
type Normal struct{}

func (Normal) Kind(track.Word, bool) track.NoteKind {
	return track.KindNormal
}
