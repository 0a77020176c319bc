package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrInvalidTimeBase = errors.New("invalid time base")
	ErrEmptyInput      = errors.New("no words to assemble")
	ErrAssemblyInvalid = errors.New("assembled track violates format invariants")
	ErrBadInput        = errors.New("input file malformed")
)

// WarningCode identifies a recoverable condition absorbed during a run
type WarningCode string

const (
	WarnPitchUnavailable     WarningCode = "pitch_unavailable"
	WarnMonotonicityAdjusted WarningCode = "monotonicity_adjusted"
	WarnEmptyInput           WarningCode = "empty_input"
	WarnUnknownLanguage      WarningCode = "unknown_language"
)

// Warning records a per-word or per-phrase issue that was recovered
// locally. Warnings ride on the run result; they never end up inside
// the generated file.
type Warning struct {
	Code WarningCode
	Word string // word text, when the issue is word-local
	Beat int    // beat position, when known
	Msg  string
}

func (w Warning) String() string {
	if w.Word != "" {
		return fmt.Sprintf("%s (%q @ beat %d): %s", w.Code, w.Word, w.Beat, w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Msg)
}

// Warnf builds a Warning with a formatted message
func Warnf(code WarningCode, word string, beat int, format string, args ...any) Warning {
	return Warning{Code: code, Word: word, Beat: beat, Msg: fmt.Sprintf(format, args...)}
}

// AssemblyError wraps ErrAssemblyInvalid with the location of the
// structural violation the writer found.
type AssemblyError struct {
	Line   int
	Detail string
}

func (e *AssemblyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v: line %d: %s", ErrAssemblyInvalid, e.Line, e.Detail)
	}
	return fmt.Sprintf("%v: %s", ErrAssemblyInvalid, e.Detail)
}

func (e *AssemblyError) Unwrap() error {
	return ErrAssemblyInvalid
}
