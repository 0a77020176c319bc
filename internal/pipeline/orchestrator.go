package pipeline

import (
	"fmt"
	"io"

	"github.com/clem2k/ultrastar-generator/internal/assemble"
	"github.com/clem2k/ultrastar-generator/internal/classify"
	"github.com/clem2k/ultrastar-generator/internal/config"
	usErr "github.com/clem2k/ultrastar-generator/internal/errors"
	"github.com/clem2k/ultrastar-generator/internal/input"
	"github.com/clem2k/ultrastar-generator/internal/phrase"
	"github.com/clem2k/ultrastar-generator/internal/pitch"
	"github.com/clem2k/ultrastar-generator/internal/progress"
	"github.com/clem2k/ultrastar-generator/internal/timebase"
	"github.com/clem2k/ultrastar-generator/internal/track"
	"github.com/clem2k/ultrastar-generator/internal/ultrastar"
)

// Result contains everything a synchronization run produced. The
// rendered text reflects the best achievable reconstruction; every
// locally-recovered issue rides in Warnings.
type Result struct {
	Text     string
	Header   track.Header
	Phrases  []track.Phrase
	Warnings []usErr.Warning

	WordCount   int
	NoteCount   int
	PhraseCount int
}

// Orchestrator coordinates one track's synchronization run. Each run
// builds fresh TimeBase and quantizer instances, so orchestrators are
// safe to share across concurrent tracks.
type Orchestrator struct {
	cfg        config.Config
	classifier classify.Classifier
	progress   *progress.Reporter
}

// NewOrchestrator creates a pipeline orchestrator. out receives
// progress reporting; pass io.Discard to run silently.
func NewOrchestrator(cfg config.Config, out io.Writer, verbose bool) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		classifier: classify.Normal{},
		progress:   progress.NewReporter(out, verbose),
	}
}

// SetClassifier swaps the note-kind strategy. The default classifies
// every note as normal.
func (o *Orchestrator) SetClassifier(c classify.Classifier) {
	if c != nil {
		o.classifier = c
	}
}

// Progress exposes the run's reporter so callers can emit their own
// warnings and the final summary through the same channel.
func (o *Orchestrator) Progress() *progress.Reporter {
	return o.progress
}

// RunFiles loads the three collaborator files and runs the pipeline.
func (o *Orchestrator) RunFiles(wordsPath, pitchPath, headerPath string) (*Result, error) {
	o.progress.StartStage(progress.StageLoad)

	words, lang, err := input.LoadWords(wordsPath)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	samples, err := input.LoadPitch(pitchPath)
	if err != nil {
		return nil, fmt.Errorf("load pitch: %w", err)
	}
	header, err := input.LoadHeader(headerPath)
	if err != nil {
		return nil, fmt.Errorf("load header: %w", err)
	}
	if header.Language == "" {
		header.Language = lang
	}
	o.progress.StageComplete("%d words, %d pitch samples", len(words), len(samples))

	return o.Run(words, samples, header)
}

// Run executes the synchronization for one track: segment the words,
// assemble notes against the pitch contour, render the file text.
func (o *Orchestrator) Run(words []track.Word, samples []track.PitchSample, header track.Header) (*Result, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	if header.Creator == "" {
		header.Creator = o.cfg.Output.Creator
	}
	if header.GapMS < 0 {
		header.GapMS = input.DeriveGapMS(words)
		o.progress.Update("gap derived from first word: %dms", header.GapMS)
	}

	tb, err := timebase.New(header.BPM, header.GapMS, o.cfg.Beat.Resolution)
	if err != nil {
		return nil, err
	}

	var warnings []usErr.Warning

	o.progress.StartStage(progress.StageSegment)
	segmenter := phrase.NewSegmenter(o.cfg, tb)
	spans := segmenter.Segment(words)
	if len(spans) == 0 {
		warnings = append(warnings, usErr.Warnf(
			usErr.WarnEmptyInput, "", 0, "no words supplied, producing an empty track"))
	}
	o.progress.StageComplete("%d phrases", len(spans))

	o.progress.StartStage(progress.StageAssemble)
	quantizer := pitch.NewQuantizer(o.cfg.Pitch.ReferenceHz, o.cfg.Pitch.Min, o.cfg.Pitch.Max)
	assembler := assemble.New(tb, quantizer, o.classifier, o.cfg.Pitch.Neutral)
	phrases, assembleWarnings := assembler.Assemble(spans, samples)
	warnings = append(warnings, assembleWarnings...)
	o.progress.StageComplete("%d notes, %d warnings", countNotes(phrases), len(assembleWarnings))

	o.progress.StartStage(progress.StageWrite)
	writer := ultrastar.NewWriter(o.cfg.Phrase.MaxWords)
	text, writeWarnings, err := writer.Render(header, phrases)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, writeWarnings...)

	return &Result{
		Text:        text,
		Header:      header,
		Phrases:     phrases,
		Warnings:    warnings,
		WordCount:   len(words),
		NoteCount:   countNotes(phrases),
		PhraseCount: len(phrases),
	}, nil
}

func countNotes(phrases []track.Phrase) int {
	n := 0
	for _, p := range phrases {
		n += len(p.Notes)
	}
	return n
}
