package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clem2k/ultrastar-generator/internal/config"
	"github.com/clem2k/ultrastar-generator/internal/midiexport"
	"github.com/clem2k/ultrastar-generator/internal/pipeline"
	"github.com/clem2k/ultrastar-generator/internal/server"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ultrastar-gen",
	Short: "Assemble UltraStar karaoke tracks from aligned lyrics and pitch",
	Long: `ultrastar-gen reconciles a word-aligned transcript, a pitch contour
and track metadata into an UltraStar text file.

Pipeline: words + pitch + header → phrases → notes → UltraStar track`,
	Version: version,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an UltraStar track from collaborator files",
	Long: `Generate an UltraStar track from the three collaborator files:
the word list (transcription), the pitch contour and the header metadata.

Examples:
  ultrastar-gen generate --words words.json --pitch pitch.json --header header.json
  ultrastar-gen generate -w words.json -p pitch.json -H header.json -o track.txt --midi`,
	RunE: runGenerate,
}

var midiCmd = &cobra.Command{
	Use:   "midi",
	Short: "Render only the SMF preview of a track",
	Long: `Run the full synchronization but write just the MIDI preview of the
note line, for auditioning a reconstruction before generating the track.

Example:
  ultrastar-gen midi -w words.json -p pitch.json -H header.json -o preview.mid`,
	RunE: runMidi,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API",
	Long: `Start the HTTP API that accepts synchronization jobs and returns
rendered tracks with their warnings.

Example:
  ultrastar-gen serve --port 8080`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ultrastar-gen %s\n", version)
	},
}

var (
	flagWords   string
	flagPitch   string
	flagHeader  string
	flagOutput  string
	flagMIDI    bool
	flagVerbose bool
	flagPort    int
)

func init() {
	generateCmd.Flags().StringVarP(&flagWords, "words", "w", "", "word list JSON from the transcription collaborator (required)")
	generateCmd.Flags().StringVarP(&flagPitch, "pitch", "p", "", "pitch contour JSON from the pitch collaborator (required)")
	generateCmd.Flags().StringVarP(&flagHeader, "header", "H", "", "header metadata JSON (required)")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output path (default \"<Artist> - <Title>.txt\")")
	generateCmd.Flags().BoolVar(&flagMIDI, "midi", false, "also write an SMF preview of the note line")
	generateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose progress output")
	generateCmd.MarkFlagRequired("words")
	generateCmd.MarkFlagRequired("pitch")
	generateCmd.MarkFlagRequired("header")

	midiCmd.Flags().StringVarP(&flagWords, "words", "w", "", "word list JSON from the transcription collaborator (required)")
	midiCmd.Flags().StringVarP(&flagPitch, "pitch", "p", "", "pitch contour JSON from the pitch collaborator (required)")
	midiCmd.Flags().StringVarP(&flagHeader, "header", "H", "", "header metadata JSON (required)")
	midiCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output path (default \"<Artist> - <Title>.mid\")")
	midiCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose progress output")
	midiCmd.MarkFlagRequired("words")
	midiCmd.MarkFlagRequired("pitch")
	midiCmd.MarkFlagRequired("header")

	serveCmd.Flags().IntVar(&flagPort, "port", 0, "listen port (overrides USG_SERVER_PORT)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(midiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	orch := pipeline.NewOrchestrator(cfg, os.Stdout, flagVerbose)
	result, err := orch.RunFiles(flagWords, flagPitch, flagHeader)
	if err != nil {
		orch.Progress().Error(err)
		return err
	}

	for _, warn := range result.Warnings {
		orch.Progress().Warning("%s", warn)
	}

	outPath := flagOutput
	if outPath == "" {
		outPath = defaultOutputPath(result.Header.Artist, result.Header.Title)
	}
	if err := os.WriteFile(outPath, []byte(result.Text), 0644); err != nil {
		return fmt.Errorf("write track: %w", err)
	}

	if flagMIDI {
		midiPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".mid"
		if err := midiexport.WriteFile(midiPath, result.Phrases, result.Header.BPM, cfg.Beat.Resolution); err != nil {
			return fmt.Errorf("write midi preview: %w", err)
		}
		fmt.Printf("MIDI preview written to %s\n", midiPath)
	}

	orch.Progress().Done(outPath)
	return nil
}

func runMidi(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	orch := pipeline.NewOrchestrator(cfg, os.Stdout, flagVerbose)
	result, err := orch.RunFiles(flagWords, flagPitch, flagHeader)
	if err != nil {
		orch.Progress().Error(err)
		return err
	}

	for _, warn := range result.Warnings {
		orch.Progress().Warning("%s", warn)
	}

	outPath := flagOutput
	if outPath == "" {
		txt := defaultOutputPath(result.Header.Artist, result.Header.Title)
		outPath = strings.TrimSuffix(txt, filepath.Ext(txt)) + ".mid"
	}
	if err := midiexport.WriteFile(outPath, result.Phrases, result.Header.BPM, cfg.Beat.Resolution); err != nil {
		return fmt.Errorf("write midi preview: %w", err)
	}

	orch.Progress().Done(outPath)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if flagPort > 0 {
		cfg.Server.Port = flagPort
	}
	return server.New(cfg).Start(context.Background())
}

// defaultOutputPath names the file the way song folders are named,
// with path separators made safe.
func defaultOutputPath(artist, title string) string {
	clean := func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, "/", "-"), string(filepath.Separator), "-")
	}
	if artist == "" && title == "" {
		return "track.txt"
	}
	return fmt.Sprintf("%s - %s.txt", clean(artist), clean(title))
}
