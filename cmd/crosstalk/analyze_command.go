package main

import (
	"github.com/spf13/cobra"

	"crosstalk/internal/diarization"
	"crosstalk/internal/stt"
	"crosstalk/internal/transcript"
)

type analyzeResult struct {
	Success    bool                          `json:"success"`
	AnalysisID string                        `json:"analysis_id,omitempty"`
	Language   string                        `json:"language"`
	FullText   string                        `json:"full_text"`
	Segments   []transcript.Segment          `json:"segments,omitempty"`
	Annotated  []transcript.AnnotatedSegment `json:"annotated_segments,omitempty"`
	Speakers   []string                      `json:"speakers,omitempty"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var backendFlag string
	var modelFlag string
	var languageFlag string
	var diarizeFlag bool
	var speakersFlag int
	var minSpeakersFlag int
	var maxSpeakersFlag int
	var noSaveFlag bool

	cmd := &cobra.Command{
		Use:   "analyze <audio-file>",
		Short: "Transcribe an audio file, optionally with speaker attribution",
		Long: `Transcribes an audio file with the configured speech-to-text backend.
With --diarize the transcript is fused with pyannote speaker turns into a
speaker-attributed transcript, which is saved to the analysis database so
export and extraction commands can reference it by id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerOrDiscard()

			backendName := cfg.Transcription.Backend
			if backendFlag != "" {
				backendName = backendFlag
			}
			model := cfg.Transcription.Model
			if modelFlag != "" {
				model = modelFlag
			}
			language := cfg.Transcription.Language
			if languageFlag != "" {
				language = languageFlag
			}

			sttCfg, err := ctx.sttConfig()
			if err != nil {
				return writeFailure(cmd, err)
			}
			backend, err := stt.Lookup(sttCfg, backendName)
			if err != nil {
				return writeFailure(cmd, err)
			}

			logger.Info("transcription started",
				"component", "analyze",
				"backend", backend.Name(),
				"model", model,
				"audio", args[0])

			tr, err := backend.Transcribe(cmd.Context(), stt.Request{
				AudioPath: args[0],
				Model:     model,
				Language:  language,
			})
			if err != nil {
				return writeFailure(cmd, err)
			}

			if !diarizeFlag {
				return writeJSON(cmd, analyzeResult{
					Success:  true,
					Language: tr.Language,
					FullText: tr.Text,
					Segments: tr.Segments,
				})
			}

			hint := diarization.Hint{
				Exact: cfg.Diarization.Speakers,
				Min:   cfg.Diarization.MinSpeakers,
				Max:   cfg.Diarization.MaxSpeakers,
			}
			if speakersFlag > 0 {
				hint = diarization.Hint{Exact: speakersFlag}
			}
			if minSpeakersFlag > 0 || maxSpeakersFlag > 0 {
				hint = diarization.Hint{Min: minSpeakersFlag, Max: maxSpeakersFlag}
			}

			diarizer := diarization.NewPyannote(cfg.Tools.PyannoteAudio, cfg.Diarization.HuggingFaceToken)
			turns, err := diarizer.Diarize(cmd.Context(), diarization.Request{
				AudioPath: args[0],
				Hint:      hint,
			})
			if err != nil {
				return writeFailure(cmd, err)
			}

			fused, err := transcript.Align(tr, turns)
			if err != nil {
				return writeFailure(cmd, err)
			}

			result := analyzeResult{
				Success:   true,
				Language:  fused.Language,
				FullText:  fused.FullText,
				Annotated: fused.Segments,
				Speakers:  fused.Speakers,
			}

			if !noSaveFlag {
				db, err := ctx.openStore()
				if err != nil {
					return writeFailure(cmd, err)
				}
				defer db.Close()
				id, err := db.SaveAnalysis(cmd.Context(), args[0], fused)
				if err != nil {
					return writeFailure(cmd, err)
				}
				result.AnalysisID = id
				logger.Info("analysis saved", "component", "analyze", "id", id, "speakers", len(fused.Speakers))
			}

			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&backendFlag, "backend", "", "Speech-to-text backend (whispercpp, whisperx, faster-whisper)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Model name, e.g. base or large-v3")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Force a language instead of auto-detection")
	cmd.Flags().BoolVar(&diarizeFlag, "diarize", false, "Attribute segments to speakers via diarization")
	cmd.Flags().IntVar(&speakersFlag, "speakers", 0, "Exact speaker count, when known")
	cmd.Flags().IntVar(&minSpeakersFlag, "min-speakers", 0, "Minimum speaker count hint")
	cmd.Flags().IntVar(&maxSpeakersFlag, "max-speakers", 0, "Maximum speaker count hint")
	cmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "Skip saving the analysis to the database")

	return cmd
}
