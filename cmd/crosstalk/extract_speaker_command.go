package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"crosstalk/internal/speakeraudio"
)

type extractResult struct {
	Success    bool                `json:"success"`
	OutputPath string              `json:"output_path,omitempty"`
	Duration   float64             `json:"duration,omitempty"`
	Segments   int                 `json:"segments,omitempty"`
	Clips      []speakeraudio.Clip `json:"clips,omitempty"`
}

func newExtractSpeakerCommand(ctx *commandContext) *cobra.Command {
	var speakerFlag string
	var audioFlag string
	var outputFlag string
	var fromJSONFlag string
	var perSentenceFlag bool

	cmd := &cobra.Command{
		Use:   "extract-speaker [analysis-id]",
		Short: "Extract one speaker's audio from the source recording",
		Long: `Cuts every segment attributed to a speaker out of the source recording.
By default the segments are concatenated into a single file; with
--per-sentence each segment becomes its own clip, paired with its text.

The source recording defaults to the audio path recorded with the saved
analysis; use --audio to override it or when reading from --from-json.
Extraction is all-or-nothing: the first failing segment aborts the run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speaker := strings.TrimSpace(speakerFlag)
			if speaker == "" {
				return errors.New("--speaker is required")
			}

			fromJSON := strings.TrimSpace(fromJSONFlag)
			if fromJSON == "" && len(args) == 0 {
				return errors.New("an analysis id or --from-json file is required")
			}

			audioPath := strings.TrimSpace(audioFlag)
			if fromJSON == "" && len(args) > 0 && audioPath == "" {
				db, err := ctx.openStore()
				if err != nil {
					return writeFailure(cmd, err)
				}
				analysis, err := db.GetAnalysis(cmd.Context(), strings.TrimSpace(args[0]))
				db.Close()
				if err != nil {
					return writeFailure(cmd, err)
				}
				audioPath = analysis.AudioPath
			}
			if audioPath == "" {
				return errors.New("--audio is required with --from-json")
			}

			st, err := resolveSpeakerTranscript(cmd, ctx, args, fromJSONFlag)
			if err != nil {
				return writeFailure(cmd, err)
			}
			segments, err := st.SpeakerSegments(speaker)
			if err != nil {
				return writeFailure(cmd, err)
			}

			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			logger := ctx.loggerOrDiscard()
			logger.Info("speaker extraction started",
				"component", "extract",
				"speaker", speaker,
				"segments", len(segments),
				"per_sentence", perSentenceFlag)

			if perSentenceFlag {
				dir := strings.TrimSpace(outputFlag)
				if dir == "" {
					dir, err = defaultOutputPath(ctx, args, speaker+"_clips")
					if err != nil {
						return writeFailure(cmd, err)
					}
				}
				clips, err := speakeraudio.ExtractPerSentence(cmd.Context(), runner, audioPath, segments, dir)
				if err != nil {
					return writeFailure(cmd, err)
				}
				return writeJSON(cmd, extractResult{Success: true, OutputPath: dir, Segments: len(clips), Clips: clips})
			}

			output := strings.TrimSpace(outputFlag)
			if output == "" {
				name := speaker + filepath.Ext(audioPath)
				if filepath.Ext(audioPath) == "" {
					name = speaker + ".mp3"
				}
				output, err = defaultOutputPath(ctx, args, name)
				if err != nil {
					return writeFailure(cmd, err)
				}
			}

			result, err := speakeraudio.ExtractConcatenated(cmd.Context(), runner, audioPath, segments, output)
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, extractResult{
				Success:    true,
				OutputPath: result.OutputPath,
				Duration:   result.Duration,
				Segments:   result.Segments,
			})
		},
	}

	cmd.Flags().StringVar(&speakerFlag, "speaker", "", "Speaker label, e.g. SPEAKER_00")
	cmd.Flags().StringVar(&audioFlag, "audio", "", "Source recording path (defaults to the saved analysis audio)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (or directory with --per-sentence)")
	cmd.Flags().StringVar(&fromJSONFlag, "from-json", "", "Read the analysis from a JSON file instead of the database")
	cmd.Flags().BoolVar(&perSentenceFlag, "per-sentence", false, "Write one clip per segment instead of a concatenated track")
	_ = cmd.MarkFlagRequired("speaker")
	return cmd
}
