package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"crosstalk/internal/subtitles"
)

type exportResult struct {
	Success bool     `json:"success"`
	Files   []string `json:"files"`
	Cues    int      `json:"cues,omitempty"`
}

func newExportSRTCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var fromJSONFlag string

	cmd := &cobra.Command{
		Use:   "export-srt [analysis-id]",
		Short: "Render a saved analysis as an SRT subtitle file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := resolveSpeakerTranscript(cmd, ctx, args, fromJSONFlag)
			if err != nil {
				return writeFailure(cmd, err)
			}

			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output, err = defaultOutputPath(ctx, args, "transcript.srt")
				if err != nil {
					return writeFailure(cmd, err)
				}
			}

			lines := subtitles.FromAnnotated(st.Segments)
			if err := subtitles.WriteFile(output, lines); err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, exportResult{Success: true, Files: []string{output}, Cues: len(lines)})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output .srt path")
	cmd.Flags().StringVar(&fromJSONFlag, "from-json", "", "Read the analysis from a JSON file instead of the database")
	return cmd
}

func newExportSpeakerCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var fromJSONFlag string
	var speakerFlag string

	cmd := &cobra.Command{
		Use:   "export-speaker [analysis-id]",
		Short: "Render one speaker's segments as an SRT subtitle file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speaker := strings.TrimSpace(speakerFlag)
			if speaker == "" {
				return errors.New("--speaker is required")
			}

			st, err := resolveSpeakerTranscript(cmd, ctx, args, fromJSONFlag)
			if err != nil {
				return writeFailure(cmd, err)
			}

			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output, err = defaultOutputPath(ctx, args, speaker+".srt")
				if err != nil {
					return writeFailure(cmd, err)
				}
			}

			if err := subtitles.WriteSpeaker(st, speaker, output); err != nil {
				return writeFailure(cmd, err)
			}
			segments, _ := st.SpeakerSegments(speaker)
			return writeJSON(cmd, exportResult{Success: true, Files: []string{output}, Cues: len(segments)})
		},
	}

	cmd.Flags().StringVar(&speakerFlag, "speaker", "", "Speaker label, e.g. SPEAKER_00")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output .srt path")
	cmd.Flags().StringVar(&fromJSONFlag, "from-json", "", "Read the analysis from a JSON file instead of the database")
	_ = cmd.MarkFlagRequired("speaker")
	return cmd
}

func newExportSpeakersCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string
	var baseNameFlag string
	var fromJSONFlag string

	cmd := &cobra.Command{
		Use:   "export-speakers [analysis-id]",
		Short: "Render every speaker's segments as separate SRT files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := resolveSpeakerTranscript(cmd, ctx, args, fromJSONFlag)
			if err != nil {
				return writeFailure(cmd, err)
			}

			dir := strings.TrimSpace(dirFlag)
			if dir == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return writeFailure(cmd, err)
				}
				dir = cfg.Paths.OutputDir
			}

			files, err := subtitles.WriteAllSpeakers(st, dir, strings.TrimSpace(baseNameFlag))
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, exportResult{Success: true, Files: files})
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Output directory for the per-speaker files")
	cmd.Flags().StringVar(&baseNameFlag, "base-name", "", "File name prefix, default \"speaker\"")
	cmd.Flags().StringVar(&fromJSONFlag, "from-json", "", "Read the analysis from a JSON file instead of the database")
	return cmd
}

// defaultOutputPath places name under the configured output dir, prefixed
// with the analysis id when one was given.
func defaultOutputPath(ctx *commandContext, args []string, name string) (string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		name = strings.TrimSpace(args[0]) + "_" + name
	}
	return filepath.Join(cfg.Paths.OutputDir, name), nil
}
