package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"crosstalk/internal/media"
	"crosstalk/internal/subtitles"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Media helper operations backed by ffmpeg",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newMediaInfoCommand(ctx))
	cmd.AddCommand(newMediaConvertCommand(ctx))
	cmd.AddCommand(newMediaBatchConvertCommand(ctx))
	cmd.AddCommand(newMediaMergeCommand(ctx))
	cmd.AddCommand(newMediaMuxCommand(ctx))
	cmd.AddCommand(newMediaExtractAudioCommand(ctx))
	cmd.AddCommand(newMediaTrimCommand(ctx))
	cmd.AddCommand(newMediaCompressCommand(ctx))
	return cmd
}

type mediaInfoResult struct {
	Success bool        `json:"success"`
	Info    *media.Info `json:"info"`
}

func newMediaInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Inspect a media file with ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			info, err := runner.Probe(cmd.Context(), args[0])
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, mediaInfoResult{Success: true, Info: info})
		},
	}
}

type mediaConvertResult struct {
	Success    bool   `json:"success"`
	OutputPath string `json:"output_path"`
	SizeBytes  int64  `json:"size_bytes"`
}

func convertOptions(quality int, bitrate string) media.ConvertOptions {
	return media.ConvertOptions{AudioQuality: quality, AudioBitrate: bitrate}
}

func newMediaConvertCommand(ctx *commandContext) *cobra.Command {
	var qualityFlag int
	var bitrateFlag string

	cmd := &cobra.Command{
		Use:   "convert <file> <format>",
		Short: "Convert a media file to another format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			result, err := runner.Convert(cmd.Context(), args[0], args[1], convertOptions(qualityFlag, bitrateFlag))
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, mediaConvertResult{Success: true, OutputPath: result.OutputPath, SizeBytes: result.SizeBytes})
		},
	}

	cmd.Flags().IntVar(&qualityFlag, "quality", 0, "VBR quality for mp3/ogg output")
	cmd.Flags().StringVar(&bitrateFlag, "bitrate", "", "Audio bitrate for m4a output, e.g. 192k")
	return cmd
}

type mediaBatchResult struct {
	Success bool `json:"success"`
	*media.BatchReport
}

func newMediaBatchConvertCommand(ctx *commandContext) *cobra.Command {
	var qualityFlag int
	var bitrateFlag string

	cmd := &cobra.Command{
		Use:   "batch-convert <format> <file>...",
		Short: "Convert several files, continuing past individual failures",
		Long: `Converts each input independently. A failing file is recorded in the
per-item results and the batch keeps going; success is reported only when
every file converted.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			report := runner.BatchConvert(cmd.Context(), args[1:], args[0], convertOptions(qualityFlag, bitrateFlag))
			return writeJSON(cmd, mediaBatchResult{Success: report.AllSucceeded(), BatchReport: report})
		},
	}

	cmd.Flags().IntVar(&qualityFlag, "quality", 0, "VBR quality for mp3/ogg output")
	cmd.Flags().StringVar(&bitrateFlag, "bitrate", "", "Audio bitrate for m4a output, e.g. 192k")
	return cmd
}

type mediaMergeResult struct {
	Success    bool   `json:"success"`
	OutputPath string `json:"output_path"`
	Inputs     int    `json:"inputs"`
}

func newMediaMergeCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "merge <file>...",
		Short: "Concatenate media files with stream copy",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := strings.TrimSpace(outputFlag)
			if output == "" {
				return errors.New("--output is required")
			}
			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			result, err := runner.Merge(cmd.Context(), args, output)
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, mediaMergeResult{Success: true, OutputPath: result.OutputPath, Inputs: result.MergedCount})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Merged output path")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newMediaMuxCommand(ctx *commandContext) *cobra.Command {
	var audioFlags []string
	var subtitleFlags []string
	var outputFlag string
	var videoCodecFlag string
	var audioCodecFlag string
	var subtitleCodecFlag string

	cmd := &cobra.Command{
		Use:   "mux [video-file]",
		Short: "Combine video, audio, and subtitle streams into one container",
		Long: `Muxes streams from separate files into a single container, for example a
video track with a replacement audio track and per-speaker subtitles. The
video file is optional. Streams are copied unless a codec is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video := ""
			if len(args) > 0 {
				video = args[0]
			}
			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			result, err := runner.Mux(cmd.Context(), video, audioFlags, subtitleFlags, strings.TrimSpace(outputFlag), media.MuxOptions{
				VideoCodec:    videoCodecFlag,
				AudioCodec:    audioCodecFlag,
				SubtitleCodec: subtitleCodecFlag,
			})
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, mediaConvertResult{Success: true, OutputPath: result.OutputPath, SizeBytes: result.SizeBytes})
		},
	}

	cmd.Flags().StringArrayVar(&audioFlags, "audio", nil, "Audio track to mux in (repeatable)")
	cmd.Flags().StringArrayVar(&subtitleFlags, "subtitle", nil, "Subtitle track to mux in (repeatable)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Muxed output path")
	cmd.Flags().StringVar(&videoCodecFlag, "video-codec", "", "Video codec, default stream copy")
	cmd.Flags().StringVar(&audioCodecFlag, "audio-codec", "", "Audio codec, default stream copy")
	cmd.Flags().StringVar(&subtitleCodecFlag, "subtitle-codec", "", "Subtitle codec, default stream copy")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newMediaExtractAudioCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "extract-audio <file>",
		Short: "Extract the audio track from a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			result, err := runner.ExtractAudio(cmd.Context(), args[0], formatFlag, media.ConvertOptions{})
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, mediaConvertResult{Success: true, OutputPath: result.OutputPath, SizeBytes: result.SizeBytes})
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "mp3", "Audio output format")
	return cmd
}

func newMediaTrimCommand(ctx *commandContext) *cobra.Command {
	var startFlag string
	var endFlag string

	cmd := &cobra.Command{
		Use:   "trim <file>",
		Short: "Cut a time range out of a media file with stream copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimeArg(startFlag)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			end, err := parseTimeArg(endFlag)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			result, err := runner.Trim(cmd.Context(), args[0], start, end)
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, mediaConvertResult{Success: true, OutputPath: result.OutputPath, SizeBytes: result.SizeBytes})
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "0", "Start time, seconds or HH:MM:SS,mmm")
	cmd.Flags().StringVar(&endFlag, "end", "", "End time, seconds or HH:MM:SS,mmm")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

type mediaCompressResult struct {
	Success bool `json:"success"`
	*media.CompressResult
}

func newMediaCompressCommand(ctx *commandContext) *cobra.Command {
	var crfFlag int
	var presetFlag string
	var targetSizeFlag float64
	var resolutionFlag string

	cmd := &cobra.Command{
		Use:   "compress <file>",
		Short: "Re-encode a video to shrink it",
		Long: `Compresses a video with x264 into a "_compressed" sibling file. By default
the encode is constant-quality (CRF); with --target-size the video bitrate
is derived from the file's duration so the output lands near that size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.mediaRunner()
			if err != nil {
				return writeFailure(cmd, err)
			}
			result, err := runner.Compress(cmd.Context(), args[0], media.CompressOptions{
				CRF:          crfFlag,
				Preset:       presetFlag,
				TargetSizeMB: targetSizeFlag,
				Resolution:   resolutionFlag,
			})
			if err != nil {
				return writeFailure(cmd, err)
			}
			return writeJSON(cmd, mediaCompressResult{Success: true, CompressResult: result})
		},
	}

	cmd.Flags().IntVar(&crfFlag, "crf", 0, "Constant rate factor, default 28")
	cmd.Flags().StringVar(&presetFlag, "preset", "", "x264 preset, default medium")
	cmd.Flags().Float64Var(&targetSizeFlag, "target-size", 0, "Target output size in MB")
	cmd.Flags().StringVar(&resolutionFlag, "resolution", "", "Scale the video, e.g. 1280:720")
	return cmd
}

// parseTimeArg accepts plain seconds or a subtitle-style timestamp.
func parseTimeArg(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return seconds, nil
	}
	return subtitles.ParseTimestamp(value)
}
