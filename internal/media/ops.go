package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"crosstalk/internal/faults"
)

// ConvertOptions tune format conversion. Zero values pick sensible defaults
// per target format.
type ConvertOptions struct {
	AudioQuality int    // VBR quality for mp3/ogg
	AudioBitrate string // e.g. "192k" for m4a
	CRF          int    // video constant rate factor
	Preset       string // x264 preset
}

// ConvertResult reports one finished conversion.
type ConvertResult struct {
	OutputPath string `json:"output_path"`
	SizeBytes  int64  `json:"size_bytes"`
}

// Convert transcodes input into targetFormat next to the input file, picking
// a unique output name when the default is taken.
func (r *Runner) Convert(ctx context.Context, input, targetFormat string, opts ConvertOptions) (*ConvertResult, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, faults.Wrap(faults.ErrInputNotFound, "media", "convert", input, err)
	}
	targetFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(targetFormat)), ".")
	if targetFormat == "" {
		return nil, faults.Wrap(faults.ErrValidation, "media", "convert", "target format required", nil)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	output := UniqueOutputPath(filepath.Join(filepath.Dir(input), base+"."+targetFormat))

	args := append([]string{"-y", "-hide_banner", "-i", input}, formatArgs(targetFormat, opts)...)
	args = append(args, output)
	if err := r.FFmpeg(ctx, args...); err != nil {
		return nil, err
	}
	return statResult(output)
}

// ExtractAudio pulls the audio track out of a container into outputFormat.
func (r *Runner) ExtractAudio(ctx context.Context, input, outputFormat string, opts ConvertOptions) (*ConvertResult, error) {
	if outputFormat == "" {
		outputFormat = "mp3"
	}
	return r.Convert(ctx, input, outputFormat, opts)
}

// Trim copies [startSec, endSec) of input to a "<name>_trimmed" sibling file
// without re-encoding.
func (r *Runner) Trim(ctx context.Context, input string, startSec, endSec float64) (*ConvertResult, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, faults.Wrap(faults.ErrInputNotFound, "media", "trim", input, err)
	}
	if endSec <= startSec || startSec < 0 {
		return nil, faults.Wrap(faults.ErrValidation, "media", "trim", fmt.Sprintf("invalid range [%.3f, %.3f)", startSec, endSec), nil)
	}
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext)
	output := UniqueOutputPath(filepath.Join(filepath.Dir(input), base+"_trimmed"+ext))

	err := r.FFmpeg(ctx,
		"-y", "-hide_banner",
		"-i", input,
		"-ss", formatSeconds(startSec),
		"-to", formatSeconds(endSec),
		"-c", "copy",
		output,
	)
	if err != nil {
		return nil, err
	}
	return statResult(output)
}

// MergeResult reports a finished concatenation.
type MergeResult struct {
	OutputPath  string `json:"output_path"`
	SizeBytes   int64  `json:"size_bytes"`
	MergedCount int    `json:"merged_count"`
}

// Merge concatenates inputs into output using the concat demuxer with stream
// copy. The manifest lives in a scoped temp dir removed on every exit path.
func (r *Runner) Merge(ctx context.Context, inputs []string, output string) (*MergeResult, error) {
	if len(inputs) < 2 {
		return nil, faults.Wrap(faults.ErrValidation, "media", "merge", "need at least 2 input files", nil)
	}
	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			return nil, faults.Wrap(faults.ErrInputNotFound, "media", "merge", input, err)
		}
	}

	workDir, err := os.MkdirTemp("", "crosstalk-merge-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	manifest := filepath.Join(workDir, "concat_"+uuid.NewString()+".txt")
	if err := WriteConcatManifest(manifest, inputs); err != nil {
		return nil, err
	}

	output = UniqueOutputPath(output)
	err = r.FFmpeg(ctx,
		"-y", "-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		output,
	)
	if err != nil {
		return nil, err
	}
	res, err := statResult(output)
	if err != nil {
		return nil, err
	}
	return &MergeResult{OutputPath: res.OutputPath, SizeBytes: res.SizeBytes, MergedCount: len(inputs)}, nil
}

// WriteConcatManifest writes a concat demuxer manifest referencing files in
// the given order. Single quotes in paths are escaped per demuxer rules.
func WriteConcatManifest(path string, files []string) error {
	var b strings.Builder
	for _, f := range files {
		escaped := strings.ReplaceAll(filepath.ToSlash(f), "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return nil
}

// UniqueOutputPath returns path, or the first "<name>_N<ext>" sibling that
// does not exist yet.
func UniqueOutputPath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

func formatArgs(targetFormat string, opts ConvertOptions) []string {
	switch targetFormat {
	case "mp3":
		return []string{"-q:a", fmt.Sprintf("%d", opts.AudioQuality), "-map", "a"}
	case "m4a":
		bitrate := opts.AudioBitrate
		if bitrate == "" {
			bitrate = "192k"
		}
		return []string{"-c:a", "aac", "-b:a", bitrate, "-map", "a"}
	case "wav":
		return []string{"-map", "a"}
	case "flac":
		return []string{"-c:a", "flac", "-map", "a"}
	case "ogg":
		quality := opts.AudioQuality
		if quality == 0 {
			quality = 6
		}
		return []string{"-c:a", "libvorbis", "-q:a", fmt.Sprintf("%d", quality), "-map", "a"}
	case "mp4":
		return []string{"-c:v", "libx264", "-crf", fmt.Sprintf("%d", defaultCRF(opts.CRF, 23)), "-preset", defaultPreset(opts.Preset), "-c:a", "aac", "-b:a", "192k"}
	case "mkv":
		return []string{"-c:v", "libx264", "-crf", fmt.Sprintf("%d", defaultCRF(opts.CRF, 23)), "-c:a", "copy"}
	case "webm":
		return []string{"-c:v", "libvpx-vp9", "-crf", fmt.Sprintf("%d", defaultCRF(opts.CRF, 30)), "-b:v", "0", "-c:a", "libopus"}
	default:
		return nil
	}
}

func defaultCRF(crf, fallback int) int {
	if crf <= 0 {
		return fallback
	}
	return crf
}

func defaultPreset(preset string) string {
	if preset == "" {
		return "medium"
	}
	return preset
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}

func statResult(output string) (*ConvertResult, error) {
	info, err := os.Stat(output)
	if err != nil {
		return nil, fmt.Errorf("output missing after conversion: %w", err)
	}
	return &ConvertResult{OutputPath: output, SizeBytes: info.Size()}, nil
}
