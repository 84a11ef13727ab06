package speakeraudio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"crosstalk/internal/faults"
	"crosstalk/internal/media"
	"crosstalk/internal/transcript"
)

// ConcatResult reports a finished concatenated-track extraction.
type ConcatResult struct {
	OutputPath string  `json:"output_path"`
	Duration   float64 `json:"duration"`
	Segments   int     `json:"segments"`
}

// Clip is one per-sentence extraction result. Text and span come from the
// originating segment so callers can pair each clip with its caption.
type Clip struct {
	Path string              `json:"path"`
	Span transcript.TimeSpan `json:"span"`
	Text string              `json:"text"`
}

// ExtractConcatenated extracts every segment in chronological order into a
// scoped temp dir, then concatenates them with stream copy into outputPath.
// The temp dir is removed on every exit path. The operation is
// all-or-nothing: the first ffmpeg failure aborts it, and the error names
// the 1-based segment index that failed.
func ExtractConcatenated(ctx context.Context, runner *media.Runner, audioPath string, segments []transcript.AnnotatedSegment, outputPath string) (*ConcatResult, error) {
	if err := checkInputs(audioPath, segments); err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "crosstalk-speaker-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	if filepath.Ext(outputPath) == "" {
		outputPath += ".mp3"
	}

	// Temp clips are always mp3; the concat pass stream-copies them into
	// the final container.
	paths := make([]string, 0, len(segments))
	for i, seg := range segments {
		dest := filepath.Join(workDir, fmt.Sprintf("seg_%04d.mp3", i))
		if err := extractSegment(ctx, runner, audioPath, seg.Span, dest); err != nil {
			return nil, faults.Wrap(faults.ErrToolExecution, "speakeraudio", "extract", fmt.Sprintf("segment %d of %d", i+1, len(segments)), err)
		}
		paths = append(paths, dest)
	}

	manifest := filepath.Join(workDir, "concat.txt")
	if err := media.WriteConcatManifest(manifest, paths); err != nil {
		return nil, err
	}

	err = runner.FFmpeg(ctx,
		"-y", "-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		outputPath,
	)
	if err != nil {
		return nil, faults.Wrap(faults.ErrToolExecution, "speakeraudio", "concatenate", "", err)
	}

	duration := 0.0
	for _, seg := range segments {
		duration += seg.Span.Duration()
	}
	return &ConcatResult{OutputPath: outputPath, Duration: duration, Segments: len(segments)}, nil
}

// ExtractPerSentence writes one numbered clip per segment into outputDir,
// creating it if absent. No concatenation happens; each clip keeps the
// originating segment's text and span. Aborts on the first failure.
func ExtractPerSentence(ctx context.Context, runner *media.Runner, audioPath string, segments []transcript.AnnotatedSegment, outputDir string) ([]Clip, error) {
	if err := checkInputs(audioPath, segments); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}

	clips := make([]Clip, 0, len(segments))
	for i, seg := range segments {
		dest := filepath.Join(outputDir, fmt.Sprintf("sentence_%03d.mp3", i+1))
		if err := extractSegment(ctx, runner, audioPath, seg.Span, dest); err != nil {
			return nil, faults.Wrap(faults.ErrToolExecution, "speakeraudio", "extract", fmt.Sprintf("segment %d of %d", i+1, len(segments)), err)
		}
		clips = append(clips, Clip{Path: dest, Span: seg.Span, Text: seg.Text})
	}
	return clips, nil
}

func extractSegment(ctx context.Context, runner *media.Runner, audioPath string, span transcript.TimeSpan, dest string) error {
	return runner.FFmpeg(ctx,
		"-y", "-hide_banner",
		"-i", audioPath,
		"-ss", fmt.Sprintf("%.3f", span.Start),
		"-to", fmt.Sprintf("%.3f", span.End),
		"-c:a", "libmp3lame",
		"-q:a", "2",
		dest,
	)
}

func checkInputs(audioPath string, segments []transcript.AnnotatedSegment) error {
	if _, err := os.Stat(audioPath); err != nil {
		return faults.Wrap(faults.ErrInputNotFound, "speakeraudio", "extract", audioPath, err)
	}
	if len(segments) == 0 {
		return faults.Wrap(faults.ErrValidation, "speakeraudio", "extract", "no segments to extract", nil)
	}
	return nil
}
