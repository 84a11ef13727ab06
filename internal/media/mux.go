package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"crosstalk/internal/faults"
)

// MuxOptions select per-stream codecs. Empty values mean stream copy.
type MuxOptions struct {
	VideoCodec    string
	AudioCodec    string
	SubtitleCodec string
}

// Mux combines a video stream with replacement audio and subtitle tracks
// into one container. The video file is optional, so an audio-plus-subtitle
// mux works too. Each input contributes only its typed streams, mapped in
// argument order: video first, then audio tracks, then subtitle tracks.
func (r *Runner) Mux(ctx context.Context, videoFile string, audioFiles, subtitleFiles []string, output string, opts MuxOptions) (*ConvertResult, error) {
	if videoFile == "" && len(audioFiles) == 0 {
		return nil, faults.Wrap(faults.ErrValidation, "media", "mux", "need a video file or at least one audio track", nil)
	}

	inputs := make([]string, 0, 1+len(audioFiles)+len(subtitleFiles))
	if videoFile != "" {
		inputs = append(inputs, videoFile)
	}
	inputs = append(inputs, audioFiles...)
	inputs = append(inputs, subtitleFiles...)
	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			return nil, faults.Wrap(faults.ErrInputNotFound, "media", "mux", input, err)
		}
	}

	args := []string{"-y", "-hide_banner"}
	for _, input := range inputs {
		args = append(args, "-i", input)
	}
	index := 0
	if videoFile != "" {
		args = append(args, "-map", fmt.Sprintf("%d:v", index))
		index++
	}
	for range audioFiles {
		args = append(args, "-map", fmt.Sprintf("%d:a", index))
		index++
	}
	for range subtitleFiles {
		args = append(args, "-map", fmt.Sprintf("%d:s", index))
		index++
	}
	if videoFile != "" {
		args = append(args, "-c:v", codecOrCopy(opts.VideoCodec))
	}
	if len(audioFiles) > 0 {
		args = append(args, "-c:a", codecOrCopy(opts.AudioCodec))
	}
	if len(subtitleFiles) > 0 {
		args = append(args, "-c:s", codecOrCopy(opts.SubtitleCodec))
	}

	if dir := filepath.Dir(output); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure output dir: %w", err)
		}
	}
	output = UniqueOutputPath(output)
	args = append(args, output)

	if err := r.FFmpeg(ctx, args...); err != nil {
		return nil, err
	}
	return statResult(output)
}

func codecOrCopy(codec string) string {
	if codec == "" {
		return "copy"
	}
	return codec
}
