package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"crosstalk/internal/faults"
)

// CompressOptions tune video compression. Zero values pick the defaults
// (CRF 28, medium preset, no scaling, constant-quality encoding).
type CompressOptions struct {
	CRF          int
	Preset       string
	TargetSizeMB float64 // derive the video bitrate from this size when > 0
	Resolution   string  // scale filter argument, e.g. "1280:720"
}

// CompressResult reports a finished compression.
type CompressResult struct {
	OutputPath      string  `json:"output_path"`
	OriginalBytes   int64   `json:"original_bytes"`
	CompressedBytes int64   `json:"compressed_bytes"`
	RatioPercent    float64 `json:"ratio_percent"`
}

// Audio budget assumed when deriving a video bitrate from a target size.
const compressAudioBitrate = 128_000

// Compress re-encodes a video with x264 into a "<name>_compressed<ext>"
// sibling file. With a target size, the video bitrate is derived from the
// probed duration after subtracting the audio budget; otherwise the encode
// is constant-quality CRF.
func (r *Runner) Compress(ctx context.Context, input string, opts CompressOptions) (*CompressResult, error) {
	inputInfo, err := os.Stat(input)
	if err != nil {
		return nil, faults.Wrap(faults.ErrInputNotFound, "media", "compress", input, err)
	}

	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext)
	output := UniqueOutputPath(filepath.Join(filepath.Dir(input), base+"_compressed"+ext))

	args := []string{"-y", "-hide_banner", "-i", input}
	if opts.Resolution != "" {
		args = append(args, "-vf", "scale="+opts.Resolution)
	}

	if opts.TargetSizeMB > 0 {
		probe, err := r.Probe(ctx, input)
		if err != nil {
			return nil, err
		}
		if probe.Duration <= 0 {
			return nil, faults.Wrap(faults.ErrValidation, "media", "compress", "cannot target a size without a known duration", nil)
		}
		targetBits := opts.TargetSizeMB * 8 * 1024 * 1024
		videoBitrate := int64((targetBits - compressAudioBitrate*probe.Duration) / probe.Duration)
		if videoBitrate <= 0 {
			return nil, faults.Wrap(faults.ErrValidation, "media", "compress", fmt.Sprintf("target size %.1f MB leaves no room for video", opts.TargetSizeMB), nil)
		}
		args = append(args, "-c:v", "libx264", "-b:v", fmt.Sprintf("%d", videoBitrate), "-preset", defaultPreset(opts.Preset))
	} else {
		args = append(args, "-c:v", "libx264", "-crf", fmt.Sprintf("%d", defaultCRF(opts.CRF, 28)), "-preset", defaultPreset(opts.Preset))
	}
	args = append(args, "-c:a", "aac", "-b:a", "128k", output)

	if err := r.FFmpeg(ctx, args...); err != nil {
		return nil, err
	}
	res, err := statResult(output)
	if err != nil {
		return nil, err
	}

	ratio := 0.0
	if inputInfo.Size() > 0 {
		ratio = math.Round(float64(res.SizeBytes)/float64(inputInfo.Size())*10000) / 100
	}
	return &CompressResult{
		OutputPath:      res.OutputPath,
		OriginalBytes:   inputInfo.Size(),
		CompressedBytes: res.SizeBytes,
		RatioPercent:    ratio,
	}, nil
}
