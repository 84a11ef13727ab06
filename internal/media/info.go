package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"crosstalk/internal/faults"
)

// StreamInfo describes one stream reported by ffprobe.
type StreamInfo struct {
	Index      int    `json:"index"`
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	SampleRate string `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
}

// Info is the normalized ffprobe report for one file.
type Info struct {
	Path       string       `json:"path"`
	FormatName string       `json:"format_name"`
	Duration   float64      `json:"duration"`
	SizeBytes  int64        `json:"size_bytes"`
	BitRate    int64        `json:"bit_rate"`
	Streams    []StreamInfo `json:"streams"`
}

type probePayload struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []StreamInfo `json:"streams"`
}

// Probe inspects a media file with ffprobe.
func (r *Runner) Probe(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, faults.Wrap(faults.ErrInputNotFound, "media", "probe", path, err)
	}
	out, err := r.FFprobe(ctx,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, err
	}

	var payload probePayload
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &Info{
		Path:       path,
		FormatName: payload.Format.FormatName,
		Streams:    payload.Streams,
	}
	info.Duration, _ = strconv.ParseFloat(payload.Format.Duration, 64)
	info.SizeBytes, _ = strconv.ParseInt(payload.Format.Size, 10, 64)
	info.BitRate, _ = strconv.ParseInt(payload.Format.BitRate, 10, 64)
	return info, nil
}
