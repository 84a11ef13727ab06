package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"crosstalk/internal/faults"
	"crosstalk/internal/transcript"
)

const (
	uvxCommand           = "uvx"
	whisperXDefaultModel = "large-v3"
)

// whisperX runs WhisperX through uvx, so the engine resolves its own python
// environment on demand.
type whisperX struct {
	uvx     string
	hfToken string
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func newWhisperX(cfg Config) *whisperX {
	uvx := cfg.UVX
	if uvx == "" {
		uvx = uvxCommand
	}
	return &whisperX{uvx: uvx, hfToken: cfg.HFToken, run: runCombined}
}

func (w *whisperX) Name() string { return BackendWhisperX }

func (w *whisperX) Available() error {
	if _, err := exec.LookPath(w.uvx); err != nil {
		return faults.Wrap(faults.ErrBackendUnavailable, "stt", BackendWhisperX, fmt.Sprintf("%s not found on PATH", w.uvx), nil)
	}
	return nil
}

// WithCommandRunner sets a custom process runner (for testing).
func (w *whisperX) WithCommandRunner(run func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	w.run = run
}

func (w *whisperX) Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	outDir, err := os.MkdirTemp("", "crosstalk-whisperx-*")
	if err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	model := req.Model
	if model == "" {
		model = whisperXDefaultModel
	}
	args := []string{
		"whisperx",
		req.AudioPath,
		"--model", model,
		"--output_dir", outDir,
		"--output_format", "json",
		"--segment_resolution", "sentence",
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	if w.hfToken != "" {
		args = append(args, "--hf_token", w.hfToken)
	}

	if output, err := w.run(ctx, w.uvx, args...); err != nil {
		return nil, faults.Wrap(faults.ErrTranscription, "stt", BackendWhisperX, strings.TrimSpace(string(output)), err)
	}

	base := strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))
	return parseWhisperXJSON(filepath.Join(outDir, base+".json"))
}

type whisperXPayload struct {
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func parseWhisperXJSON(path string) (*transcript.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrTranscription, "stt", BackendWhisperX, "engine produced no output", err)
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, faults.Wrap(faults.ErrTranscription, "stt", BackendWhisperX, "parse engine output", err)
	}
	segments := make([]transcript.Segment, 0, len(payload.Segments))
	for _, item := range payload.Segments {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Span: transcript.TimeSpan{Start: item.Start, End: item.End},
			Text: text,
		})
	}
	return canonicalize("", payload.Language, segments), nil
}
