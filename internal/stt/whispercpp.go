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
	"crosstalk/internal/models"
	"crosstalk/internal/transcript"
)

// Backend names forming the closed engine set.
const (
	BackendWhisperCpp    = "whispercpp"
	BackendWhisperX      = "whisperx"
	BackendFasterWhisper = "faster-whisper"
)

const whisperCliBinary = "whisper-cli"

// whisperCpp drives the whisper.cpp CLI with local GGML weights. Weights are
// fetched lazily through the model manager on first use.
type whisperCpp struct {
	manager *models.Manager
	bin     string
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func newWhisperCpp(cfg Config) *whisperCpp {
	bin := cfg.WhisperCLI
	if bin == "" {
		bin = whisperCliBinary
	}
	return &whisperCpp{manager: cfg.Models, bin: bin, run: runCombined}
}

func (w *whisperCpp) Name() string { return BackendWhisperCpp }

func (w *whisperCpp) Available() error {
	if _, err := exec.LookPath(w.bin); err != nil {
		return faults.Wrap(faults.ErrBackendUnavailable, "stt", BackendWhisperCpp, fmt.Sprintf("%s not found", w.bin), nil)
	}
	return nil
}

// WithCommandRunner sets a custom process runner (for testing).
func (w *whisperCpp) WithCommandRunner(run func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	w.run = run
}

func (w *whisperCpp) Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = "base"
	}
	modelPath, _, err := w.manager.Download(ctx, models.FamilyWhisperCpp, model)
	if err != nil {
		return nil, faults.Wrap(faults.ErrModelLoad, "stt", BackendWhisperCpp, model, err)
	}

	outDir, err := os.MkdirTemp("", "crosstalk-whispercpp-*")
	if err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	outBase := filepath.Join(outDir, "result")
	args := []string{
		"-m", modelPath,
		"-f", req.AudioPath,
		"-oj",
		"-of", outBase,
	}
	if req.Language != "" {
		args = append(args, "-l", req.Language)
	}

	if output, err := w.run(ctx, w.bin, args...); err != nil {
		return nil, faults.Wrap(faults.ErrTranscription, "stt", BackendWhisperCpp, strings.TrimSpace(string(output)), err)
	}

	return parseWhisperCppJSON(outBase + ".json")
}

type whisperCppPayload struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperCppJSON(path string) (*transcript.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrTranscription, "stt", BackendWhisperCpp, "engine produced no output", err)
	}
	var payload whisperCppPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, faults.Wrap(faults.ErrTranscription, "stt", BackendWhisperCpp, "parse engine output", err)
	}

	segments := make([]transcript.Segment, 0, len(payload.Transcription))
	for _, item := range payload.Transcription {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Span: transcript.TimeSpan{
				Start: float64(item.Offsets.From) / 1000,
				End:   float64(item.Offsets.To) / 1000,
			},
			Text: text,
		})
	}
	return canonicalize("", payload.Result.Language, segments), nil
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
