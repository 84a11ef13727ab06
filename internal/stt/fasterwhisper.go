package stt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"crosstalk/internal/faults"
	"crosstalk/internal/transcript"
)

const fasterWhisperBinary = "whisper-ctranslate2"

// fasterWhisper drives the CTranslate2 whisper CLI. Its JSON output matches
// the WhisperX segment payload, so parsing is shared.
type fasterWhisper struct {
	bin string
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func newFasterWhisper(cfg Config) *fasterWhisper {
	bin := cfg.WhisperCTranslate
	if bin == "" {
		bin = fasterWhisperBinary
	}
	return &fasterWhisper{bin: bin, run: runCombined}
}

func (f *fasterWhisper) Name() string { return BackendFasterWhisper }

func (f *fasterWhisper) Available() error {
	if _, err := exec.LookPath(f.bin); err != nil {
		return faults.Wrap(faults.ErrBackendUnavailable, "stt", BackendFasterWhisper, fmt.Sprintf("%s not found", f.bin), nil)
	}
	return nil
}

// WithCommandRunner sets a custom process runner (for testing).
func (f *fasterWhisper) WithCommandRunner(run func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	f.run = run
}

func (f *fasterWhisper) Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	outDir, err := os.MkdirTemp("", "crosstalk-fasterwhisper-*")
	if err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	model := req.Model
	if model == "" {
		model = "base"
	}
	args := []string{
		req.AudioPath,
		"--model", model,
		"--output_dir", outDir,
		"--output_format", "json",
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}

	if output, err := f.run(ctx, f.bin, args...); err != nil {
		return nil, faults.Wrap(faults.ErrTranscription, "stt", BackendFasterWhisper, strings.TrimSpace(string(output)), err)
	}

	base := strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))
	return parseWhisperXJSON(filepath.Join(outDir, base+".json"))
}
