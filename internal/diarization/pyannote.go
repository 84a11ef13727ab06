package diarization

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

const pyannoteBinary = "pyannote-audio"

// Pyannote runs the pyannote speaker-diarization pipeline as an external
// process emitting RTTM. The pipeline's gated weights require a HuggingFace
// token.
type Pyannote struct {
	bin     string
	hfToken string
	run     func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
}

// NewPyannote builds the pyannote adapter. An empty bin uses the default
// pipeline binary resolved from PATH.
func NewPyannote(bin, hfToken string) *Pyannote {
	if bin == "" {
		bin = pyannoteBinary
	}
	return &Pyannote{bin: bin, hfToken: hfToken, run: runPyannote}
}

func (p *Pyannote) Name() string { return "pyannote" }

// Available probes the pipeline binary. Token presence is checked at
// dispatch so the probe reflects installation, not configuration.
func (p *Pyannote) Available() error {
	if _, err := exec.LookPath(p.bin); err != nil {
		return faults.Wrap(faults.ErrBackendUnavailable, "diarization", "pyannote", fmt.Sprintf("%s not found", p.bin), nil)
	}
	return nil
}

// WithCommandRunner sets a custom process runner (for testing).
func (p *Pyannote) WithCommandRunner(run func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)) {
	p.run = run
}

func (p *Pyannote) Diarize(ctx context.Context, req Request) ([]transcript.SpeakerTurn, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.hfToken) == "" {
		return nil, faults.Wrap(faults.ErrAuthRequired, "diarization", "pyannote", "HuggingFace token required for gated pyannote weights", nil)
	}

	outDir, err := os.MkdirTemp("", "crosstalk-pyannote-*")
	if err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	rttmPath := filepath.Join(outDir, "diarization.rttm")
	args := []string{
		"diarize",
		req.AudioPath,
		"--output", rttmPath,
		"--token", p.hfToken,
	}
	switch {
	case req.Hint.Exact > 0:
		args = append(args, "--num-speakers", fmt.Sprintf("%d", req.Hint.Exact))
	default:
		if req.Hint.Min > 0 {
			args = append(args, "--min-speakers", fmt.Sprintf("%d", req.Hint.Min))
		}
		if req.Hint.Max > 0 {
			args = append(args, "--max-speakers", fmt.Sprintf("%d", req.Hint.Max))
		}
	}

	_, stderr, err := p.run(ctx, p.bin, args...)
	if err != nil {
		diagnostic := strings.TrimSpace(string(stderr))
		if isAuthFailure(diagnostic) {
			return nil, faults.Wrap(faults.ErrAuthRequired, "diarization", "pyannote", diagnostic, err)
		}
		return nil, faults.Wrap(faults.ErrDiarization, "diarization", "pyannote", diagnostic, err)
	}

	f, err := os.Open(rttmPath)
	if err != nil {
		return nil, faults.Wrap(faults.ErrDiarization, "diarization", "pyannote", "pipeline produced no RTTM output", err)
	}
	defer f.Close()

	turns, err := ParseRTTM(f)
	if err != nil {
		return nil, faults.Wrap(faults.ErrDiarization, "diarization", "pyannote", "parse RTTM", err)
	}
	return turns, nil
}

func isAuthFailure(diagnostic string) bool {
	lowered := strings.ToLower(diagnostic)
	for _, marker := range []string{"401", "unauthorized", "gated", "access token"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func runPyannote(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = os.Environ()
	err := cmd.Run()
	return []byte(stdout.String()), []byte(stderr.String()), err
}
