package media

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"crosstalk/internal/faults"
)

// Runner executes ffmpeg and ffprobe. Each invocation blocks for the full
// duration of the tool; cancellation arrives through ctx.
type Runner struct {
	tools Toolset
	run   func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
}

// NewRunner builds a runner over a resolved toolset.
func NewRunner(tools Toolset) *Runner {
	return &Runner{tools: tools, run: runCommand}
}

// WithCommandRunner sets a custom process runner (for testing).
func (r *Runner) WithCommandRunner(run func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)) {
	r.run = run
}

// Tools returns the resolved tool paths.
func (r *Runner) Tools() Toolset {
	return r.tools
}

// FFmpeg runs ffmpeg with the given arguments. A nonzero exit becomes a
// ToolError carrying the stderr text verbatim.
func (r *Runner) FFmpeg(ctx context.Context, args ...string) error {
	_, stderr, err := r.run(ctx, r.tools.FFmpeg, args...)
	if err != nil {
		return toolError("ffmpeg", stderr, err)
	}
	return nil
}

// FFprobe runs ffprobe and returns its stdout.
func (r *Runner) FFprobe(ctx context.Context, args ...string) ([]byte, error) {
	stdout, stderr, err := r.run(ctx, r.tools.FFprobe, args...)
	if err != nil {
		return nil, toolError("ffprobe", stderr, err)
	}
	return stdout, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func toolError(tool string, stderr []byte, err error) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return &faults.ToolError{Tool: tool, ExitCode: exitCode, Stderr: string(stderr)}
}
