package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	dbPath     string
	ffmpeg     string
	ffprobe    string
}

// setupCLITestEnv builds a config file whose paths all live under a temp dir
// and whose ffmpeg/ffprobe point at stub shell scripts.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "output"),
		dbPath:     filepath.Join(base, "crosstalk.db"),
		ffmpeg:     writeStubBinary(t, base, "ffmpeg", stubFFmpegScript),
		ffprobe:    writeStubBinary(t, base, "ffprobe", stubFFprobeScript),
	}

	content := fmt.Sprintf(`
[paths]
models_dir = %q
output_dir = %q
log_dir = %q
database_path = %q

[tools]
ffmpeg = %q
ffprobe = %q
`,
		filepath.Join(base, "models"),
		env.outputDir,
		filepath.Join(base, "logs"),
		env.dbPath,
		env.ffmpeg,
		env.ffprobe,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// stubFFmpegScript writes a byte into its final argument so downstream size
// checks see a real file.
const stubFFmpegScript = `#!/bin/sh
for last; do :; done
printf 'x' > "$last"
exit 0
`

const stubFFprobeScript = `#!/bin/sh
cat <<'JSON'
{
  "format": {"format_name": "mp3", "duration": "12.5", "size": "1024", "bit_rate": "128000"},
  "streams": [{"index": 0, "codec_type": "audio", "codec_name": "mp3", "sample_rate": "44100", "channels": 2}]
}
JSON
exit 0
`

func writeStubBinary(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// decodeJSON parses a command's single JSON object output.
func decodeJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		t.Fatalf("command output is not one JSON object: %v (%q)", err, output)
	}
	return payload
}

func requireSuccess(t *testing.T, payload map[string]any) {
	t.Helper()
	if payload["success"] != true {
		t.Fatalf("expected success, got %v", payload)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// writeAnalysisJSON writes a two-speaker analysis in the shape
// `analyze --diarize` prints.
func writeAnalysisJSON(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "analysis.json")
	content := `{
  "success": true,
  "language": "en",
  "full_text": "hello there general kenobi",
  "annotated_segments": [
    {"span": {"start": 0, "end": 2}, "speaker": "SPEAKER_00", "text": "hello there"},
    {"span": {"start": 2, "end": 4}, "speaker": "SPEAKER_01", "text": "general kenobi"}
  ],
  "speakers": ["SPEAKER_00", "SPEAKER_01"]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write analysis json: %v", err)
	}
	return path
}
