// Package deps reports the availability of the external tools crosstalk
// shells out to. Used by the status command.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"crosstalk/internal/config"
)

// Requirement defines an external dependency crosstalk relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the dependency list, honouring tool path overrides
// from config. Only ffmpeg and ffprobe are required; each transcription and
// diarization backend is optional because a single one suffices.
func Requirements(cfg *config.Config) []Requirement {
	var tools config.Tools
	if cfg != nil {
		tools = cfg.Tools
	}
	command := func(override, fallback string) string {
		if trimmed := strings.TrimSpace(override); trimmed != "" {
			return trimmed
		}
		return fallback
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     command(tools.FFmpeg, "ffmpeg"),
			Description: "Audio extraction, conversion, and concatenation",
		},
		{
			Name:        "FFprobe",
			Command:     command(tools.FFprobe, "ffprobe"),
			Description: "Media stream inspection",
		},
		{
			Name:        "whisper.cpp",
			Command:     command(tools.WhisperCLI, "whisper-cli"),
			Description: "Local speech-to-text (whispercpp backend)",
			Optional:    true,
		},
		{
			Name:        "whisper-ctranslate2",
			Command:     command(tools.WhisperCTranslate, "whisper-ctranslate2"),
			Description: "Speech-to-text (faster-whisper backend)",
			Optional:    true,
		},
		{
			Name:        "uvx",
			Command:     command(tools.UVX, "uvx"),
			Description: "Runs WhisperX without a local install (whisperx backend)",
			Optional:    true,
		},
		{
			Name:        "pyannote-audio",
			Command:     command(tools.PyannoteAudio, "pyannote-audio"),
			Description: "Speaker diarization",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if strings.ContainsAny(cmd, "/\\") {
			// Explicit path from config: check it directly instead of PATH.
			if info, err := os.Stat(cmd); err != nil || !isExecutable(info) {
				status.Detail = fmt.Sprintf("configured path %q is not an executable", cmd)
				results = append(results, status)
				continue
			}
			status.Available = true
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Check evaluates the full crosstalk dependency list.
func Check(cfg *config.Config) []Status {
	return CheckBinaries(Requirements(cfg))
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
