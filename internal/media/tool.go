package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"crosstalk/internal/faults"
)

// executablePath is swapped out in tests to control the sidecar lookup dir.
var executablePath = os.Executable

// Resolve locates an external tool binary. PATH wins; otherwise a binary
// sitting next to the running executable is accepted, mirroring how a
// bundled tool ships alongside the host application.
func Resolve(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	if exe, err := executablePath(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), executableName(name))
		if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
			return candidate, nil
		}
	}
	return "", faults.Wrap(faults.ErrToolUnavailable, "media", "resolve", fmt.Sprintf("%s not found on PATH or beside the executable", name), nil)
}

// Toolset holds resolved ffmpeg and ffprobe paths.
type Toolset struct {
	FFmpeg  string
	FFprobe string
}

// ResolveToolset resolves both tools, honouring explicit config overrides.
func ResolveToolset(ffmpegOverride, ffprobeOverride string) (Toolset, error) {
	var ts Toolset
	var err error

	if override := strings.TrimSpace(ffmpegOverride); override != "" {
		ts.FFmpeg = override
	} else if ts.FFmpeg, err = Resolve("ffmpeg"); err != nil {
		return Toolset{}, err
	}

	if override := strings.TrimSpace(ffprobeOverride); override != "" {
		ts.FFprobe = override
	} else if ts.FFprobe, err = Resolve("ffprobe"); err != nil {
		return Toolset{}, err
	}

	return ts, nil
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
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
