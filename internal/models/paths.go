package models

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend families get one subdirectory each under the models base dir.
const (
	FamilyWhisperCpp = "whispercpp"
	FamilyWhisperX   = "whisperx"
	FamilyPyannote   = "pyannote"
)

// DefaultBaseDir returns the per-user model storage directory.
func DefaultBaseDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "crosstalk", "models"), nil
}

// FamilyDir returns (and creates) the storage directory for one family.
func FamilyDir(baseDir, family string) (string, error) {
	dir := filepath.Join(baseDir, family)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure model dir: %w", err)
	}
	return dir, nil
}
