package models

import (
	"fmt"
	"os"
	"path/filepath"

	"crosstalk/internal/faults"
)

// ggmlBaseURL hosts the converted whisper.cpp weights.
const ggmlBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// WhisperModels lists the supported whisper model sizes.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large-v2", "large-v3"}

// Entry describes one downloadable model.
type Entry struct {
	Family   string
	Model    string
	FileName string
	URL      string
}

// ID returns the catalog identifier, e.g. "whispercpp/base".
func (e Entry) ID() string {
	return e.Family + "/" + e.Model
}

// Lookup resolves a family/model pair to a catalog entry. Pyannote weights
// are token-gated on the hub and are fetched by the diarization runtime, not
// by this downloader, so requesting them reports the auth contract instead.
func Lookup(family, model string) (Entry, error) {
	switch family {
	case FamilyWhisperCpp:
		for _, known := range WhisperModels {
			if model == known {
				fileName := "ggml-" + model + ".bin"
				return Entry{
					Family:   family,
					Model:    model,
					FileName: fileName,
					URL:      ggmlBaseURL + "/" + fileName,
				}, nil
			}
		}
		return Entry{}, faults.Wrap(faults.ErrValidation, "models", "lookup", fmt.Sprintf("unknown whisper model %q", model), nil)
	case FamilyPyannote:
		return Entry{}, faults.Wrap(faults.ErrAuthRequired, "models", "lookup", "pyannote weights are gated; accept the model terms and set the HuggingFace token", nil)
	default:
		return Entry{}, faults.Wrap(faults.ErrValidation, "models", "lookup", fmt.Sprintf("unknown model family %q", family), nil)
	}
}

// InstalledWhisperModels reports which whisper.cpp weights exist locally.
func InstalledWhisperModels(baseDir string) []string {
	installed := make([]string, 0, len(WhisperModels))
	for _, model := range WhisperModels {
		path := filepath.Join(baseDir, FamilyWhisperCpp, "ggml-"+model+".bin")
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			installed = append(installed, model)
		}
	}
	return installed
}

// LocalPath returns where an entry's weights live once installed.
func (e Entry) LocalPath(baseDir string) string {
	return filepath.Join(baseDir, e.Family, e.FileName)
}
