package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"

	"crosstalk/internal/faults"
	"crosstalk/internal/models"
	"crosstalk/internal/transcript"
)

// Request carries one transcription job.
type Request struct {
	AudioPath string
	Model     string
	Language  string // optional BCP 47 / ISO 639 tag; empty means auto-detect
}

// Backend is one transcription engine variant.
type Backend interface {
	// Name is the stable engine identifier used on the command surface.
	Name() string
	// Available probes whether the engine can run here. A nil return means
	// the backend may be dispatched to.
	Available() error
	// Transcribe produces the canonical transcript for an audio file.
	Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error)
}

// Config selects engine defaults shared by all backends. Tool fields
// override the binary resolved from PATH; empty means use the default name.
type Config struct {
	Models            *models.Manager
	WhisperCLI        string // whisper.cpp binary, default "whisper-cli"
	WhisperCTranslate string // faster-whisper binary, default "whisper-ctranslate2"
	UVX               string // uvx binary for whisperx, default "uvx"
	HFToken           string
}

// Registry returns the closed set of supported backends keyed by name.
func Registry(cfg Config) map[string]Backend {
	return map[string]Backend{
		BackendWhisperCpp:    newWhisperCpp(cfg),
		BackendWhisperX:      newWhisperX(cfg),
		BackendFasterWhisper: newFasterWhisper(cfg),
	}
}

// Lookup resolves an engine name, probing its availability before handing it
// out.
func Lookup(cfg Config, name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = BackendWhisperCpp
	}
	backend, ok := Registry(cfg)[name]
	if !ok {
		return nil, faults.Wrap(faults.ErrValidation, "stt", "lookup", fmt.Sprintf("unknown engine %q", name), nil)
	}
	if err := backend.Available(); err != nil {
		return nil, err
	}
	return backend, nil
}

func validateRequest(req Request) error {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return faults.Wrap(faults.ErrInputNotFound, "stt", "transcribe", req.AudioPath, err)
	}
	if req.Language != "" {
		if _, err := language.Parse(req.Language); err != nil {
			return faults.Wrap(faults.ErrValidation, "stt", "transcribe", fmt.Sprintf("invalid language tag %q", req.Language), err)
		}
	}
	return nil
}

// canonicalize normalizes parsed engine segments into the canonical
// contract: trimmed text, full text synthesized when the engine omits it.
func canonicalize(text, lang string, segments []transcript.Segment) *transcript.Transcript {
	if text == "" {
		var b strings.Builder
		for _, seg := range segments {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(seg.Text))
		}
		text = b.String()
	}
	if lang == "" {
		lang = "unknown"
	}
	return &transcript.Transcript{Text: strings.TrimSpace(text), Language: lang, Segments: segments}
}
