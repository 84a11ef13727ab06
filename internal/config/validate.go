package config

import (
	"errors"
	"fmt"
)

var validBackends = map[string]struct{}{
	"whispercpp":     {},
	"whisperx":       {},
	"faster-whisper": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateDiarization(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if _, ok := validBackends[c.Transcription.Backend]; !ok {
		return fmt.Errorf("transcription.backend must be one of whispercpp, whisperx, faster-whisper (got %q)", c.Transcription.Backend)
	}
	if c.Transcription.Model == "" {
		return errors.New("transcription.model must be set")
	}
	return nil
}

func (c *Config) validateDiarization() error {
	d := c.Diarization
	if d.Speakers < 0 {
		return errors.New("diarization.speakers must be >= 0")
	}
	if d.MinSpeakers < 0 || d.MaxSpeakers < 0 {
		return errors.New("diarization.min_speakers and diarization.max_speakers must be >= 0")
	}
	if d.Speakers > 0 && (d.MinSpeakers > 0 || d.MaxSpeakers > 0) {
		return errors.New("diarization.speakers cannot be combined with min_speakers or max_speakers")
	}
	if d.MinSpeakers > 0 && d.MaxSpeakers > 0 && d.MinSpeakers > d.MaxSpeakers {
		return errors.New("diarization.min_speakers must not exceed diarization.max_speakers")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
