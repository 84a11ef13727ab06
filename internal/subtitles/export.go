package subtitles

import (
	"fmt"
	"os"
	"path/filepath"

	"crosstalk/internal/transcript"
)

// WriteFile renders lines and writes them as UTF-8 SRT content.
func WriteFile(path string, lines []Line) error {
	if err := os.WriteFile(path, []byte(Render(lines)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// WriteSpeaker exports one speaker's bucket to path. It fails with a
// speaker-not-found error when the label has no segments.
func WriteSpeaker(st *transcript.SpeakerTranscript, speaker, path string) error {
	segments, err := st.SpeakerSegments(speaker)
	if err != nil {
		return err
	}
	return WriteFile(path, FromAnnotated(segments))
}

// WriteAllSpeakers writes one SRT file per speaker bucket into dir, creating
// it if absent. File names follow <baseName>_<speaker>.srt. The returned
// paths are ordered by the transcript's speaker order for determinism.
func WriteAllSpeakers(st *transcript.SpeakerTranscript, dir, baseName string) ([]string, error) {
	if baseName == "" {
		baseName = "speaker"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}
	written := make([]string, 0, len(st.BySpeaker))
	for _, speaker := range st.Speakers {
		segments, ok := st.BySpeaker[speaker]
		if !ok {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.srt", baseName, speaker))
		if err := WriteFile(path, FromAnnotated(segments)); err != nil {
			return nil, fmt.Errorf("export speaker %s: %w", speaker, err)
		}
		written = append(written, path)
	}
	return written, nil
}
